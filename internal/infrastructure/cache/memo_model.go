package cache

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pregcare/riskd/internal/domain/port"
	"github.com/pregcare/riskd/internal/domain/valueobject"
)

// MemoizedModel caches the output of an immutable model by the exact bit
// pattern of each row. It is safe for concurrent use.
type MemoizedModel struct {
	next   port.Model
	labels *lru.Cache[string, valueobject.ClassLabel]
	probas *lru.Cache[string, []float64]
}

// NewMemoizedModel wraps next with LRU caches holding up to size rows each.
func NewMemoizedModel(next port.Model, size int) (*MemoizedModel, error) {
	if next == nil {
		return nil, fmt.Errorf("cache: model is required")
	}

	labels, err := lru.New[string, valueobject.ClassLabel](size)
	if err != nil {
		return nil, fmt.Errorf("cache: create label cache: %w", err)
	}
	probas, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("cache: create probability cache: %w", err)
	}

	return &MemoizedModel{next: next, labels: labels, probas: probas}, nil
}

// rowKey encodes the row's IEEE-754 bits, so 0.0 and -0.0 are distinct keys.
func rowKey(row []float64) string {
	buf := make([]byte, 8*len(row))
	for i, v := range row {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return string(buf)
}

func (m *MemoizedModel) Classes() []valueobject.ClassLabel { return m.next.Classes() }

// Features forwards to the wrapped model.
func (m *MemoizedModel) Features() int { return m.next.Features() }

// Metadata forwards the wrapped model's metadata, if any.
func (m *MemoizedModel) Metadata() port.ModelMetadata {
	if mp, ok := m.next.(port.MetadataProvider); ok {
		return mp.Metadata()
	}
	return port.ModelMetadata{}
}

// Predict serves cached labels and forwards only the missing rows.
func (m *MemoizedModel) Predict(rows [][]float64) ([]valueobject.ClassLabel, error) {
	out := make([]valueobject.ClassLabel, len(rows))
	keys := make([]string, len(rows))

	var missing [][]float64
	var missingAt []int
	for i, row := range rows {
		keys[i] = rowKey(row)
		if label, ok := m.labels.Get(keys[i]); ok {
			out[i] = label
			continue
		}
		missing = append(missing, row)
		missingAt = append(missingAt, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	labels, err := m.next.Predict(missing)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(missing) {
		return nil, fmt.Errorf("model returned %d labels for %d rows", len(labels), len(missing))
	}
	for j, i := range missingAt {
		out[i] = labels[j]
		m.labels.Add(keys[i], labels[j])
	}
	return out, nil
}

// PredictProba serves cached distributions and forwards only the missing rows.
// Returned slices are copies.
func (m *MemoizedModel) PredictProba(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	keys := make([]string, len(rows))

	var missing [][]float64
	var missingAt []int
	for i, row := range rows {
		keys[i] = rowKey(row)
		if dist, ok := m.probas.Get(keys[i]); ok {
			out[i] = slices.Clone(dist)
			continue
		}
		missing = append(missing, row)
		missingAt = append(missingAt, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	dists, err := m.next.PredictProba(missing)
	if err != nil {
		return nil, err
	}
	if len(dists) != len(missing) {
		return nil, fmt.Errorf("model returned %d distributions for %d rows", len(dists), len(missing))
	}
	for j, i := range missingAt {
		out[i] = slices.Clone(dists[j])
		m.probas.Add(keys[i], slices.Clone(dists[j]))
	}
	return out, nil
}

// Len returns the number of cached rows across both caches.
func (m *MemoizedModel) Len() int {
	return m.labels.Len() + m.probas.Len()
}

// Purge drops every cached row.
func (m *MemoizedModel) Purge() {
	m.labels.Purge()
	m.probas.Purge()
}
