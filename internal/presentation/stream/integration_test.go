//go:build integration

package stream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pregcare/riskd/internal/application/usecase"
	"github.com/pregcare/riskd/internal/domain/model"
	"github.com/pregcare/riskd/internal/domain/service"
	"github.com/pregcare/riskd/internal/domain/valueobject"
	"github.com/pregcare/riskd/internal/infrastructure/kafka"
	pkgkafka "github.com/pregcare/riskd/pkg/kafka"
	"github.com/pregcare/riskd/pkg/testutil"
)

const (
	requestTopic = "risk.requests"
	verdictTopic = "risk.verdicts"
)

func TestRequestRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client := &kafkago.Client{Addr: kafkago.TCP(kc.Brokers...)}
	_, err := client.CreateTopics(ctx, &kafkago.CreateTopicsRequest{
		Topics: []kafkago.TopicConfig{
			{Topic: requestTopic, NumPartitions: 1, ReplicationFactor: 1},
			{Topic: verdictTopic, NumPartitions: 1, ReplicationFactor: 1},
		},
	})
	testutil.RequireNoError(t, err, "create topics")

	cfg := pkgkafka.Config{Brokers: kc.Brokers, ConsumerGroup: "riskd-it"}
	producer, err := pkgkafka.NewProducer(cfg)
	testutil.RequireNoError(t, err)
	t.Cleanup(func() { _ = producer.Close() })

	classifier, err := service.NewRiskClassifier(model.DefaultSchema(), stubModel{label: valueobject.NumericLabel(1)},
		service.ClassifierConfig{Mode: valueobject.DecisionModeDirectLabel}, logger)
	require.NoError(t, err)

	classifyUC := usecase.NewClassifyFeatures(classifier, kafka.NewPublisher(producer, verdictTopic, logger), nil, logger)

	requests, err := pkgkafka.NewConsumer(cfg, requestTopic, NewRequestHandler(classifyUC, logger).Handler(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = requests.Close() })

	verdicts := make(chan pkgkafka.Message, 4)
	verdictCfg := cfg
	verdictCfg.ConsumerGroup = "riskd-it-verdicts"
	verdictConsumer, err := pkgkafka.NewConsumer(verdictCfg, verdictTopic, func(_ context.Context, msg pkgkafka.Message) error {
		verdicts <- msg
		return nil
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = verdictConsumer.Close() })

	go func() { _ = requests.Start(ctx) }()
	go func() { _ = verdictConsumer.Start(ctx) }()

	body, err := json.Marshal(map[string]any{
		"request_id": testutil.TestRequestID,
		"features":   testutil.ValidFeatures(),
	})
	require.NoError(t, err)
	require.NoError(t, producer.Publish(ctx, requestTopic, pkgkafka.Message{Key: []byte(testutil.TestRequestID), Value: body}))

	select {
	case msg := <-verdicts:
		assert.Equal(t, "risk.verdict.classified", msg.Headers["event_type"])

		var evt map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &evt))
		assert.Equal(t, "High Risk", evt["result"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for verdict event")
	}
}
