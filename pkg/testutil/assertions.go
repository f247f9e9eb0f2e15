package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}

// AssertErrorIs checks that err matches target anywhere in its chain and
// mentions the expected substring.
func AssertErrorIs(t *testing.T, err, target error, expected string) {
	t.Helper()
	if assert.True(t, errors.Is(err, target), "expected %v in chain of %v", target, err) {
		assert.Contains(t, err.Error(), expected)
	}
}
