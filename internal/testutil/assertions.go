// Package testutil provides common test utilities and assertions for bridge tests.
package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/value"
)

// RequireNoError is a convenience wrapper for require.NoError
func RequireNoError(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// AssertEqual is a convenience wrapper for assert.Equal
func AssertEqual(t *testing.T, expected, actual any, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, expected, actual, msgAndArgs...)
}

// AssertTrue is a convenience wrapper for assert.True
func AssertTrue(t *testing.T, v bool, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, v, msgAndArgs...)
}

// AssertFalse is a convenience wrapper for assert.False
func AssertFalse(t *testing.T, v bool, msgAndArgs ...any) {
	t.Helper()
	assert.False(t, v, msgAndArgs...)
}

// AssertValueEqual asserts two Values are structurally equal.
func AssertValueEqual(t *testing.T, expected, actual value.Value) {
	t.Helper()
	assert.Truef(t, expected.Equal(actual), "expected %#v, got %#v", expected, actual)
}

// RequireHostException asserts err is a RuntimeError with the given message
// and returns it.
func RequireHostException(t *testing.T, err error, message string) *entities.HostException {
	t.Helper()
	var exc *entities.HostException
	require.True(t, errors.As(err, &exc), "expected a host exception, got %v", err)
	assert.Equal(t, entities.RuntimeErrorType, exc.Type)
	assert.Equal(t, message, exc.Message)
	return exc
}

// Snapshot returns a fully populated context snapshot.
func Snapshot() entities.ContextSnapshot {
	return entities.ContextSnapshot{
		FunctionName:       "f",
		FunctionVersion:    "$LATEST",
		InvokedFunctionARN: "arn:aws:lambda:us-east-1:123:function:f",
		MemoryLimitInMB:    "128",
		AWSRequestID:       "req-1",
		LogGroupName:       "/aws/lambda/f",
		LogStreamName:      "stream",
	}
}
