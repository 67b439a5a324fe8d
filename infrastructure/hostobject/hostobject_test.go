package hostobject

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
)

func TestMap(t *testing.T) {
	m := NewContext(entities.ContextSnapshot{FunctionName: "f", AWSRequestID: "r"}, FixedRemaining(5000))

	v, err := m.Attr(entities.AttrFunctionName)
	require.NoError(t, err)
	assert.Equal(t, "f", v)

	_, err = m.Attr("nope")
	assert.ErrorIs(t, err, ports.ErrAttributeNotFound)

	ms, err := m.Call(entities.MethodGetRemainingTimeInMillis)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), ms)

	_, err = m.Call("nope")
	assert.ErrorIs(t, err, ports.ErrMethodNotFound)
}

func TestNewContext_WithoutRemaining(t *testing.T) {
	m := NewContext(entities.ContextSnapshot{}, nil)
	_, err := m.Call(entities.MethodGetRemainingTimeInMillis)
	assert.ErrorIs(t, err, ports.ErrMethodNotFound)
}

func TestRemainingFromDeadline(t *testing.T) {
	ms, err := RemainingFromDeadline(time.Now().Add(time.Minute))()
	require.NoError(t, err)
	assert.InDelta(t, 60000, float64(ms.(uint64)), 1000)

	ms, err = RemainingFromDeadline(time.Now().Add(-time.Minute))()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), ms)
}

type lambdaContext struct {
	FunctionName       string
	FunctionVersion    string
	InvokedFunctionARN string
	MemoryLimitInMB    string
	AWSRequestID       string
	LogGroupName       string `json:"log_group_name"`
	LogStreamName      string `json:"log_stream_name,omitempty"`
	Secret             string `json:"-"`
	remaining          uint64
	fail               bool
}

func (c *lambdaContext) GetRemainingTimeInMillis() (uint64, error) {
	if c.fail {
		return 0, errors.New("deadline unknown")
	}
	return c.remaining, nil
}

func (c lambdaContext) Describe(verbose bool) string {
	return c.FunctionName
}

func TestStruct(t *testing.T) {
	ctx := &lambdaContext{
		FunctionName:       "f",
		FunctionVersion:    "$LATEST",
		InvokedFunctionARN: "arn",
		MemoryLimitInMB:    "128",
		AWSRequestID:       "req",
		LogGroupName:       "group",
		LogStreamName:      "stream",
		Secret:             "hidden",
		remaining:          2500,
	}
	obj, err := NewStruct(ctx)
	require.NoError(t, err)

	for _, name := range entities.ContextAttributes {
		v, err := obj.Attr(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, v, name)
	}

	_, err = obj.Attr("secret")
	assert.ErrorIs(t, err, ports.ErrAttributeNotFound)

	ms, err := obj.Call(entities.MethodGetRemainingTimeInMillis)
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), ms)

	ctx.fail = true
	_, err = obj.Call(entities.MethodGetRemainingTimeInMillis)
	assert.EqualError(t, err, "deadline unknown")

	_, err = obj.Call("describe")
	assert.Error(t, err, "methods with arguments are not callable")

	_, err = obj.Call("missing")
	assert.ErrorIs(t, err, ports.ErrMethodNotFound)
}

func TestNewStruct_Rejects(t *testing.T) {
	_, err := NewStruct(42)
	assert.Error(t, err)

	var nilCtx *lambdaContext
	_, err = NewStruct(nilCtx)
	assert.Error(t, err)
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"FunctionName":             "function_name",
		"InvokedFunctionARN":       "invoked_function_arn",
		"MemoryLimitInMB":          "memory_limit_in_mb",
		"AWSRequestID":             "aws_request_id",
		"GetRemainingTimeInMillis": "get_remaining_time_in_millis",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnakeCase(in), in)
	}
}
