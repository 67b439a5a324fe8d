package guest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/lambda-bridge/application/contextview"
	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/value"
)

const requestContext = `{
	"function_name": "f",
	"function_version": "$LATEST",
	"invoked_function_arn": "arn:aws:lambda:us-east-1:123:function:f",
	"memory_limit_in_mb": "128",
	"aws_request_id": "req-1",
	"log_group_name": "/aws/lambda/f",
	"log_stream_name": "stream"
}`

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		registry.WithHandler("echo", func(ev value.Value, _ *contextview.View) (value.Value, error) {
			return ev, nil
		}),
		registry.WithHandler("ctx", func(_ value.Value, lc *contextview.View) (value.Value, error) {
			ms, err := lc.RemainingTimeInMillis()
			if err != nil {
				return value.Value{}, err
			}
			return value.Object(map[string]value.Value{
				"request_id": value.String(lc.AWSRequestID()),
				"remaining":  value.Uint(ms),
			}), nil
		}),
		registry.WithHandler("boom", func(value.Value, *contextview.View) (value.Value, error) {
			return value.Value{}, errors.New("boom")
		}),
		registry.WithHandler("panic", func(value.Value, *contextview.View) (value.Value, error) {
			panic("bad")
		}),
	)
	require.NoError(t, err)
	return reg
}

func request(handler, event string) []byte {
	return []byte(`{"handler":"` + handler + `","event":` + event + `,"context":{"attributes":` + requestContext + `}}`)
}

func decodeResponse(t *testing.T, data []byte) entities.InvokeResponse {
	t.Helper()
	var resp entities.InvokeResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func fixedRemaining(ms int64) RemainingFunc {
	return func() int64 { return ms }
}

func TestHandle_Echo(t *testing.T) {
	out := Handle(context.Background(), testRegistry(t), request("echo", `{"x":1,"y":2.0}`), fixedRemaining(100))
	resp := decodeResponse(t, out)

	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"x":1,"y":2.0}`, string(resp.Result))
	assert.Contains(t, string(resp.Result), `"y":2.0`)
}

func TestHandle_Context(t *testing.T) {
	out := Handle(context.Background(), testRegistry(t), request("ctx", `null`), fixedRemaining(5000))
	resp := decodeResponse(t, out)

	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"request_id":"req-1","remaining":5000}`, string(resp.Result))
}

func TestHandle_Errors(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name      string
		data      []byte
		remaining RemainingFunc
		want      string
	}{
		{"handler error", request("boom", `{}`), fixedRemaining(1), "boom"},
		{"handler panic", request("panic", `{}`), fixedRemaining(1), "handler panic: bad"},
		{"unknown handler", request("nope", `{}`), fixedRemaining(1), "unknown handler: liblambda.nope"},
		{"host has no remaining time", request("ctx", `{}`), fixedRemaining(-1), "failed to call get_remaining_time_in_millis"},
		{"no remaining func", request("ctx", `{}`), nil, "failed to call get_remaining_time_in_millis"},
		{"malformed request", []byte(`{`), fixedRemaining(1), "invalid invoke request"},
		{
			name:      "missing attribute",
			data:      []byte(`{"handler":"echo","event":{},"context":{"attributes":{}}}`),
			remaining: fixedRemaining(1),
			want:      "failed to extract context attribute function_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decodeResponse(t, Handle(context.Background(), reg, tt.data, tt.remaining))
			require.NotNil(t, resp.Error)
			assert.Equal(t, entities.RuntimeErrorType, resp.Error.Type)
			assert.Contains(t, resp.Error.Message, tt.want)
			assert.Empty(t, resp.Result)
		})
	}
}

func TestHandle_NoDispatcher(t *testing.T) {
	resp := decodeResponse(t, Handle(context.Background(), nil, request("echo", `1`), nil))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "no handlers registered", resp.Error.Message)
}

func TestHandle_MissingEventIsNull(t *testing.T) {
	data := []byte(`{"handler":"echo","context":{"attributes":` + requestContext + `}}`)
	resp := decodeResponse(t, Handle(context.Background(), testRegistry(t), data, nil))
	require.Nil(t, resp.Error)
	assert.Equal(t, "null", string(resp.Result))
}

func TestDescribe(t *testing.T) {
	var manifest entities.ModuleManifest
	require.NoError(t, json.Unmarshal(Describe(testRegistry(t)), &manifest))

	assert.Equal(t, registry.DefaultModuleName, manifest.Module)
	require.Len(t, manifest.Handlers, 4)
	assert.Equal(t, "boom", manifest.Handlers[0].Name)

	assert.JSONEq(t, `{"module":"","sdk_version":"","handlers":null}`, string(Describe(nil)))
}

func TestRegister(t *testing.T) {
	reg := testRegistry(t)
	Register(reg)
	t.Cleanup(func() { Register(nil) })

	assert.Same(t, reg, registered())
}
