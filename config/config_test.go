package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(lookupFrom(map[string]string{
		"AWS_LAMBDA_RUNTIME_API":          "127.0.0.1:9001",
		"AWS_LAMBDA_FUNCTION_NAME":        "orders",
		"AWS_LAMBDA_FUNCTION_MEMORY_SIZE": "512",
		"AWS_LAMBDA_LOG_GROUP_NAME":       "/aws/lambda/orders",
		"AWS_LAMBDA_LOG_STREAM_NAME":      "stream",
		"AWS_LAMBDA_LOG_LEVEL":            "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9001", cfg.RuntimeAPI)
	assert.Equal(t, "orders", cfg.FunctionName)
	assert.Equal(t, "$LATEST", cfg.FunctionVersion)
	assert.Equal(t, "512", cfg.MemorySize)
	assert.Equal(t, "liblambda.handler", cfg.Handler)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	base := map[string]string{
		"AWS_LAMBDA_RUNTIME_API":   "127.0.0.1:9001",
		"AWS_LAMBDA_FUNCTION_NAME": "orders",
	}

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"missing runtime api", "AWS_LAMBDA_RUNTIME_API", ""},
		{"runtime api without port", "AWS_LAMBDA_RUNTIME_API", "localhost"},
		{"missing function name", "AWS_LAMBDA_FUNCTION_NAME", ""},
		{"non numeric memory", "AWS_LAMBDA_FUNCTION_MEMORY_SIZE", "lots"},
		{"handler without module", "_HANDLER", "handler"},
		{"unknown log level", "AWS_LAMBDA_LOG_LEVEL", "LOUD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range base {
				env[k] = v
			}
			env[tt.key] = tt.value

			_, err := Load(lookupFrom(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "runtime config validation failed")
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "localhost:8080")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "fn")
	t.Setenv("_HANDLER", "liblambda.orders")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "liblambda.orders", cfg.Handler)
}

func TestSnapshot(t *testing.T) {
	cfg := Runtime{
		FunctionName:    "orders",
		FunctionVersion: "3",
		MemorySize:      "256",
		LogGroupName:    "g",
		LogStreamName:   "s",
	}

	snap := cfg.Snapshot("req-1", "arn:aws:lambda:eu-west-1:1:function:orders")
	assert.Equal(t, "orders", snap.FunctionName)
	assert.Equal(t, "3", snap.FunctionVersion)
	assert.Equal(t, "256", snap.MemoryLimitInMB)
	assert.Equal(t, "req-1", snap.AWSRequestID)
	assert.Equal(t, "arn:aws:lambda:eu-west-1:1:function:orders", snap.InvokedFunctionARN)
	assert.Equal(t, "g", snap.LogGroupName)
	assert.Equal(t, "s", snap.LogStreamName)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"TRACE": slog.LevelDebug - 4,
		"DEBUG": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"FATAL": slog.LevelError + 4,
	}
	for name, want := range tests {
		assert.Equal(t, want, Runtime{LogLevel: name}.SlogLevel(), name)
	}
}

func TestOptionalEnv(t *testing.T) {
	lookup := lookupFrom(map[string]string{"SET": "v", "EMPTY": ""})

	assert.Equal(t, "d", OptionalEnv(lookup, "UNSET", "d"))
	assert.Equal(t, "d", OptionalEnv(lookup, "EMPTY", "d"))
	assert.Equal(t, "v", OptionalEnv(lookup, "SET", "d"))
}
