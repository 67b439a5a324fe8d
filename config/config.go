// Package config reads the runtime configuration the Lambda service passes
// to a function through its environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
)

// validate is a package-level singleton; creating a validator per call is
// expensive.
var validate = validator.New()

// Runtime is the function configuration taken from the environment.
type Runtime struct {
	RuntimeAPI      string `env:"AWS_LAMBDA_RUNTIME_API" validate:"required,hostname_port"`
	FunctionName    string `env:"AWS_LAMBDA_FUNCTION_NAME" validate:"required"`
	FunctionVersion string `env:"AWS_LAMBDA_FUNCTION_VERSION" default:"$LATEST"`
	MemorySize      string `env:"AWS_LAMBDA_FUNCTION_MEMORY_SIZE" default:"128" validate:"numeric"`
	LogGroupName    string `env:"AWS_LAMBDA_LOG_GROUP_NAME"`
	LogStreamName   string `env:"AWS_LAMBDA_LOG_STREAM_NAME"`
	Handler         string `env:"_HANDLER" default:"liblambda.handler" validate:"required,contains=."`
	LogLevel        string `env:"AWS_LAMBDA_LOG_LEVEL" default:"INFO" validate:"oneof=TRACE DEBUG INFO WARN ERROR FATAL"`
}

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv loads and validates the configuration from the process
// environment.
func FromEnv() (Runtime, error) {
	return Load(os.LookupEnv)
}

// Load fills a Runtime from lookup, applies defaults and validates it.
func Load(lookup LookupFunc) (Runtime, error) {
	var cfg Runtime
	rv := reflect.ValueOf(&cfg).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		key := field.Tag.Get("env")
		if key == "" {
			continue
		}
		rv.Field(i).SetString(OptionalEnv(lookup, key, field.Tag.Get("default")))
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Runtime{}, err
	}
	return cfg, nil
}

// Validate checks the configuration with its validate tags.
func (r Runtime) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("runtime config validation failed: %w", err)
	}
	return nil
}

// Snapshot builds the context attributes of one invocation from the
// function configuration and the per-invocation values.
func (r Runtime) Snapshot(requestID, functionARN string) entities.ContextSnapshot {
	return entities.ContextSnapshot{
		FunctionName:       r.FunctionName,
		FunctionVersion:    r.FunctionVersion,
		InvokedFunctionARN: functionARN,
		MemoryLimitInMB:    r.MemorySize,
		AWSRequestID:       requestID,
		LogGroupName:       r.LogGroupName,
		LogStreamName:      r.LogStreamName,
	}
}

// SlogLevel maps LogLevel onto a slog level. TRACE maps below Debug and
// FATAL above Error.
func (r Runtime) SlogLevel() slog.Level {
	switch r.LogLevel {
	case "TRACE":
		return slog.LevelDebug - 4
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	case "FATAL":
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

// OptionalEnv returns the value of key, or defaultVal when the variable is
// unset or empty.
func OptionalEnv(lookup LookupFunc, key, defaultVal string) string {
	if val, ok := lookup(key); ok && val != "" {
		return val
	}
	return defaultVal
}
