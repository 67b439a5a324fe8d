// Package bridgetest provides a test harness that runs handlers against a
// fake host context, in process or inside a loaded WASM module.
package bridgetest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/infrastructure/hostobject"
)

// DefaultRemainingMillis is the remaining time reported when a test case
// does not set one.
const DefaultRemainingMillis = 3000

// Dispatcher invokes handlers by name. *registry.Registry and *host.Module
// satisfy it.
type Dispatcher interface {
	Invoke(ctx context.Context, name string, event any, host ports.HostObject) (any, error)
}

// TestCase defines one invocation.
type TestCase struct {
	Name string
	// Handler defaults to "handler".
	Handler string
	Event   any
	// Context defaults to DefaultSnapshot.
	Context *entities.ContextSnapshot
	// Remaining answers remaining time queries; defaults to
	// DefaultRemainingMillis.
	Remaining hostobject.Method
	Validate  func(t *testing.T, r *Result)
}

// Result is the outcome of one invocation.
type Result struct {
	Output any
	Err    *entities.HostException
}

// DefaultSnapshot returns the context attributes used when a test case does
// not set any.
func DefaultSnapshot() entities.ContextSnapshot {
	return entities.ContextSnapshot{
		FunctionName:       "test-function",
		FunctionVersion:    "$LATEST",
		InvokedFunctionARN: "arn:aws:lambda:us-east-1:000000000000:function:test-function",
		MemoryLimitInMB:    "128",
		AWSRequestID:       "00000000-0000-0000-0000-000000000000",
		LogGroupName:       "/aws/lambda/test-function",
		LogStreamName:      "2024/01/01/[$LATEST]test",
	}
}

// RunHandlerTests runs a suite of invocations against d.
func RunHandlerTests(t *testing.T, d Dispatcher, tests []TestCase) {
	t.Helper()

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			r := Invoke(context.Background(), d, tc)
			if tc.Validate != nil {
				tc.Validate(t, r)
			}
		})
	}
}

// Invoke runs a single test case.
func Invoke(ctx context.Context, d Dispatcher, tc TestCase) *Result {
	name := tc.Handler
	if name == "" {
		name = registry.DefaultHandlerName
	}
	snapshot := DefaultSnapshot()
	if tc.Context != nil {
		snapshot = *tc.Context
	}
	remaining := tc.Remaining
	if remaining == nil {
		remaining = hostobject.FixedRemaining(DefaultRemainingMillis)
	}

	out, err := d.Invoke(ctx, name, tc.Event, hostobject.NewContext(snapshot, remaining))
	if err != nil {
		var exc *entities.HostException
		if !errors.As(err, &exc) {
			exc = entities.NewRuntimeError(err.Error())
		}
		return &Result{Err: exc}
	}
	return &Result{Output: out}
}

// AssertSuccess asserts the invocation returned a result.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	if r.Err != nil {
		t.Errorf("expected success, got %s: %s", r.Err.Type, r.Err.Message)
	}
}

// AssertFailure asserts the invocation raised an exception with message.
func AssertFailure(t *testing.T, r *Result, message string) {
	t.Helper()
	if r.Err == nil {
		t.Errorf("expected failure %q, got result %v", message, r.Output)
		return
	}
	if r.Err.Type != entities.RuntimeErrorType {
		t.Errorf("expected %s, got %s", entities.RuntimeErrorType, r.Err.Type)
	}
	if r.Err.Message != message {
		t.Errorf("expected message %q, got %q", message, r.Err.Message)
	}
}

// AssertOutputField asserts a field of an object result matches expected.
func AssertOutputField(t *testing.T, r *Result, key string, expected any) {
	t.Helper()
	obj, ok := r.Output.(map[string]any)
	if !ok {
		t.Errorf("expected an object result, got %T", r.Output)
		return
	}
	val, ok := obj[key]
	if !ok {
		t.Errorf("missing output field %q", key)
		return
	}

	// Integers come back as int64 or uint64 and floats as float64.
	if expectedNum, ok := toFloat64(expected); ok {
		if actualNum, ok := toFloat64(val); ok {
			if expectedNum != actualNum {
				t.Errorf("field %q: expected %v, got %v", key, expected, val)
			}
			return
		}
	}

	if !reflect.DeepEqual(val, expected) {
		t.Errorf("field %q: expected %v, got %v", key, expected, val)
	}
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
