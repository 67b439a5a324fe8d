// Package contextview provides the read-only view of the host's invocation
// context that is handed to handlers.
package contextview

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
	domainerrors "github.com/reglet-dev/lambda-bridge/domain/errors"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/domain/value"
)

// View exposes the seven context attributes captured at construction and a
// live query for the remaining execution time.
//
// The attributes never change after New returns. RemainingTimeInMillis asks
// the host on every call and fails once the view has been released.
type View struct {
	host     atomic.Pointer[hostRef]
	snapshot entities.ContextSnapshot
}

type hostRef struct {
	obj ports.HostObject
}

// New reads the context attributes from host, in order, and returns a view
// bound to it. The first attribute that is missing or not a string aborts
// construction with a *errors.ContextAttributeError.
func New(host ports.HostObject) (*View, error) {
	v := &View{}
	for _, name := range entities.ContextAttributes {
		s, err := readAttr(host, name)
		if err != nil {
			return nil, &domainerrors.ContextAttributeError{Attribute: name, Err: err}
		}
		*v.snapshot.Field(name) = s
	}
	v.host.Store(&hostRef{obj: host})
	return v, nil
}

func readAttr(host ports.HostObject, name string) (s string, err error) {
	if host == nil {
		return "", ports.ErrAttributeNotFound
	}
	defer func() {
		if r := recover(); r != nil {
			s, err = "", fmt.Errorf("host raised while reading attribute: %v", r)
		}
	}()
	raw, err := host.Attr(name)
	if err != nil {
		return "", err
	}
	switch v := raw.(type) {
	case string:
		return v, nil
	case value.Value:
		if str, ok := v.AsString(); ok {
			return str, nil
		}
		return "", fmt.Errorf("expected a string, got %s", v.Kind())
	default:
		return "", fmt.Errorf("expected a string, got %T", raw)
	}
}

// FunctionName returns the function_name attribute.
func (v *View) FunctionName() string { return v.snapshot.FunctionName }

// FunctionVersion returns the function_version attribute.
func (v *View) FunctionVersion() string { return v.snapshot.FunctionVersion }

// InvokedFunctionARN returns the invoked_function_arn attribute.
func (v *View) InvokedFunctionARN() string { return v.snapshot.InvokedFunctionARN }

// MemoryLimitInMB returns the memory_limit_in_mb attribute. It is kept as
// the string the host supplied.
func (v *View) MemoryLimitInMB() string { return v.snapshot.MemoryLimitInMB }

// AWSRequestID returns the aws_request_id attribute.
func (v *View) AWSRequestID() string { return v.snapshot.AWSRequestID }

// LogGroupName returns the log_group_name attribute.
func (v *View) LogGroupName() string { return v.snapshot.LogGroupName }

// LogStreamName returns the log_stream_name attribute.
func (v *View) LogStreamName() string { return v.snapshot.LogStreamName }

// Snapshot returns a copy of the captured attributes.
func (v *View) Snapshot() entities.ContextSnapshot { return v.snapshot }

// RemainingTimeInMillis calls get_remaining_time_in_millis on the host
// context object. Every failure, including a released view, a failing call
// and a result that is not a non-negative integer, is reported as the same
// *errors.GetRemainingTimeError.
func (v *View) RemainingTimeInMillis() (uint64, error) {
	ref := v.host.Load()
	if ref == nil || ref.obj == nil {
		return 0, &domainerrors.GetRemainingTimeError{}
	}
	raw, err := callHost(ref.obj, entities.MethodGetRemainingTimeInMillis)
	if err != nil {
		return 0, &domainerrors.GetRemainingTimeError{}
	}
	ms, ok := CoerceMillis(raw)
	if !ok {
		return 0, &domainerrors.GetRemainingTimeError{}
	}
	return ms, nil
}

// callHost calls method on host, turning a panic raised by the host object
// into an error.
func callHost(host ports.HostObject, method string) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("host raised in %s: %v", method, r)
		}
	}()
	return host.Call(method)
}

// RemainingTime is RemainingTimeInMillis as a time.Duration.
func (v *View) RemainingTime() (time.Duration, error) {
	ms, err := v.RemainingTimeInMillis()
	if err != nil {
		return 0, err
	}
	if ms > math.MaxInt64/uint64(time.Millisecond) {
		return time.Duration(math.MaxInt64), nil
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Release detaches the view from the host context object. It is called when
// the invocation ends; later remaining time queries fail.
func (v *View) Release() {
	v.host.Store(nil)
}

// Released reports whether Release has been called.
func (v *View) Released() bool {
	return v.host.Load() == nil
}

// LogValue implements slog.LogValuer.
func (v *View) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String(entities.AttrAWSRequestID, v.snapshot.AWSRequestID),
		slog.String(entities.AttrFunctionName, v.snapshot.FunctionName),
		slog.String(entities.AttrFunctionVersion, v.snapshot.FunctionVersion),
	)
}

// CoerceMillis coerces a host's remaining time answer to an unsigned 64-bit
// integer. Floats are accepted only when they hold a non-negative integral
// value.
func CoerceMillis(raw any) (uint64, bool) {
	switch n := raw.(type) {
	case nil:
		return 0, false
	case json.Number:
		parsed, err := value.ParseNumber(n.String())
		if err != nil {
			return 0, false
		}
		return numberToMillis(parsed)
	case value.Value:
		parsed, ok := n.AsNumber()
		if !ok {
			return 0, false
		}
		return numberToMillis(parsed)
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return 0, false
		}
		return uint64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return floatToMillis(rv.Float())
	default:
		return 0, false
	}
}

func numberToMillis(n value.Number) (uint64, bool) {
	if n.IsInteger() {
		return n.Uint64()
	}
	return floatToMillis(n.Float64())
}

func floatToMillis(f float64) (uint64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}
