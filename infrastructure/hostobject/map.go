// Package hostobject provides in-process implementations of the host context
// object, for embedding the bridge directly in a Go host and for tests.
package hostobject

import (
	"time"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
)

// Method is a zero-argument method on a host object.
type Method func() (any, error)

// Map is a host object backed by plain maps.
type Map struct {
	Attrs   map[string]any
	Methods map[string]Method
}

// Attr implements ports.HostObject.
func (m *Map) Attr(name string) (any, error) {
	v, ok := m.Attrs[name]
	if !ok {
		return nil, ports.ErrAttributeNotFound
	}
	return v, nil
}

// Call implements ports.HostObject.
func (m *Map) Call(method string) (any, error) {
	fn, ok := m.Methods[method]
	if !ok || fn == nil {
		return nil, ports.ErrMethodNotFound
	}
	return fn()
}

// NewContext builds a host context object from a snapshot and a remaining
// time source. A nil remaining leaves get_remaining_time_in_millis undefined.
func NewContext(snapshot entities.ContextSnapshot, remaining Method) *Map {
	m := &Map{
		Attrs:   snapshot.Attributes(),
		Methods: map[string]Method{},
	}
	if remaining != nil {
		m.Methods[entities.MethodGetRemainingTimeInMillis] = remaining
	}
	return m
}

// FixedRemaining answers every remaining time query with ms.
func FixedRemaining(ms uint64) Method {
	return func() (any, error) {
		return ms, nil
	}
}

// RemainingFromDeadline answers remaining time queries with the milliseconds
// left until deadline, clamped at zero.
func RemainingFromDeadline(deadline time.Time) Method {
	return func() (any, error) {
		left := time.Until(deadline)
		if left <= 0 {
			return uint64(0), nil
		}
		return uint64(left.Milliseconds()), nil
	}
}
