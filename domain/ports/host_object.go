package ports

import "errors"

// ErrAttributeNotFound is returned by HostObject.Attr for an absent attribute.
var ErrAttributeNotFound = errors.New("attribute not found")

// ErrMethodNotFound is returned by HostObject.Call for an absent method.
var ErrMethodNotFound = errors.New("method not found")

// HostObject is a borrowed, host-owned object. The core reads attributes and
// calls zero-argument methods on it; it never retains a HostObject beyond the
// invocation it was handed to.
type HostObject interface {
	// Attr returns the value of the named attribute.
	// Implementations return an error wrapping ErrAttributeNotFound when the
	// attribute does not exist.
	Attr(name string) (any, error)

	// Call invokes the named zero-argument method and returns its result.
	// Implementations return an error wrapping ErrMethodNotFound when the
	// method does not exist.
	Call(method string) (any, error)
}
