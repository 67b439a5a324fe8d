// Package invocation tracks the invocation currently running inside the
// bridge and converts between context deadlines and remaining milliseconds.
package invocation

import (
	stdcontext "context"
	"sync"
	"time"

	"github.com/reglet-dev/lambda-bridge/domain/ports"
)

// contextKey is a private type for context value keys to avoid collisions.
type contextKey string

// RequestIDKey is the context key for the aws_request_id of the invocation.
const RequestIDKey contextKey = "aws_request_id"

// HandlerKey is the context key for the name of the dispatched handler.
const HandlerKey contextKey = "handler"

// hostKey is the context key for the host context object of a call that
// crosses into a WASM guest.
const hostKey contextKey = "host_object"

// current holds the context of the invocation in flight. Invocations run one
// at a time, so a single slot is enough.
var current = struct {
	ctx stdcontext.Context
	sync.RWMutex
}{
	ctx: stdcontext.Background(),
}

// SetCurrent records ctx as the context of the running invocation.
func SetCurrent(ctx stdcontext.Context) {
	current.Lock()
	defer current.Unlock()
	current.ctx = ctx
}

// Current returns the context of the running invocation, or
// context.Background() between invocations.
func Current() stdcontext.Context {
	current.RLock()
	defer current.RUnlock()
	if current.ctx == nil {
		return stdcontext.Background()
	}
	return current.ctx
}

// Reset clears the running invocation. Call it (usually via defer) when an
// invocation completes.
func Reset() {
	SetCurrent(stdcontext.Background())
}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx stdcontext.Context, id string) stdcontext.Context {
	return stdcontext.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx stdcontext.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithHandler returns a copy of ctx carrying the dispatched handler name.
func WithHandler(ctx stdcontext.Context, name string) stdcontext.Context {
	return stdcontext.WithValue(ctx, HandlerKey, name)
}

// Handler returns the handler name stored in ctx, or "".
func Handler(ctx stdcontext.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(HandlerKey).(string)
	return name
}

// WithHost returns a copy of ctx carrying the host context object.
func WithHost(ctx stdcontext.Context, host ports.HostObject) stdcontext.Context {
	return stdcontext.WithValue(ctx, hostKey, host)
}

// Host returns the host context object stored in ctx, or nil.
func Host(ctx stdcontext.Context) ports.HostObject {
	if ctx == nil {
		return nil
	}
	host, _ := ctx.Value(hostKey).(ports.HostObject)
	return host
}

// RemainingMillis reports the milliseconds left before ctx's deadline.
// It returns false when ctx has no deadline. An expired deadline yields 0.
func RemainingMillis(ctx stdcontext.Context) (uint64, bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, false
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, true
	}
	return uint64(left.Milliseconds()), true
}

// WithRemaining derives a context whose deadline lies ms milliseconds from
// now. If parent is nil, context.Background() is used.
func WithRemaining(parent stdcontext.Context, ms uint64) (stdcontext.Context, stdcontext.CancelFunc) {
	if parent == nil {
		parent = stdcontext.Background()
	}
	return stdcontext.WithTimeout(parent, time.Duration(ms)*time.Millisecond)
}

// DeadlineFromUnixMillis converts an absolute deadline in epoch milliseconds,
// the format of the Lambda-Runtime-Deadline-Ms header, into a time.Time.
func DeadlineFromUnixMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
