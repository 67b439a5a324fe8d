// Package guest is the entry point of a bridge module compiled to WASM
// (GOOS=wasip1, -buildmode=c-shared). It exports invoke and describe to the
// host executor and answers remaining time queries through the lambda_host
// import.
package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/reglet-dev/lambda-bridge/application/codec"
	"github.com/reglet-dev/lambda-bridge/application/translator"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
)

// Dispatcher is the handler table served by the guest.
// *registry.Registry satisfies it.
type Dispatcher interface {
	Invoke(ctx context.Context, name string, event any, host ports.HostObject) (any, error)
	Manifest() entities.ModuleManifest
}

// RemainingFunc asks the host for the milliseconds left in the invocation.
// A negative answer means the host could not report it.
type RemainingFunc func() int64

var (
	mu         sync.RWMutex
	dispatcher Dispatcher
)

// Register installs the dispatcher served by the invoke and describe
// exports. It is called once from the guest's main or init.
func Register(d Dispatcher) {
	mu.Lock()
	defer mu.Unlock()
	if dispatcher != nil && d != nil {
		slog.Warn("bridge: guest dispatcher already registered, replacing")
	}
	dispatcher = d
}

func registered() Dispatcher {
	mu.RLock()
	defer mu.RUnlock()
	return dispatcher
}

// Handle runs one serialized invocation: it decodes an InvokeRequest, invokes
// the named handler with a host object backed by the request's attributes
// and remaining, and returns the serialized InvokeResponse. It never fails;
// every problem is reported as an error response.
func Handle(ctx context.Context, d Dispatcher, data []byte, remaining RemainingFunc) (out []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("bridge: guest dispatch panic", "panic", r, "stack", string(debug.Stack()))
			out = errorResponse(entities.NewRuntimeError(fmt.Sprintf("guest panic: %v", r)))
		}
	}()

	if d == nil {
		return errorResponse(entities.NewRuntimeError("no handlers registered"))
	}

	var req entities.InvokeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(entities.NewRuntimeError(fmt.Sprintf("invalid invoke request: %v", err)))
	}

	var event any
	if len(req.Event) > 0 {
		decoded, err := codec.DecodeJSON(req.Event)
		if err != nil {
			return errorResponse(translator.Translate(err))
		}
		event = decoded
	}

	host := &wireHost{attrs: req.Context.Attributes, remaining: remaining}
	result, err := d.Invoke(ctx, req.Handler, event, host)
	if err != nil {
		return errorResponse(translator.Translate(err))
	}

	encoded, err := codec.EncodeJSON(result)
	if err != nil {
		return errorResponse(translator.Translate(err))
	}
	return marshalResponse(entities.InvokeResponse{Result: encoded})
}

// Describe returns the serialized manifest of d.
func Describe(d Dispatcher) []byte {
	var manifest entities.ModuleManifest
	if d != nil {
		manifest = d.Manifest()
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		slog.Error("bridge: failed to marshal manifest", "error", err)
		return []byte("{}")
	}
	return data
}

func errorResponse(exc *entities.HostException) []byte {
	return marshalResponse(entities.InvokeResponse{Error: exc})
}

func marshalResponse(resp entities.InvokeResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Only reachable with a result that is not valid JSON.
		data, _ = json.Marshal(entities.InvokeResponse{
			Error: entities.NewRuntimeError(fmt.Sprintf("failed to marshal response: %v", err)),
		})
	}
	return data
}

// wireHost is the host context object seen by handlers running in the guest.
type wireHost struct {
	attrs     map[string]any
	remaining RemainingFunc
}

func (h *wireHost) Attr(name string) (any, error) {
	v, ok := h.attrs[name]
	if !ok {
		return nil, ports.ErrAttributeNotFound
	}
	return v, nil
}

func (h *wireHost) Call(method string) (any, error) {
	if method != entities.MethodGetRemainingTimeInMillis || h.remaining == nil {
		return nil, ports.ErrMethodNotFound
	}
	ms := h.remaining()
	if ms < 0 {
		return nil, fmt.Errorf("host reported no remaining time")
	}
	return uint64(ms), nil
}
