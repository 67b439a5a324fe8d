// Package registry provides the module entry point: an immutable table of
// named handlers that the host dispatches into.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/reglet-dev/lambda-bridge/application/adapter"
	"github.com/reglet-dev/lambda-bridge/application/translator"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

const (
	// Version of the bridge, reported in module manifests.
	Version = "0.1.0-alpha"

	// DefaultModuleName is the module name the host loads.
	DefaultModuleName = "liblambda"

	// DefaultHandlerName is the key used when a module exports one handler.
	DefaultHandlerName = "handler"
)

// InvokeFunc is the dispatch signature shared by registered handlers and
// middleware.
type InvokeFunc func(ctx context.Context, event any, host ports.HostObject) (any, error)

// Entry describes one handler to register.
type Entry struct {
	Handler      adapter.HandlerFunc
	Name         string
	Description  string
	EventSchema  json.RawMessage
	ResultSchema json.RawMessage
}

// Registry is an immutable collection of named handlers.
// Once created via New, handlers cannot be added or removed.
type Registry struct {
	handlers map[string]InvokeFunc
	entries  map[string]Entry
	module   string
	names    []string // sorted for consistent iteration
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	entries    map[string]Entry
	logger     *slog.Logger
	module     string
	middleware []Middleware
	errors     []error
}

// New creates an immutable Registry with the given options.
// Returns an error if any handler name is empty or registered twice.
//
// Example usage:
//
//	reg, err := registry.New(
//	    registry.WithMiddleware(metrics.Middleware(collector)),
//	    registry.WithHandler("orders", ordersHandler),
//	    registry.WithHandler("refunds", refundsHandler),
//	)
func New(opts ...Option) (*Registry, error) {
	b := &registryBuilder{
		entries: make(map[string]Entry),
		module:  DefaultModuleName,
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	handlers := make(map[string]InvokeFunc, len(b.entries))
	for name, entry := range b.entries {
		adapterOpts := []adapter.Option{adapter.WithName(name)}
		if b.logger != nil {
			adapterOpts = append(adapterOpts, adapter.WithLogger(b.logger))
		}
		wrapped := InvokeFunc(adapter.New(entry.Handler, adapterOpts...).Invoke)
		// Apply middleware in reverse order so first middleware wraps outermost
		for i := len(b.middleware) - 1; i >= 0; i-- {
			wrapped = b.middleware[i](wrapped)
		}
		handlers[name] = wrapped
	}

	return &Registry{
		handlers: handlers,
		entries:  b.entries,
		module:   b.module,
		names:    names,
	}, nil
}

// Default creates a registry exporting fn as its single handler under
// DefaultHandlerName.
func Default(fn adapter.HandlerFunc, opts ...Option) (*Registry, error) {
	return New(append([]Option{WithHandler(DefaultHandlerName, fn)}, opts...)...)
}

// Invoke dispatches one invocation to the named handler. Failures, including
// an unknown name, are returned as a *entities.HostException.
func (r *Registry) Invoke(ctx context.Context, name string, event any, host ports.HostObject) (any, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, entities.NewRuntimeError(fmt.Sprintf("unknown handler: %s.%s", r.module, name))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := handler(invocation.WithHandler(ctx, name), event, host)
	if err != nil {
		return nil, translator.Translate(err)
	}
	return out, nil
}

// InvokeHandler dispatches using a host handler string such as
// "liblambda.handler".
func (r *Registry) InvokeHandler(ctx context.Context, handler string, event any, host ports.HostObject) (any, error) {
	name, err := r.Resolve(handler)
	if err != nil {
		return nil, translator.Translate(err)
	}
	return r.Invoke(ctx, name, event, host)
}

// Resolve maps a host handler string to a registered handler name. Both the
// qualified form "<module>.<name>" and a bare name are accepted.
func (r *Registry) Resolve(handler string) (string, error) {
	name := handler
	if strings.Contains(handler, ".") {
		module, n, err := ResolveHandler(handler)
		if err != nil {
			return "", err
		}
		if module != r.module {
			return "", fmt.Errorf("unknown module %q, this module is %q", module, r.module)
		}
		name = n
	}
	if !r.Has(name) {
		return "", fmt.Errorf("unknown handler: %s.%s", r.module, name)
	}
	return name, nil
}

// Has returns true if a handler with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns a sorted list of all registered handler names.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Module returns the module name.
func (r *Registry) Module() string {
	return r.module
}

// Manifest describes the module and its handlers.
func (r *Registry) Manifest() entities.ModuleManifest {
	m := entities.ModuleManifest{
		Module:     r.module,
		SDKVersion: Version,
		Handlers:   make([]entities.HandlerManifest, 0, len(r.names)),
	}
	for _, name := range r.names {
		e := r.entries[name]
		m.Handlers = append(m.Handlers, entities.HandlerManifest{
			Name:         name,
			Description:  e.Description,
			EventSchema:  e.EventSchema,
			ResultSchema: e.ResultSchema,
		})
	}
	return m
}

// ResolveHandler splits a host handler string "<module>.<name>" at its last
// dot.
func ResolveHandler(handler string) (module, name string, err error) {
	i := strings.LastIndex(handler, ".")
	if i <= 0 || i == len(handler)-1 {
		return "", "", fmt.Errorf("invalid handler %q, expected <module>.<name>", handler)
	}
	return handler[:i], handler[i+1:], nil
}

// addEntry registers an entry.
// Returns an error if the name is empty, already registered or has no handler.
func (b *registryBuilder) addEntry(e Entry) error {
	if e.Name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if strings.Contains(e.Name, ".") {
		return fmt.Errorf("handler name %q cannot contain a dot", e.Name)
	}
	if e.Handler == nil {
		return fmt.Errorf("handler %q is nil", e.Name)
	}
	if _, exists := b.entries[e.Name]; exists {
		return fmt.Errorf("duplicate handler name: %q", e.Name)
	}
	b.entries[e.Name] = e
	return nil
}
