package bridge

import (
	"fmt"

	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/application/schema"
)

// Typed adapts a function over Go types to a HandlerFunc. The event is
// decoded into E and validated (see DecodeEvent); the result is encoded
// through its JSON form.
func Typed[E, R any](fn func(lc *Context, event E) (R, error)) HandlerFunc {
	return func(ev Value, lc *Context) (Value, error) {
		var event E
		if err := DecodeEvent(ev, &event); err != nil {
			return Value{}, err
		}
		result, err := fn(lc, event)
		if err != nil {
			return Value{}, err
		}
		return EncodeResult(result)
	}
}

// TypedEntry builds a registry entry for a typed handler, with the JSON
// schemas of E and R recorded for the module manifest.
func TypedEntry[E, R any](name, description string, fn func(lc *Context, event E) (R, error)) (registry.Entry, error) {
	var (
		event  E
		result R
	)
	eventSchema, err := schema.GenerateSchema(event)
	if err != nil {
		return registry.Entry{}, fmt.Errorf("event schema for %s: %w", name, err)
	}
	resultSchema, err := schema.GenerateSchema(result)
	if err != nil {
		return registry.Entry{}, fmt.Errorf("result schema for %s: %w", name, err)
	}
	return registry.Entry{
		Name:         name,
		Description:  description,
		Handler:      Typed(fn),
		EventSchema:  eventSchema,
		ResultSchema: resultSchema,
	}, nil
}
