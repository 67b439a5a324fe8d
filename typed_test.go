package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/lambda-bridge/application/registry"
	domainerrors "github.com/reglet-dev/lambda-bridge/domain/errors"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/value"
	"github.com/reglet-dev/lambda-bridge/internal/testutil"
)

type orderEvent struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type orderResult struct {
	ID     string  `json:"id"`
	Total  float64 `json:"total"`
	Caller string  `json:"caller"`
}

func priceOrder(lc *Context, ev orderEvent) (orderResult, error) {
	if ev.ID == "broken" {
		return orderResult{}, errors.New("pricing unavailable")
	}
	return orderResult{ID: ev.ID, Total: float64(ev.Quantity) * 2.5, Caller: lc.AWSRequestID()}, nil
}

func TestTyped(t *testing.T) {
	reg, err := registry.Default(Typed(priceOrder))
	require.NoError(t, err)
	ctx := context.Background()

	out, err := reg.InvokeHandler(ctx, "liblambda.handler", map[string]any{"id": "o-1", "quantity": 3}, scenarioContext())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "o-1", "total": 7.5, "caller": "req-1"}, out)

	tests := []struct {
		name  string
		event map[string]any
		want  string
	}{
		{"missing required", map[string]any{"quantity": 1}, "invalid event field id: failed on the 'required' rule"},
		{"below minimum", map[string]any{"id": "o", "quantity": 0}, "invalid event field quantity: failed on the 'gte' rule"},
		{"wrong type", map[string]any{"id": 7, "quantity": 1}, "invalid event field id"},
		{"handler error", map[string]any{"id": "broken", "quantity": 1}, "pricing unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.InvokeHandler(ctx, "liblambda.handler", tt.event, scenarioContext())
			var exc *entities.HostException
			require.True(t, errors.As(err, &exc))
			assert.Contains(t, exc.Message, tt.want)
		})
	}
}

func TestDecodeEvent_NonStruct(t *testing.T) {
	var names []string
	require.NoError(t, DecodeEvent(value.Array(value.String("a")), &names))
	assert.Equal(t, []string{"a"}, names)

	var n int
	err := DecodeEvent(value.String("x"), &n)
	var evErr *domainerrors.EventError
	assert.True(t, errors.As(err, &evErr))
}

func TestEncodeResult(t *testing.T) {
	v, err := EncodeResult(orderResult{ID: "x", Total: 1})
	require.NoError(t, err)
	id, _ := GetString(v, "id")
	assert.Equal(t, "x", id)

	same, err := EncodeResult(value.Int(1))
	require.NoError(t, err)
	testutil.AssertValueEqual(t, value.Int(1), same)

	_, err = EncodeResult(make(chan int))
	assert.ErrorContains(t, err, "failed to encode result")
}

func TestTypedEntry(t *testing.T) {
	entry, err := TypedEntry("price", "Prices an order", priceOrder)
	require.NoError(t, err)

	reg, err := registry.New(registry.WithEntry(entry))
	require.NoError(t, err)

	manifest := reg.Manifest()
	require.Len(t, manifest.Handlers, 1)
	h := manifest.Handlers[0]
	assert.Equal(t, "price", h.Name)
	assert.Equal(t, "Prices an order", h.Description)

	var eventSchema map[string]any
	require.NoError(t, json.Unmarshal(h.EventSchema, &eventSchema))
	assert.Contains(t, eventSchema["properties"], "quantity")
	assert.Contains(t, string(h.ResultSchema), "total")
}
