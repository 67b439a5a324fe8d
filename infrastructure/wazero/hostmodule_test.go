package wazero

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/infrastructure/hostobject"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

func TestRemainingMillis(t *testing.T) {
	deadlineCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tests := []struct {
		name  string
		ctx   context.Context
		want  int64
		delta float64
	}{
		{"no source", context.Background(), -1, 0},
		{"deadline", deadlineCtx, 60000, 1000},
		{
			name: "host object wins over deadline",
			ctx:  invocation.WithHost(deadlineCtx, hostobject.NewContext(entities.ContextSnapshot{}, hostobject.FixedRemaining(1234))),
			want: 1234,
		},
		{
			name: "host object failure",
			ctx: invocation.WithHost(context.Background(), hostobject.NewContext(entities.ContextSnapshot{}, func() (any, error) {
				return nil, errors.New("gone")
			})),
			want: -1,
		},
		{
			name: "host object wrong type",
			ctx: invocation.WithHost(context.Background(), hostobject.NewContext(entities.ContextSnapshot{}, func() (any, error) {
				return "later", nil
			})),
			want: -1,
		},
		{
			name: "host object panics",
			ctx: invocation.WithHost(context.Background(), hostobject.NewContext(entities.ContextSnapshot{}, func() (any, error) {
				panic("host blew up")
			})),
			want: -1,
		},
		{
			name: "clamped",
			ctx:  invocation.WithHost(context.Background(), hostobject.NewContext(entities.ContextSnapshot{}, hostobject.FixedRemaining(math.MaxUint64))),
			want: math.MaxInt64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingMillis(tt.ctx)
			if tt.delta > 0 {
				assert.InDelta(t, float64(tt.want), float64(got), tt.delta)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegisterHostModule(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	require.NoError(t, RegisterHostModule(ctx, rt))

	mod := rt.Module(DefaultModuleName)
	require.NotNil(t, mod)
	assert.NotNil(t, mod.ExportedFunction("log_message"))

	fn := mod.ExportedFunction(entities.MethodGetRemainingTimeInMillis)
	require.NotNil(t, fn)

	callCtx := invocation.WithHost(ctx, hostobject.NewContext(entities.ContextSnapshot{}, hostobject.FixedRemaining(5000)))
	results, err := fn.Call(callCtx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(5000), results[0])
}

func TestRegisterHostModule_CustomName(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	require.NoError(t, RegisterHostModule(ctx, rt, WithModuleName("custom_host")))
	assert.NotNil(t, rt.Module("custom_host"))
	assert.Nil(t, rt.Module(DefaultModuleName))

	assert.Error(t, RegisterHostModule(ctx, rt, WithModuleName("custom_host")), "module names are unique per runtime")
}
