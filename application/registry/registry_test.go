package registry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/lambda-bridge/application/contextview"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/domain/value"
	"github.com/reglet-dev/lambda-bridge/infrastructure/hostobject"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

func testContext() *hostobject.Map {
	return hostobject.NewContext(entities.ContextSnapshot{
		FunctionName:       "f",
		FunctionVersion:    "1",
		InvokedFunctionARN: "arn",
		MemoryLimitInMB:    "256",
		AWSRequestID:       "req-9",
		LogGroupName:       "g",
		LogStreamName:      "s",
	}, hostobject.FixedRemaining(1000))
}

func constant(v value.Value) func(value.Value, *contextview.View) (value.Value, error) {
	return func(value.Value, *contextview.View) (value.Value, error) {
		return v, nil
	}
}

func TestNew_Empty(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	assert.Empty(t, reg.Names())
	assert.Equal(t, DefaultModuleName, reg.Module())
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"duplicate", []Option{WithHandler("a", constant(value.Null())), WithHandler("a", constant(value.Null()))}, "duplicate handler name"},
		{"empty name", []Option{WithHandler("", constant(value.Null()))}, "cannot be empty"},
		{"dotted name", []Option{WithHandler("a.b", constant(value.Null()))}, "cannot contain a dot"},
		{"nil handler", []Option{WithHandler("a", nil)}, "is nil"},
		{"empty module", []Option{WithModuleName("")}, "module name cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefault(t *testing.T) {
	reg, err := Default(func(event value.Value, _ *contextview.View) (value.Value, error) {
		return event, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"handler"}, reg.Names())

	out, err := reg.InvokeHandler(context.Background(), "liblambda.handler", map[string]any{"x": 1}, testContext())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": int64(1)}, out)
}

func TestInvoke_OnlyNamedHandlerRuns(t *testing.T) {
	var calls []string
	track := func(name string, result value.Value) func(value.Value, *contextview.View) (value.Value, error) {
		return func(value.Value, *contextview.View) (value.Value, error) {
			calls = append(calls, name)
			return result, nil
		}
	}

	reg, err := New(
		WithHandler("a", track("a", value.Int(1))),
		WithHandler("b", track("b", value.Int(2))),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, reg.Names())

	out, err := reg.Invoke(context.Background(), "b", nil, testContext())
	require.NoError(t, err)
	assert.Equal(t, int64(2), out)
	assert.Equal(t, []string{"b"}, calls)
}

func TestInvoke_UnknownHandler(t *testing.T) {
	reg, err := Default(constant(value.Null()))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "missing", nil, testContext())
	var exc *entities.HostException
	require.True(t, errors.As(err, &exc))
	assert.Equal(t, entities.RuntimeErrorType, exc.Type)
	assert.Equal(t, "unknown handler: liblambda.missing", exc.Message)
}

func TestInvoke_MiddlewareErrorsAreTranslated(t *testing.T) {
	failing := func(next InvokeFunc) InvokeFunc {
		return func(context.Context, any, ports.HostObject) (any, error) {
			return nil, errors.New("rejected by middleware")
		}
	}
	reg, err := Default(constant(value.Null()), WithMiddleware(failing))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), DefaultHandlerName, nil, testContext())
	var exc *entities.HostException
	require.True(t, errors.As(err, &exc))
	assert.Equal(t, "rejected by middleware", exc.Message)
}

func TestInvoke_ForeignExceptionTypeNormalized(t *testing.T) {
	foreign := func(next InvokeFunc) InvokeFunc {
		return func(context.Context, any, ports.HostObject) (any, error) {
			return nil, &entities.HostException{Type: "ValueError", Message: "bad input"}
		}
	}
	reg, err := Default(constant(value.Null()), WithMiddleware(foreign))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), DefaultHandlerName, nil, testContext())
	var exc *entities.HostException
	require.True(t, errors.As(err, &exc))
	assert.Equal(t, entities.RuntimeErrorType, exc.Type)
	assert.Equal(t, "bad input", exc.Message)
}

// panickingAttrs is a host object whose attribute reads panic.
type panickingAttrs struct{}

func (panickingAttrs) Attr(string) (any, error) { panic("attr boom") }
func (panickingAttrs) Call(string) (any, error) { return nil, ports.ErrMethodNotFound }

type lookupError struct {
	key string
}

func (e *lookupError) Error() string { return "lookup " + e.key }

func TestInvoke_HostAndErrorPanicsStayInside(t *testing.T) {
	var typedNil *lookupError
	tests := []struct {
		name string
		fn   func(value.Value, *contextview.View) (value.Value, error)
		host ports.HostObject
		want string
	}{
		{
			name: "attribute read panics",
			fn:   constant(value.Null()),
			host: panickingAttrs{},
			want: "failed to extract context attribute function_name: host raised while reading attribute: attr boom",
		},
		{
			name: "typed nil error",
			fn: func(value.Value, *contextview.View) (value.Value, error) {
				return value.Null(), typedNil
			},
			host: testContext(),
			want: "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := Default(tt.fn)
			require.NoError(t, err)

			require.NotPanics(t, func() {
				_, err = reg.Invoke(context.Background(), DefaultHandlerName, nil, tt.host)
			})
			var exc *entities.HostException
			require.True(t, errors.As(err, &exc))
			assert.Equal(t, entities.RuntimeErrorType, exc.Type)
			assert.Equal(t, tt.want, exc.Message)
		})
	}
}

func TestMiddlewareOrder_FIFO(t *testing.T) {
	var callOrder []string
	mw := func(label string) Middleware {
		return func(next InvokeFunc) InvokeFunc {
			return func(ctx context.Context, event any, host ports.HostObject) (any, error) {
				callOrder = append(callOrder, label+"-before")
				out, err := next(ctx, event, host)
				callOrder = append(callOrder, label+"-after")
				return out, err
			}
		}
	}

	reg, err := New(
		WithMiddleware(mw("mw1"), mw("mw2")),
		WithHandler("test", func(value.Value, *contextview.View) (value.Value, error) {
			callOrder = append(callOrder, "handler")
			return value.Null(), nil
		}),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "test", nil, testContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}, callOrder)
}

func TestMiddleware_SeesHandlerName(t *testing.T) {
	seen := map[string]bool{}
	tracking := func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, event any, host ports.HostObject) (any, error) {
			seen[invocation.Handler(ctx)] = true
			return next(ctx, event, host)
		}
	}

	reg, err := New(
		WithMiddleware(tracking),
		WithHandler("one", constant(value.Null())),
		WithHandler("two", constant(value.Null())),
	)
	require.NoError(t, err)

	for _, name := range reg.Names() {
		_, err := reg.Invoke(context.Background(), name, nil, testContext())
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]bool{"one": true, "two": true}, seen)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg, err := New(
		WithMiddleware(LoggingMiddleware(logger)),
		WithHandler("ok", constant(value.Null())),
		WithHandler("bad", func(value.Value, *contextview.View) (value.Value, error) {
			return value.Value{}, errors.New("boom")
		}),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "ok", nil, testContext())
	require.NoError(t, err)
	_, err = reg.Invoke(context.Background(), "bad", nil, testContext())
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "bridge: handler completed")
	assert.Contains(t, out, "handler=ok")
	assert.Contains(t, out, "bridge: handler failed")
	assert.Contains(t, out, "error=boom")
}

func TestResolve(t *testing.T) {
	reg, err := Default(constant(value.Null()))
	require.NoError(t, err)

	tests := []struct {
		handler string
		want    string
		wantErr bool
	}{
		{"liblambda.handler", "handler", false},
		{"handler", "handler", false},
		{"other.handler", "", true},
		{"liblambda.missing", "", true},
		{"liblambda.", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.handler, func(t *testing.T) {
			got, err := reg.Resolve(tt.handler)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveHandler(t *testing.T) {
	module, name, err := ResolveHandler("liblambda.handler")
	require.NoError(t, err)
	assert.Equal(t, "liblambda", module)
	assert.Equal(t, "handler", name)

	module, name, err = ResolveHandler("pkg.sub.fn")
	require.NoError(t, err)
	assert.Equal(t, "pkg.sub", module)
	assert.Equal(t, "fn", name)

	for _, bad := range []string{"", "handler", ".handler", "liblambda."} {
		_, _, err := ResolveHandler(bad)
		assert.Error(t, err, bad)
	}
}

func TestManifest(t *testing.T) {
	reg, err := New(
		WithModuleName("orders"),
		WithEntry(Entry{
			Name:        "create",
			Description: "creates an order",
			Handler:     constant(value.Null()),
			EventSchema: []byte(`{"type":"object"}`),
		}),
		WithHandler("cancel", constant(value.Null())),
	)
	require.NoError(t, err)

	m := reg.Manifest()
	assert.Equal(t, "orders", m.Module)
	assert.Equal(t, Version, m.SDKVersion)
	require.Len(t, m.Handlers, 2)
	assert.Equal(t, "cancel", m.Handlers[0].Name)
	assert.Equal(t, "create", m.Handlers[1].Name)
	assert.Equal(t, "creates an order", m.Handlers[1].Description)
	assert.JSONEq(t, `{"type":"object"}`, string(m.Handlers[1].EventSchema))
}
