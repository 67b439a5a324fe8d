package runtimeapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/lambda-bridge/application/codec"
	"github.com/reglet-dev/lambda-bridge/application/translator"
	"github.com/reglet-dev/lambda-bridge/config"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/infrastructure/hostobject"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

// traceEnv is the variable the X-Ray SDKs read the current trace header from.
const traceEnv = "_X_AMZN_TRACE_ID"

// Dispatcher routes an invocation to a handler. *registry.Registry
// implements it.
type Dispatcher interface {
	Resolve(handler string) (string, error)
	Invoke(ctx context.Context, name string, event any, host ports.HostObject) (any, error)
}

// Loop runs invocations from the Runtime API one at a time.
type Loop struct {
	client     *Client
	dispatcher Dispatcher
	logger     *slog.Logger
	cfg        config.Runtime
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop returns a loop serving dispatcher with the function configuration
// cfg.
func NewLoop(client *Client, dispatcher Dispatcher, cfg config.Runtime, opts ...LoopOption) *Loop {
	l := &Loop{client: client, dispatcher: dispatcher, cfg: cfg}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Run resolves the configured handler, then serves invocations until ctx is
// cancelled or the Runtime API fails. A handler that cannot be resolved is
// reported through the init error endpoint.
func (l *Loop) Run(ctx context.Context) error {
	name, err := l.dispatcher.Resolve(l.cfg.Handler)
	if err != nil {
		exc := translator.Translate(err)
		if postErr := l.client.InitError(ctx, exc); postErr != nil {
			return errors.Join(err, postErr)
		}
		return fmt.Errorf("bridge: init failed: %w", err)
	}

	l.logger.InfoContext(ctx, "bridge: runtime loop started", "handler", l.cfg.Handler, "function", l.cfg.FunctionName)
	for {
		if err := l.Next(ctx, name); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// Next fetches one invocation and posts its outcome. Handler failures are
// posted to the error endpoint and are not returned; only Runtime API
// failures are.
func (l *Loop) Next(ctx context.Context, name string) error {
	inv, err := l.client.Next(ctx)
	if err != nil {
		return err
	}

	if inv.TraceID != "" {
		_ = os.Setenv(traceEnv, inv.TraceID)
	} else {
		_ = os.Unsetenv(traceEnv)
	}

	invCtx := invocation.WithRequestID(ctx, inv.RequestID)
	cancel := func() {}
	if !inv.Deadline.IsZero() {
		invCtx, cancel = context.WithDeadline(invCtx, inv.Deadline)
	}
	defer cancel()

	body, exc := l.invoke(invCtx, name, inv)
	if exc != nil {
		l.logger.InfoContext(invCtx, "bridge: invocation failed", "aws_request_id", inv.RequestID, "error", exc.Message)
		return l.client.Fail(ctx, inv.RequestID, exc)
	}
	return l.client.Respond(ctx, inv.RequestID, body)
}

func (l *Loop) invoke(ctx context.Context, name string, inv *Invocation) ([]byte, *entities.HostException) {
	event, err := codec.DecodeJSON(inv.Payload)
	if err != nil {
		return nil, translator.Translate(err)
	}

	var remaining hostobject.Method
	if !inv.Deadline.IsZero() {
		remaining = hostobject.RemainingFromDeadline(inv.Deadline)
	}
	host := hostobject.NewContext(l.cfg.Snapshot(inv.RequestID, inv.FunctionARN), remaining)

	out, err := l.dispatcher.Invoke(ctx, name, event, host)
	if err != nil {
		return nil, translator.Translate(err)
	}
	body, err := codec.EncodeJSON(out)
	if err != nil {
		return nil, translator.Translate(err)
	}
	return body, nil
}
