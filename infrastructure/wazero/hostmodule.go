// Package wazero provides the host module a bridge guest imports, and the
// guest memory helpers shared with the host executor.
package wazero

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/lambda-bridge/application/contextview"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/internal/abi"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
	bridgelog "github.com/reglet-dev/lambda-bridge/log"
)

// DefaultModuleName is the import module name used by the guest.
const DefaultModuleName = "lambda_host"

// DefaultMaxMessageSize limits the size of log messages read from guest memory.
const DefaultMaxMessageSize = 1 << 20 // 1MB

// ModuleConfig holds configuration for the host module.
type ModuleConfig struct {
	// Logger receives records forwarded from the guest. Defaults to slog.Default().
	Logger *slog.Logger

	// ModuleName is the host module name (default: "lambda_host").
	ModuleName string

	// MaxMessageSize limits the size of log messages read from guest memory.
	MaxMessageSize uint32
}

// ModuleOption configures the host module.
type ModuleOption func(*ModuleConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) ModuleOption {
	return func(c *ModuleConfig) {
		c.ModuleName = name
	}
}

// WithLogger sets the logger guest log records are forwarded to.
func WithLogger(logger *slog.Logger) ModuleOption {
	return func(c *ModuleConfig) {
		c.Logger = logger
	}
}

// WithMaxMessageSize sets the maximum log message size.
func WithMaxMessageSize(size uint32) ModuleOption {
	return func(c *ModuleConfig) {
		c.MaxMessageSize = size
	}
}

func defaultModuleConfig() ModuleConfig {
	return ModuleConfig{
		ModuleName:     DefaultModuleName,
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

// RegisterHostModule instantiates the host module in runtime. It exports:
//   - get_remaining_time_in_millis() i64: asks the host context object of
//     the current call, or the call context's deadline, for the remaining
//     time. Any failure returns -1.
//   - log_message(i64): reads a packed JSON log record from guest memory and
//     re-emits it through the configured logger.
func RegisterHostModule(ctx context.Context, runtime wazero.Runtime, opts ...ModuleOption) error {
	cfg := defaultModuleConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, _ api.Module, stack []uint64) {
			stack[0] = api.EncodeI64(RemainingMillis(ctx))
		}), nil, []api.ValueType{api.ValueTypeI64}).
		Export(entities.MethodGetRemainingTimeInMillis)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			handleLogMessage(ctx, mod, stack[0], cfg)
		}), []api.ValueType{api.ValueTypeI64}, nil).
		Export("log_message")

	_, err := builder.Instantiate(ctx)
	return err
}

// RemainingMillis answers a guest's remaining time query for the call made
// with ctx. It returns -1 when the time is unknown or the host object
// panics.
func RemainingMillis(ctx context.Context) (ms int64) {
	defer func() {
		if r := recover(); r != nil {
			slog.WarnContext(ctx, "wazero: host context object panicked", "panic", r)
			ms = -1
		}
	}()
	if host := invocation.Host(ctx); host != nil {
		raw, err := host.Call(entities.MethodGetRemainingTimeInMillis)
		if err != nil {
			return -1
		}
		ms, ok := contextview.CoerceMillis(raw)
		if !ok {
			return -1
		}
		return clampMillis(ms)
	}
	if ms, ok := invocation.RemainingMillis(ctx); ok {
		return clampMillis(ms)
	}
	return -1
}

func clampMillis(ms uint64) int64 {
	if ms > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(ms)
}

func handleLogMessage(ctx context.Context, mod api.Module, packed uint64, cfg ModuleConfig) {
	ptr, length, err := abi.UnpackPtrLen(packed)
	if err != nil || length == 0 {
		return
	}
	if length > cfg.MaxMessageSize {
		slog.WarnContext(ctx, "wazero: guest log message too large", "size", length, "max", cfg.MaxMessageSize)
		return
	}
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		slog.ErrorContext(ctx, "wazero: failed to read log message from guest memory")
		return
	}

	var msg bridgelog.MessageWire
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.WarnContext(ctx, "wazero: malformed guest log message", "error", err, "payload", string(data))
		return
	}
	bridgelog.Forward(ctx, cfg.Logger, msg)
}

// WriteBytes copies data into memory allocated by the guest's "allocate"
// export and returns the packed pointer/length.
func WriteBytes(ctx context.Context, mod api.Module, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	allocateFn := mod.ExportedFunction("allocate")
	if allocateFn == nil {
		return 0, fmt.Errorf("guest module missing 'allocate' export")
	}
	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to call guest allocate: %w", err)
	}
	if len(results) == 0 || results[0] == 0 {
		return 0, fmt.Errorf("guest could not allocate %d bytes", len(data))
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if !mod.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("failed to write %d bytes to guest memory", len(data))
	}
	return abi.PackPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by guest allocation
}

// ReadBytes copies the guest memory referenced by packed and asks the guest
// to release it.
func ReadBytes(ctx context.Context, mod api.Module, packed uint64) ([]byte, error) {
	ptr, length, err := abi.UnpackPtrLen(packed)
	if err != nil {
		return nil, err
	}
	if ptr == 0 || length == 0 {
		return nil, fmt.Errorf("null response from guest")
	}
	view, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read %d bytes from guest memory", length)
	}
	data := make([]byte, length)
	copy(data, view)

	if deallocateFn := mod.ExportedFunction("deallocate"); deallocateFn != nil {
		if _, err := deallocateFn.Call(ctx, uint64(ptr), uint64(length)); err != nil {
			slog.WarnContext(ctx, "wazero: guest deallocate failed", "error", err)
		}
	}
	return data, nil
}
