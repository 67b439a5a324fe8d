package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/reglet-dev/lambda-bridge/application/codec"
	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/application/translator"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	wazeroadapter "github.com/reglet-dev/lambda-bridge/infrastructure/wazero"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

// Executor owns the wazero runtime guests are loaded into.
type Executor struct {
	runtime wazero.Runtime
	cfg     executorConfig
}

// NewExecutor creates a runtime with WASI and the lambda_host module.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	if err := wazeroadapter.RegisterHostModule(ctx, rt, cfg.moduleOpts...); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host module: %w", err)
	}

	return &Executor{runtime: rt, cfg: cfg}, nil
}

// Close releases the runtime and every module loaded into it.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadFile reads and loads a guest artifact from disk.
func (e *Executor) LoadFile(ctx context.Context, path string) (*Module, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read guest artifact: %w", err)
	}
	return e.Load(ctx, wasmBytes)
}

// Load instantiates a guest and reads its manifest.
func (e *Executor) Load(ctx context.Context, wasmBytes []byte) (*Module, error) {
	modCfg := wazero.NewModuleConfig().
		WithStdout(e.cfg.stdout).
		WithStderr(e.cfg.stderr).
		WithStartFunctions()

	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, modCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	m := &Module{module: mod}
	manifest, err := m.Describe(ctx)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}
	m.manifest = manifest
	return m, nil
}

// Module is a loaded guest. Calls are serialized: a guest runs one
// invocation at a time.
type Module struct {
	module   api.Module
	manifest entities.ModuleManifest
	mu       sync.Mutex
}

// Manifest returns the manifest read when the module was loaded.
func (m *Module) Manifest() entities.ModuleManifest {
	return m.manifest
}

// Describe calls the guest's "describe" export.
func (m *Module) Describe(ctx context.Context) (entities.ModuleManifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var manifest entities.ModuleManifest
	data, err := m.call(ctx, "describe", nil)
	if err != nil {
		return manifest, err
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return manifest, nil
}

// Resolve maps a host handler string ("liblambda.handler" or "handler") to
// a handler exported by the guest.
func (m *Module) Resolve(handler string) (string, error) {
	name := handler
	if module, n, err := registry.ResolveHandler(handler); err == nil {
		if module != m.manifest.Module {
			return "", fmt.Errorf("unknown module %q, this module is %q", module, m.manifest.Module)
		}
		name = n
	}
	for _, h := range m.manifest.Handlers {
		if h.Name == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown handler: %s.%s", m.manifest.Module, name)
}

// Invoke sends one invocation to the guest. The seven context attributes are
// read from host and forwarded; remaining time queries made by the guest are
// answered by host. Every failure is returned as a *entities.HostException.
func (m *Module) Invoke(ctx context.Context, name string, event any, host ports.HostObject) (any, error) {
	req, err := buildRequest(name, event, host)
	if err != nil {
		return nil, translator.Translate(err)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, translator.Translate(fmt.Errorf("failed to marshal invoke request: %w", err))
	}

	m.mu.Lock()
	data, err := m.call(invocation.WithHost(ctx, host), "invoke", payload)
	m.mu.Unlock()
	if err != nil {
		return nil, translator.Translate(err)
	}

	var resp entities.InvokeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, translator.Translate(fmt.Errorf("failed to decode invoke response: %w", err))
	}
	if resp.Error != nil {
		return nil, translator.Translate(resp.Error)
	}
	out, err := codec.DecodeJSON(resp.Result)
	if err != nil {
		return nil, translator.Translate(err)
	}
	return out, nil
}

// Close releases the guest instance.
func (m *Module) Close(ctx context.Context) error {
	return m.module.Close(ctx)
}

func buildRequest(name string, event any, host ports.HostObject) (entities.InvokeRequest, error) {
	eventJSON, err := codec.EncodeJSON(event)
	if err != nil {
		return entities.InvokeRequest{}, err
	}

	attrs := make(map[string]any, len(entities.ContextAttributes))
	if host != nil {
		for _, attr := range entities.ContextAttributes {
			v, err := host.Attr(attr)
			if err != nil {
				// Omitted attributes are reported by the guest.
				continue
			}
			if _, err := json.Marshal(v); err != nil {
				return entities.InvokeRequest{}, fmt.Errorf("context attribute %s: %w", attr, err)
			}
			attrs[attr] = v
		}
	}

	return entities.InvokeRequest{
		Handler: name,
		Event:   eventJSON,
		Context: entities.ContextWire{Attributes: attrs},
	}, nil
}

// call invokes an export taking and returning packed pointer/length values.
// Input is optional; exports without input take no parameters.
func (m *Module) call(ctx context.Context, export string, input []byte) ([]byte, error) {
	fn := m.module.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("export %q not found", export)
	}

	var params []uint64
	if input != nil {
		packed, err := wazeroadapter.WriteBytes(ctx, m.module, input)
		if err != nil {
			return nil, err
		}
		params = append(params, packed)
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("guest %s failed: %w", export, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("guest %s returned no result", export)
	}
	return wazeroadapter.ReadBytes(ctx, m.module, results[0])
}
