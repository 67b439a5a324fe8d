// Package host runs bridge guests compiled to WASM (GOOS=wasip1) inside a
// wazero runtime and invokes their handlers with host-native events and
// context objects.
//
// A guest is loaded once and invoked any number of times:
//
//	exec, err := host.NewExecutor(ctx)
//	if err != nil { ... }
//	defer exec.Close(ctx)
//
//	mod, err := exec.LoadFile(ctx, "function.wasm")
//	if err != nil { ... }
//
//	out, err := mod.Invoke(ctx, "handler", event, contextObject)
//
// Failures inside the guest come back as *entities.HostException values,
// exactly as they would from an in-process registry.
package host
