// Package ports defines the interfaces the boundary layer needs from a host.
// Host embeddings (in-process objects, a WASM guest, the Lambda runtime API)
// implement these interfaces; the core depends only on them.
package ports
