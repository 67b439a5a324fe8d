package entities

import "encoding/json"

// ContextWire carries the host context object across a serialized boundary.
// Attributes are kept as a loose map so that a host may omit or mistype an
// attribute and the guest reports it the same way an in-process host would.
type ContextWire struct {
	Attributes map[string]any `json:"attributes"`
}

// InvokeRequest is the JSON wire format of one invocation sent from host to
// guest.
type InvokeRequest struct {
	Handler string          `json:"handler"`
	Event   json.RawMessage `json:"event"`
	Context ContextWire     `json:"context"`
}

// InvokeResponse is the JSON wire format of an invocation outcome. Exactly
// one of Result and Error is set.
type InvokeResponse struct {
	Error  *HostException  `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}
