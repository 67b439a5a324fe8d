//go:build wasip1

package log

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/lambda-bridge/internal/abi"
)

// host_log_message is provided by the wazero host module.
//
//go:wasmimport lambda_host log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

// emit sends msg to the host. The host copies the message before returning,
// so the buffer is released right after the call.
func (h *Handler) emit(_ context.Context, msg MessageWire) error {
	data, err := json.Marshal(msg)
	if err != nil {
		fmt.Printf("bridge: failed to marshal log message for host: %v, original: %s\n", err, msg.Message)
		return nil
	}
	packed := abi.PtrFromBytes(data)
	host_log_message(packed)
	abi.Free(packed)
	return nil
}
