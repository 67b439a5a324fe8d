//go:build !wasip1

package log

import (
	"context"
	"encoding/json"
)

// emit writes msg as one JSON line.
func (h *Handler) emit(_ context.Context, msg MessageWire) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.opts.writer.Write(data)
	return err
}
