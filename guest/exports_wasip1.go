//go:build wasip1

package guest

import (
	"context"

	"github.com/reglet-dev/lambda-bridge/internal/abi"
)

//go:wasmimport lambda_host get_remaining_time_in_millis
func host_get_remaining_time_in_millis() int64

//go:wasmexport invoke
func invoke(packed uint64) uint64 {
	data := abi.BytesFromPtr(packed)
	out := Handle(context.Background(), registered(), data, host_get_remaining_time_in_millis)
	return abi.PtrFromBytes(out)
}

//go:wasmexport describe
func describe() uint64 {
	return abi.PtrFromBytes(Describe(registered()))
}
