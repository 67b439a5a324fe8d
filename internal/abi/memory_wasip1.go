//go:build wasip1

package abi

import (
	"sync"
	"unsafe"
)

// MaxTotalAllocations bounds the memory the guest hands out to the host.
const MaxTotalAllocations = 64 * 1024 * 1024 // 64 MB

// pinned keeps allocated slices reachable so the Go GC does not reclaim
// memory the host is still writing to or reading from.
var pinned = struct {
	sync.Mutex
	bufs  map[uint32][]byte
	total int
}{
	bufs: make(map[uint32][]byte),
}

// allocate reserves size bytes of linear memory for the host. It returns 0
// when size is 0 or the allocation limit would be exceeded.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	pinned.Lock()
	defer pinned.Unlock()

	if pinned.total+int(size) > MaxTotalAllocations {
		return 0
	}

	buf := make([]byte, size)
	//nolint:gosec // G103: linear memory offsets fit in 32 bits
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))
	pinned.bufs[ptr] = buf
	pinned.total += int(size)
	return ptr
}

// deallocate releases memory obtained from allocate. Unknown pointers are
// ignored.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	pinned.Lock()
	defer pinned.Unlock()

	buf, ok := pinned.bufs[ptr]
	if !ok {
		return
	}
	delete(pinned.bufs, ptr)
	pinned.total -= len(buf)
	if pinned.total < 0 {
		pinned.total = 0
	}
}

// PtrFromBytes copies data into freshly allocated guest memory and returns
// the packed pointer/length. Empty data and allocation failures yield 0.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	ptr := allocate(uint32(len(data)))
	if ptr == 0 {
		return 0
	}
	//nolint:gosec // G103: valid unsafe.Pointer use for linear memory access
	copy(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), len(data)), data)
	packed, _ := PackPtrLen(ptr, uint32(len(data)))
	return packed
}

// BytesFromPtr copies the memory referenced by a packed pointer/length and
// releases the allocation.
func BytesFromPtr(packed uint64) []byte {
	ptr, length, err := UnpackPtrLen(packed)
	if err != nil || ptr == 0 || length == 0 {
		return nil
	}
	//nolint:gosec // G103: valid unsafe.Pointer use for linear memory access
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
	data := make([]byte, length)
	copy(data, src)
	deallocate(ptr, length)
	return data
}

// Free releases the allocation referenced by a packed pointer/length.
func Free(packed uint64) {
	ptr, length, err := UnpackPtrLen(packed)
	if err != nil || ptr == 0 {
		return
	}
	deallocate(ptr, length)
}
