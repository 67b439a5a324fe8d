// Package abi defines the packed pointer/length convention shared by the
// guest exports and the wazero host module, and the guest's linear memory
// allocator.
package abi

import "fmt"

// PtrHighBits is the shift that places the pointer in the high half of a
// packed value.
const PtrHighBits = 32

// PackPtrLen packs a pointer and length into a single uint64, pointer in
// the high 32 bits and length in the low 32 bits. A null pointer with a
// non-zero length is invalid.
func PackPtrLen(ptr, length uint32) (uint64, error) {
	if ptr == 0 && length > 0 {
		return 0, fmt.Errorf("abi: null pointer with non-zero length (%d)", length)
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length), nil
}

// UnpackPtrLen splits a packed value into pointer and length.
func UnpackPtrLen(packed uint64) (ptr, length uint32, err error) {
	ptr = uint32(packed >> PtrHighBits)
	length = uint32(packed)
	if ptr == 0 && length > 0 {
		return 0, 0, fmt.Errorf("abi: null pointer with non-zero length (%d)", length)
	}
	return ptr, length, nil
}
