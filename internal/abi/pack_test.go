package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackPtrLen(t *testing.T) {
	tests := []struct {
		name   string
		ptr    uint32
		length uint32
		want   uint64
	}{
		{"typical values", 0x12345678, 0xABCDEF00, (uint64(0x12345678) << PtrHighBits) | uint64(0xABCDEF00)},
		{"zero pointer zero length", 0, 0, 0},
		{"max pointer", 0xFFFFFFFF, 1, (uint64(0xFFFFFFFF) << PtrHighBits) | 1},
		{"pointer without length", 1024, 0, uint64(1024) << PtrHighBits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed, err := PackPtrLen(tt.ptr, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.want, packed)

			gotPtr, gotLen, err := UnpackPtrLen(packed)
			require.NoError(t, err)
			assert.Equal(t, tt.ptr, gotPtr)
			assert.Equal(t, tt.length, gotLen)
		})
	}
}

func TestPackPtrLen_NullPointerWithLength(t *testing.T) {
	_, err := PackPtrLen(0, 100)
	assert.Error(t, err)

	_, _, err = UnpackPtrLen(100)
	assert.Error(t, err)
}
