package engine

import (
	"fmt"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/utils"
)

// BytesToBits expands msg into one bit per entry, least significant bit of each byte first.
func BytesToBits(msg []byte) ([]int, error) {
	if err := utils.CheckLength(len(msg), utils.MaxMessageSize); err != nil {
		return nil, fmt.Errorf("%w: message of %d bytes: %v", lwe.ErrInvalidMessage, len(msg), err)
	}
	bits := make([]int, len(msg)*8)
	for i, b := range msg {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = int((b >> j) & 1)
		}
	}
	return bits, nil
}

// BitsToBytes packs bits back into bytes. len(bits) must be a multiple of 8.
func BitsToBytes(bits []int) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits do not form whole bytes", lwe.ErrDimensionMismatch, len(bits))
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			if err := ValidateBit(bits[i*8+j]); err != nil {
				return nil, err
			}
			b |= byte(bits[i*8+j]) << j
		}
		out[i] = b
	}
	return out, nil
}

// ValidateBits checks every entry of bits and the overall batch size.
func ValidateBits(bits []int) error {
	if err := utils.CheckLength(len(bits), utils.MaxMessageSize*8); err != nil {
		return fmt.Errorf("%w: %d bits: %v", lwe.ErrInvalidMessage, len(bits), err)
	}
	for i, b := range bits {
		if err := ValidateBit(b); err != nil {
			return fmt.Errorf("bit %d: %w", i, err)
		}
	}
	return nil
}
