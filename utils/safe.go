// Package utils provides hashing, randomness and bounds helpers for lwe-go.
// This file contains safe arithmetic and allocation helpers to prevent
// integer overflow and denial-of-service via large allocations.

package utils

import (
	"errors"
	"math"
	"runtime"
)

// Maximum allowed lengths for various data types to prevent DoS via large allocations.
const (
	// MaxVectorLength is the maximum allowed length for vectors.
	MaxVectorLength = 1 << 20 // 1M elements

	// MaxMatrixElements is the maximum allowed number of elements in a matrix.
	MaxMatrixElements = 1 << 24 // 16M elements

	// MaxMessageSize is the maximum allowed message size in bytes for bitwise encryption.
	MaxMessageSize = 1 << 16 // 64KB, one ciphertext per bit
)

var (
	// ErrOverflow indicates an integer overflow occurred.
	ErrOverflow = errors.New("integer overflow")

	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

// SafeMultiply multiplies two non-negative integers and returns an error if overflow occurs.
func SafeMultiply(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidLength
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// Zeroize overwrites a byte slice with zeros.
// Uses runtime.KeepAlive to prevent compiler optimization from eliminating the stores.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ZeroizeInt32 overwrites an int32 slice with zeros.
func ZeroizeInt32(s []int32) {
	for i := range s {
		s[i] = 0
	}
	runtime.KeepAlive(s)
}
