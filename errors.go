package lwe

import "errors"

var (
	// ErrInvalidParameter indicates a non-positive dimension, a modulus that is not
	// a prime greater than 4, or a non-positive noise width.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidMessage indicates a message bit outside {0, 1}.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrDimensionMismatch indicates a vector or matrix whose size disagrees with n.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrRandomnessUnavailable indicates the randomness source failed. It is fatal.
	ErrRandomnessUnavailable = errors.New("randomness unavailable")
)
