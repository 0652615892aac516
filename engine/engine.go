// Package engine is the shared encryption core of both key-management modes.
//
// Given an LWE instance (A, b = A·s + e) and a bit m, encryption draws a binary vector
// r and noise e1, e2 and outputs
//
//	c1 = r·A + e1
//	c2 = r·b + e2 + m·⌊q/2⌋
//
// Decryption computes the phase m' = c2 - c1·s = m·⌊q/2⌋ + r·e + e2 - e1·s and
// returns 1 exactly when m' lies strictly between q/4 and 3q/4.
package engine

import (
	"fmt"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/core"
	"github.com/BackendStack21/lwe-go/keygen"
	"github.com/BackendStack21/lwe-go/sampling"
	"github.com/BackendStack21/lwe-go/utils"
	"github.com/BackendStack21/lwe-go/zq"
)

// ValidateBit rejects anything but 0 and 1.
func ValidateBit(bit int) error {
	if bit != 0 && bit != 1 {
		return fmt.Errorf("%w: bit must be 0 or 1, got %d", lwe.ErrInvalidMessage, bit)
	}
	return nil
}

// encrypt runs the core encryption against an explicit instance (A, b).
func encrypt(params lwe.Params, A lwe.Matrix, b lwe.Vector, bit int, s *sampling.Sampler) (*lwe.Ciphertext, error) {
	n, q := params.N, params.Q
	if !A.IsSquare(n) {
		return nil, fmt.Errorf("%w: matrix is %dx%d, n=%d", lwe.ErrDimensionMismatch, A.Rows, A.Cols, n)
	}
	if len(b) != n {
		return nil, fmt.Errorf("%w: b has %d entries, n=%d", lwe.ErrDimensionMismatch, len(b), n)
	}
	if !zq.InRange(A.Data, q) || !zq.InRange(b, q) {
		return nil, fmt.Errorf("%w: public entries outside [0,%d)", lwe.ErrInvalidParameter, q)
	}

	r, err := s.BinaryVector(n)
	if err != nil {
		return nil, err
	}
	defer utils.ZeroizeInt32(r)

	e1, err := s.GaussianVector(n)
	if err != nil {
		return nil, err
	}
	defer utils.ZeroizeInt32(e1)

	e2, err := s.Gaussian()
	if err != nil {
		return nil, err
	}

	rA, err := zq.VecMatMul(r, A, q)
	if err != nil {
		return nil, err
	}
	c1, err := zq.Add(rA, e1, q)
	if err != nil {
		return nil, err
	}

	rb, err := zq.InnerProduct(r, b, q)
	if err != nil {
		return nil, err
	}
	c2 := zq.Reduce(int64(rb)+int64(e2)+int64(bit)*int64(params.HalfQ()), q)

	return &lwe.Ciphertext{C1: c1, C2: c2}, nil
}

// EncryptPublic encrypts one bit under an asymmetric public key.
func EncryptPublic(pk *lwe.PublicKey, bit int, s *sampling.Sampler) (*lwe.Ciphertext, error) {
	if err := ValidateBit(bit); err != nil {
		return nil, err
	}
	if pk == nil {
		return nil, fmt.Errorf("%w: nil public key", lwe.ErrInvalidParameter)
	}
	if err := keygen.CheckSampler(pk.Params, s); err != nil {
		return nil, err
	}
	return encrypt(pk.Params, pk.A, pk.B, bit, s)
}

// EncryptShared encrypts one bit under a shared key. A fresh instance is drawn for the
// call and returned alongside the ciphertext.
func EncryptShared(key *lwe.SharedKey, bit int, s *sampling.Sampler) (*lwe.SymmetricCiphertext, error) {
	if err := ValidateBit(bit); err != nil {
		return nil, err
	}
	A, b, err := keygen.Ephemeral(key, s)
	if err != nil {
		return nil, err
	}
	ct, err := encrypt(key.Params, A, b, bit, s)
	if err != nil {
		return nil, err
	}
	return &lwe.SymmetricCiphertext{Ciphertext: *ct, A: A, B: b}, nil
}

// Phase returns m' = c2 - c1·s mod q.
func Phase(params lwe.Params, secret lwe.Vector, ct *lwe.Ciphertext) (int32, error) {
	if err := core.ValidateParams(params); err != nil {
		return 0, err
	}
	if ct == nil {
		return 0, fmt.Errorf("%w: nil ciphertext", lwe.ErrInvalidParameter)
	}
	if len(secret) != params.N {
		return 0, fmt.Errorf("%w: secret has %d entries, n=%d", lwe.ErrDimensionMismatch, len(secret), params.N)
	}
	if len(ct.C1) != params.N {
		return 0, fmt.Errorf("%w: c1 has %d entries, n=%d", lwe.ErrDimensionMismatch, len(ct.C1), params.N)
	}
	if !zq.InRange(ct.C1, params.Q) || !zq.InRange([]int32{ct.C2}, params.Q) {
		return 0, fmt.Errorf("%w: ciphertext entries outside [0,%d)", lwe.ErrInvalidParameter, params.Q)
	}
	if !zq.InRange(secret, params.Q) {
		return 0, fmt.Errorf("%w: secret entries outside [0,%d)", lwe.ErrInvalidParameter, params.Q)
	}

	c1s, err := zq.InnerProduct(ct.C1, secret, params.Q)
	if err != nil {
		return 0, err
	}
	return zq.Reduce(int64(ct.C2)-int64(c1s), params.Q), nil
}

// DecodeBit maps a phase in [0, q) to a bit: 1 iff q < 4·phase < 3q.
// The comparisons are done with sign-bit arithmetic in int64, without branches.
func DecodeBit(phase int32, q int) int {
	x := 4 * int64(phase)
	q64 := int64(q)
	above := uint64(q64-x) >> 63   // 1 when 4·phase > q
	below := uint64(x-3*q64) >> 63 // 1 when 4·phase < 3q
	return int(above & below)
}

// Decrypt recovers the bit carried by ct under secret.
func Decrypt(params lwe.Params, secret lwe.Vector, ct *lwe.Ciphertext) (int, error) {
	phase, err := Phase(params, secret, ct)
	if err != nil {
		return 0, err
	}
	return DecodeBit(phase, params.Q), nil
}
