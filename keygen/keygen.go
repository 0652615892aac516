// Package keygen generates LWE instances: asymmetric key pairs, shared secrets and the
// ephemeral public material of the symmetric mode.
package keygen

import (
	"fmt"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/core"
	"github.com/BackendStack21/lwe-go/sampling"
	"github.com/BackendStack21/lwe-go/utils"
	"github.com/BackendStack21/lwe-go/zq"
)

// CheckSampler validates params and verifies that s was built for them.
func CheckSampler(params lwe.Params, s *sampling.Sampler) error {
	if err := core.ValidateParams(params); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: nil sampler", lwe.ErrInvalidParameter)
	}
	if !s.Matches(params) {
		return fmt.Errorf("%w: sampler built for q=%d sigma=%g, params have q=%d sigma=%g",
			lwe.ErrInvalidParameter, s.Q(), s.Sigma(), params.Q, params.Sigma)
	}
	return nil
}

// Secret samples a secret vector of length n. Entries come from the noise distribution,
// normalized into [0, q), which keeps the s-dependent part of the decryption noise small.
func Secret(n int, s *sampling.Sampler) (lwe.Vector, error) {
	return s.GaussianVector(n)
}

// instance samples A uniformly and returns (A, b = A·s + e).
func instance(params lwe.Params, secret lwe.Vector, s *sampling.Sampler) (lwe.Matrix, lwe.Vector, error) {
	A, err := s.UniformMatrix(params.N, params.N)
	if err != nil {
		return lwe.Matrix{}, nil, err
	}
	e, err := s.GaussianVector(params.N)
	if err != nil {
		return lwe.Matrix{}, nil, err
	}
	defer utils.ZeroizeInt32(e)

	As, err := zq.MatVecMul(A, secret, params.Q)
	if err != nil {
		return lwe.Matrix{}, nil, err
	}
	defer utils.ZeroizeInt32(As)

	b, err := zq.Add(As, e, params.Q)
	if err != nil {
		return lwe.Matrix{}, nil, err
	}
	return A, b, nil
}

// GenerateKeyPair produces an asymmetric key pair for params.
func GenerateKeyPair(params lwe.Params, s *sampling.Sampler) (*lwe.KeyPair, error) {
	if err := CheckSampler(params, s); err != nil {
		return nil, err
	}

	secret, err := Secret(params.N, s)
	if err != nil {
		return nil, err
	}
	A, b, err := instance(params, secret, s)
	if err != nil {
		utils.ZeroizeInt32(secret)
		return nil, err
	}

	return &lwe.KeyPair{
		PublicKey: lwe.PublicKey{A: A, B: b, Params: params},
		SecretKey: lwe.SecretKey{S: secret, Params: params},
	}, nil
}

// GenerateSharedKey produces a symmetric key for params.
func GenerateSharedKey(params lwe.Params, s *sampling.Sampler) (*lwe.SharedKey, error) {
	if err := CheckSampler(params, s); err != nil {
		return nil, err
	}
	secret, err := Secret(params.N, s)
	if err != nil {
		return nil, err
	}
	return &lwe.SharedKey{S: secret, Params: params}, nil
}

// Ephemeral draws a fresh (A, b = A·s + e) for one symmetric encryption.
func Ephemeral(key *lwe.SharedKey, s *sampling.Sampler) (lwe.Matrix, lwe.Vector, error) {
	if key == nil {
		return lwe.Matrix{}, nil, fmt.Errorf("%w: nil shared key", lwe.ErrInvalidParameter)
	}
	if err := CheckSampler(key.Params, s); err != nil {
		return lwe.Matrix{}, nil, err
	}
	if len(key.S) != key.Params.N {
		return lwe.Matrix{}, nil, fmt.Errorf("%w: secret has %d entries, n=%d",
			lwe.ErrDimensionMismatch, len(key.S), key.Params.N)
	}
	if !zq.InRange(key.S, key.Params.Q) {
		return lwe.Matrix{}, nil, fmt.Errorf("%w: secret entries outside [0,%d)", lwe.ErrInvalidParameter, key.Params.Q)
	}
	return instance(key.Params, key.S, s)
}
