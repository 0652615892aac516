// Package core provides parameter sets and validation for lwe-go.
package core

import (
	"fmt"
	"math"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/utils"
)

// MaxModulus is the largest modulus whose residues fit the int32 storage.
const MaxModulus = math.MaxInt32

// ToyParams is the small asymmetric demonstration set.
var ToyParams = lwe.Params{
	Name:  lwe.LWETOY,
	N:     5,
	Q:     257,
	Sigma: 1,
}

// LWE256Params is the larger symmetric demonstration set. q is the Dilithium prime.
var LWE256Params = lwe.Params{
	Name:  lwe.LWE256,
	N:     256,
	Q:     8380417,
	Sigma: 3.19,
}

// GetParams returns the parameter set for the given name.
func GetParams(set lwe.ParamSet) (lwe.Params, error) {
	switch set {
	case lwe.LWETOY:
		return ToyParams, nil
	case lwe.LWE256:
		return LWE256Params, nil
	default:
		return lwe.Params{}, fmt.Errorf("%w: unknown parameter set: %s", lwe.ErrInvalidParameter, set)
	}
}

// CustomParams builds and validates a hand-picked parameter set.
func CustomParams(n, q int, sigma float64) (lwe.Params, error) {
	params := lwe.Params{Name: lwe.Custom, N: n, Q: q, Sigma: sigma}
	if err := ValidateParams(params); err != nil {
		return lwe.Params{}, err
	}
	return params, nil
}

// ValidateParams checks that n, q and sigma describe a usable ring and noise width.
// It also rejects sizes whose inner products could overflow int64 accumulators.
func ValidateParams(params lwe.Params) error {
	if params.N <= 0 {
		return fmt.Errorf("%w: dimension n must be positive, got %d", lwe.ErrInvalidParameter, params.N)
	}
	if params.Q <= 4 {
		return fmt.Errorf("%w: modulus q must be greater than 4, got %d", lwe.ErrInvalidParameter, params.Q)
	}
	if params.Q > MaxModulus {
		return fmt.Errorf("%w: modulus q exceeds %d", lwe.ErrInvalidParameter, MaxModulus)
	}
	if !isPrime(params.Q) {
		return fmt.Errorf("%w: modulus q must be prime, got %d", lwe.ErrInvalidParameter, params.Q)
	}
	if !(params.Sigma > 0) || math.IsInf(params.Sigma, 0) {
		return fmt.Errorf("%w: sigma must be positive and finite, got %v", lwe.ErrInvalidParameter, params.Sigma)
	}
	if params.Sigma > float64(params.Q) {
		return fmt.Errorf("%w: sigma %v exceeds modulus q=%d", lwe.ErrInvalidParameter, params.Sigma, params.Q)
	}
	if _, err := utils.SafeMultiply(params.N, params.N); err != nil || params.N*params.N > utils.MaxMatrixElements {
		return fmt.Errorf("%w: dimension n=%d exceeds matrix limit", lwe.ErrInvalidParameter, params.N)
	}
	// Worst case inner product: n * (q-1)^2.
	sq, err := utils.SafeMultiply(params.Q-1, params.Q-1)
	if err != nil {
		return fmt.Errorf("%w: (q-1)^2 overflows: %v", lwe.ErrInvalidParameter, err)
	}
	if _, err := utils.SafeMultiply(params.N, sq); err != nil {
		return fmt.Errorf("%w: n*(q-1)^2 overflows: %v", lwe.ErrInvalidParameter, err)
	}
	return nil
}

// isPrime checks if a number is prime using a simple trial division.
// This is used for validating parameters, not for generating large primes.
func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
