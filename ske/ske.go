// Package ske is the symmetric mode. Both parties hold the secret s and every encryption
// draws its own ephemeral (A, b = A·s + e), which travels with the ciphertext.
package ske

import (
	"fmt"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/core"
	"github.com/BackendStack21/lwe-go/engine"
	"github.com/BackendStack21/lwe-go/keygen"
	"github.com/BackendStack21/lwe-go/sampling"
	"github.com/BackendStack21/lwe-go/utils"
)

// Domain separation strings
const (
	DomainKeygen  = "lwe-ske-keygen-v1"
	DomainEncrypt = "lwe-ske-encrypt-v1"
)

// RandomnessSize is the length of the randomness accepted by EncryptDeterministic.
const RandomnessSize = 32

// GenerateKey generates a shared key for a preset.
func GenerateKey(set lwe.ParamSet) (*lwe.SharedKey, error) {
	params, err := core.GetParams(set)
	if err != nil {
		return nil, err
	}
	return GenerateKeyWithParams(params)
}

// GenerateKeyWithParams generates a shared key from system randomness.
func GenerateKeyWithParams(params lwe.Params) (*lwe.SharedKey, error) {
	s, err := sampling.NewSampler(params, sampling.NewSource())
	if err != nil {
		return nil, err
	}
	return keygen.GenerateSharedKey(params, s)
}

// GenerateKeyFromSeed deterministically derives a shared key from seed, so two parties
// holding the same seed obtain the same key.
func GenerateKeyFromSeed(params lwe.Params, seed []byte) (*lwe.SharedKey, error) {
	if err := utils.ValidateSeedEntropy(seed); err != nil {
		return nil, fmt.Errorf("%w: %v", lwe.ErrInvalidParameter, err)
	}
	key := utils.HashWithDomain(DomainKeygen, seed)
	defer utils.Zeroize(key)

	src, err := sampling.NewKeyedSource(key)
	if err != nil {
		return nil, err
	}
	s, err := sampling.NewSampler(params, src)
	if err != nil {
		return nil, err
	}
	return keygen.GenerateSharedKey(params, s)
}

// Encrypt encrypts one bit with fresh system randomness.
func Encrypt(key *lwe.SharedKey, bit int) (*lwe.SymmetricCiphertext, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil shared key", lwe.ErrInvalidParameter)
	}
	s, err := sampling.NewSampler(key.Params, sampling.NewSource())
	if err != nil {
		return nil, err
	}
	return engine.EncryptShared(key, bit, s)
}

// EncryptDeterministic encrypts one bit using caller-supplied randomness, which also
// determines the ephemeral instance.
func EncryptDeterministic(key *lwe.SharedKey, bit int, randomness []byte) (*lwe.SymmetricCiphertext, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil shared key", lwe.ErrInvalidParameter)
	}
	if len(randomness) != RandomnessSize {
		return nil, fmt.Errorf("%w: randomness must be %d bytes", lwe.ErrInvalidParameter, RandomnessSize)
	}
	fp := key.Fingerprint()
	defer utils.Zeroize(fp)
	k := utils.HashWithDomain(DomainEncrypt, utils.HashConcat(randomness, fp))
	defer utils.Zeroize(k)

	src, err := sampling.NewKeyedSource(k)
	if err != nil {
		return nil, err
	}
	s, err := sampling.NewSampler(key.Params, src)
	if err != nil {
		return nil, err
	}
	return engine.EncryptShared(key, bit, s)
}

// Decrypt recovers the bit in ct. The ephemeral A and b are not needed.
func Decrypt(key *lwe.SharedKey, ct *lwe.SymmetricCiphertext) (int, error) {
	if key == nil {
		return 0, fmt.Errorf("%w: nil shared key", lwe.ErrInvalidParameter)
	}
	if ct == nil {
		return 0, fmt.Errorf("%w: nil ciphertext", lwe.ErrInvalidParameter)
	}
	return engine.Decrypt(key.Params, key.S, &ct.Ciphertext)
}

// EncryptBits encrypts each bit independently on the engine worker pool.
func EncryptBits(key *lwe.SharedKey, bits []int) ([]*lwe.SymmetricCiphertext, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil shared key", lwe.ErrInvalidParameter)
	}
	if err := engine.ValidateBits(bits); err != nil {
		return nil, err
	}
	cts := make([]*lwe.SymmetricCiphertext, len(bits))
	err := engine.Parallel(len(bits), 0, key.Params, nil, func(i int, s *sampling.Sampler) error {
		ct, err := engine.EncryptShared(key, bits[i], s)
		cts[i] = ct
		return err
	})
	if err != nil {
		return nil, err
	}
	return cts, nil
}

// DecryptBits decrypts a batch produced by EncryptBits.
func DecryptBits(key *lwe.SharedKey, cts []*lwe.SymmetricCiphertext) ([]int, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil shared key", lwe.ErrInvalidParameter)
	}
	bits := make([]int, len(cts))
	for i, ct := range cts {
		b, err := Decrypt(key, ct)
		if err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}
		bits[i] = b
	}
	return bits, nil
}

// EncryptBytes encrypts msg as 8·len(msg) single-bit ciphertexts.
func EncryptBytes(key *lwe.SharedKey, msg []byte) ([]*lwe.SymmetricCiphertext, error) {
	bits, err := engine.BytesToBits(msg)
	if err != nil {
		return nil, err
	}
	return EncryptBits(key, bits)
}

// DecryptBytes reverses EncryptBytes.
func DecryptBytes(key *lwe.SharedKey, cts []*lwe.SymmetricCiphertext) ([]byte, error) {
	bits, err := DecryptBits(key, cts)
	if err != nil {
		return nil, err
	}
	return engine.BitsToBytes(bits)
}
