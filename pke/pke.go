// Package pke is the asymmetric mode: anyone holding the public key (A, b) can encrypt a
// bit, only the holder of s can decrypt it.
package pke

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
	DomainKeygen  = "lwe-pke-keygen-v1"
	DomainEncrypt = "lwe-pke-encrypt-v1"
)

// RandomnessSize is the length of the randomness accepted by EncryptDeterministic.
const RandomnessSize = 32

// GenerateKeyPair generates a key pair for a preset.
func GenerateKeyPair(set lwe.ParamSet) (*lwe.KeyPair, error) {
	params, err := core.GetParams(set)
	if err != nil {
		return nil, err
	}
	return GenerateKeyPairWithParams(params)
}

// GenerateKeyPairWithParams generates a key pair from system randomness.
func GenerateKeyPairWithParams(params lwe.Params) (*lwe.KeyPair, error) {
	s, err := sampling.NewSampler(params, sampling.NewSource())
	if err != nil {
		return nil, err
	}
	return keygen.GenerateKeyPair(params, s)
}

// GenerateKeyPairFromSeed deterministically derives a key pair from seed.
func GenerateKeyPairFromSeed(params lwe.Params, seed []byte) (*lwe.KeyPair, error) {
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
	return keygen.GenerateKeyPair(params, s)
}

// Encrypt encrypts one bit with fresh system randomness.
func Encrypt(pk *lwe.PublicKey, bit int) (*lwe.Ciphertext, error) {
	if pk == nil {
		return nil, fmt.Errorf("%w: nil public key", lwe.ErrInvalidParameter)
	}
	s, err := sampling.NewSampler(pk.Params, sampling.NewSource())
	if err != nil {
		return nil, err
	}
	return engine.EncryptPublic(pk, bit, s)
}

// EncryptDeterministic encrypts one bit using caller-supplied randomness.
// Reusing randomness with the same key reproduces the same ciphertext.
func EncryptDeterministic(pk *lwe.PublicKey, bit int, randomness []byte) (*lwe.Ciphertext, error) {
	if pk == nil {
		return nil, fmt.Errorf("%w: nil public key", lwe.ErrInvalidParameter)
	}
	if len(randomness) != RandomnessSize {
		return nil, fmt.Errorf("%w: randomness must be %d bytes", lwe.ErrInvalidParameter, RandomnessSize)
	}
	key := utils.HashWithDomain(DomainEncrypt, utils.HashConcat(randomness, pk.Fingerprint()))
	defer utils.Zeroize(key)

	src, err := sampling.NewKeyedSource(key)
	if err != nil {
		return nil, err
	}
	s, err := sampling.NewSampler(pk.Params, src)
	if err != nil {
		return nil, err
	}
	return engine.EncryptPublic(pk, bit, s)
}

// Decrypt recovers the bit in ct.
func Decrypt(sk *lwe.SecretKey, ct *lwe.Ciphertext) (int, error) {
	if sk == nil {
		return 0, fmt.Errorf("%w: nil secret key", lwe.ErrInvalidParameter)
	}
	return engine.Decrypt(sk.Params, sk.S, ct)
}

// EncryptBits encrypts each bit independently on the engine worker pool.
func EncryptBits(pk *lwe.PublicKey, bits []int) ([]*lwe.Ciphertext, error) {
	if pk == nil {
		return nil, fmt.Errorf("%w: nil public key", lwe.ErrInvalidParameter)
	}
	if err := engine.ValidateBits(bits); err != nil {
		return nil, err
	}
	cts := make([]*lwe.Ciphertext, len(bits))
	err := engine.Parallel(len(bits), 0, pk.Params, nil, func(i int, s *sampling.Sampler) error {
		ct, err := engine.EncryptPublic(pk, bits[i], s)
		cts[i] = ct
		return err
	})
	if err != nil {
		return nil, err
	}
	return cts, nil
}

// DecryptBits decrypts a batch produced by EncryptBits.
func DecryptBits(sk *lwe.SecretKey, cts []*lwe.Ciphertext) ([]int, error) {
	if sk == nil {
		return nil, fmt.Errorf("%w: nil secret key", lwe.ErrInvalidParameter)
	}
	bits := make([]int, len(cts))
	for i, ct := range cts {
		b, err := engine.Decrypt(sk.Params, sk.S, ct)
		if err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}
		bits[i] = b
	}
	return bits, nil
}

// EncryptBytes encrypts msg as 8·len(msg) single-bit ciphertexts.
func EncryptBytes(pk *lwe.PublicKey, msg []byte) ([]*lwe.Ciphertext, error) {
	bits, err := engine.BytesToBits(msg)
	if err != nil {
		return nil, err
	}
	return EncryptBits(pk, bits)
}

// DecryptBytes reverses EncryptBytes.
func DecryptBytes(sk *lwe.SecretKey, cts []*lwe.Ciphertext) ([]byte, error) {
	bits, err := DecryptBits(sk, cts)
	if err != nil {
		return nil, err
	}
	return engine.BitsToBytes(bits)
}
