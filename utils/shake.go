package utils

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

const (
	// MaxHashConcatInputSize bounds each HashConcat input so its length prefix stays
	// unambiguous.
	MaxHashConcatInputSize = 100 * 1024 * 1024
)

var shake256Pool = sync.Pool{
	New: func() interface{} {
		return sha3.NewShake256()
	},
}

// Shake256 computes the SHAKE256 extendable output function (XOF).
// It takes an input byte slice and generates an output of the specified length.
func Shake256(input []byte, outputLen int) []byte {
	h := shake256Pool.Get().(sha3.ShakeHash)
	defer func() {
		h.Reset()
		shake256Pool.Put(h)
	}()

	h.Write(input)
	output := make([]byte, outputLen)
	_, _ = h.Read(output)
	return output
}

// HashWithDomain computes a domain-separated 32-byte SHAKE256 digest.
// It prefixes the data with the length of the domain string and the domain string itself.
// Panics if domain is longer than 255 bytes.
func HashWithDomain(domain string, data []byte) []byte {
	domainBytes := []byte(domain)
	if len(domainBytes) > 255 {
		panic("domain string must be at most 255 bytes")
	}
	input := make([]byte, 0, 1+len(domainBytes)+len(data))
	input = append(input, byte(len(domainBytes)))
	input = append(input, domainBytes...)
	input = append(input, data...)
	return Shake256(input, 32)
}

// HashConcat computes the SHA3-256 hash of the concatenation of multiple byte slices.
// Each slice is prefixed with its length (4 bytes, little-endian) to ensure unique encoding.
func HashConcat(inputs ...[]byte) []byte {
	h := sha3.New256()
	lenBytes := make([]byte, 4)
	for _, input := range inputs {
		if len(input) > MaxHashConcatInputSize {
			panic("HashConcat: input size exceeds maximum")
		}

		l := len(input)
		lenBytes[0] = byte(l)
		lenBytes[1] = byte(l >> 8)
		lenBytes[2] = byte(l >> 16)
		lenBytes[3] = byte(l >> 24)
		h.Write(lenBytes)
		h.Write(input)
	}
	return h.Sum(nil)
}
