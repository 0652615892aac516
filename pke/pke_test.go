package pke

import (
	"bytes"
	"errors"
	"testing"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/core"
	"github.com/BackendStack21/lwe-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed(fill byte) []byte {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = fill ^ byte(i*37+11)
	}
	return seed
}

func TestRoundTripToy(t *testing.T) {
	runs := 1000
	if testing.Short() {
		runs = 100
	}
	for _, bit := range []int{0, 1} {
		mismatches := 0
		for i := 0; i < runs; i++ {
			kp, err := GenerateKeyPair(lwe.LWE_TOY)
			require.NoError(t, err)
			ct, err := Encrypt(&kp.PublicKey, bit)
			require.NoError(t, err)
			got, err := Decrypt(&kp.SecretKey, ct)
			require.NoError(t, err)
			if got != bit {
				mismatches++
			}
		}
		assert.Less(t, float64(mismatches)/float64(runs), 0.05, "bit %d: %d/%d mismatches", bit, mismatches, runs)
	}
}

func TestScenarioToyBitOne(t *testing.T) {
	ok := 0
	for i := 0; i < 100; i++ {
		kp, err := GenerateKeyPair(lwe.LWETOY)
		require.NoError(t, err)
		ct, err := Encrypt(&kp.PublicKey, 1)
		require.NoError(t, err)
		if got, err := Decrypt(&kp.SecretKey, ct); err == nil && got == 1 {
			ok++
		}
	}
	assert.GreaterOrEqual(t, ok, 95)
}

func TestEncryptIsRandomized(t *testing.T) {
	kp, err := GenerateKeyPair(lwe.LWE256)
	require.NoError(t, err)

	a, err := Encrypt(&kp.PublicKey, 1)
	require.NoError(t, err)
	b, err := Encrypt(&kp.PublicKey, 1)
	require.NoError(t, err)
	assert.False(t, a.Equal(b), "two encryptions of the same bit must differ")

	d1, err := Decrypt(&kp.SecretKey, a)
	require.NoError(t, err)
	d2, err := Decrypt(&kp.SecretKey, a)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Equal(t, 1, d1)
}

func TestGenerateKeyPairFromSeed(t *testing.T) {
	params := core.ToyParams
	a, err := GenerateKeyPairFromSeed(params, testSeed(1))
	require.NoError(t, err)
	b, err := GenerateKeyPairFromSeed(params, testSeed(1))
	require.NoError(t, err)
	c, err := GenerateKeyPairFromSeed(params, testSeed(2))
	require.NoError(t, err)

	assert.True(t, a.PublicKey.Equal(&b.PublicKey))
	assert.True(t, a.SecretKey.S.Equal(b.SecretKey.S))
	assert.False(t, a.PublicKey.Equal(&c.PublicKey))
	assert.Equal(t, a.PublicKey.Fingerprint(), b.PublicKey.Fingerprint())

	_, err = GenerateKeyPairFromSeed(params, make([]byte, 32))
	assert.True(t, errors.Is(err, lwe.ErrInvalidParameter), "all-zero seed")
	_, err = GenerateKeyPairFromSeed(params, testSeed(1)[:16])
	assert.True(t, errors.Is(err, lwe.ErrInvalidParameter), "short seed")
}

func TestEncryptDeterministic(t *testing.T) {
	kp, err := GenerateKeyPairFromSeed(core.ToyParams, testSeed(3))
	require.NoError(t, err)
	r := testSeed(4)

	a, err := EncryptDeterministic(&kp.PublicKey, 1, r)
	require.NoError(t, err)
	b, err := EncryptDeterministic(&kp.PublicKey, 1, r)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	c, err := EncryptDeterministic(&kp.PublicKey, 1, testSeed(5))
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	got, err := Decrypt(&kp.SecretKey, a)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = EncryptDeterministic(&kp.PublicKey, 1, r[:31])
	assert.True(t, errors.Is(err, lwe.ErrInvalidParameter))
}

func TestBytesRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair(lwe.LWE_TOY)
	require.NoError(t, err)

	msg := []byte("lattice")
	cts, err := EncryptBytes(&kp.PublicKey, msg)
	require.NoError(t, err)
	require.Len(t, cts, len(msg)*8)

	got, err := DecryptBytes(&kp.SecretKey, cts)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(msg, got), "got %q", got)

	empty, err := EncryptBytes(&kp.PublicKey, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBitsRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair(lwe.LWE256)
	require.NoError(t, err)

	bits := []int{1, 0, 0, 1, 1, 1, 0, 1, 0}
	cts, err := EncryptBits(&kp.PublicKey, bits)
	require.NoError(t, err)
	got, err := DecryptBits(&kp.SecretKey, cts)
	require.NoError(t, err)
	assert.Equal(t, bits, got)
}

func TestErrors(t *testing.T) {
	_, err := GenerateKeyPair("LWE-9000")
	assert.True(t, errors.Is(err, lwe.ErrInvalidParameter))

	_, err = GenerateKeyPairWithParams(lwe.Params{N: 5, Q: 255, Sigma: 1})
	assert.True(t, errors.Is(err, lwe.ErrInvalidParameter))

	kp, err := GenerateKeyPair(lwe.LWE_TOY)
	require.NoError(t, err)

	_, err = Encrypt(&kp.PublicKey, 2)
	assert.True(t, errors.Is(err, lwe.ErrInvalidMessage))
	_, err = Encrypt(nil, 1)
	assert.True(t, errors.Is(err, lwe.ErrInvalidParameter))
	_, err = EncryptBits(&kp.PublicKey, []int{0, 1, 7})
	assert.True(t, errors.Is(err, lwe.ErrInvalidMessage))
	_, err = EncryptBytes(&kp.PublicKey, make([]byte, utils.MaxMessageSize+1))
	assert.True(t, errors.Is(err, lwe.ErrInvalidMessage))

	ct, err := Encrypt(&kp.PublicKey, 0)
	require.NoError(t, err)
	_, err = Decrypt(nil, ct)
	assert.True(t, errors.Is(err, lwe.ErrInvalidParameter))

	other, err := GenerateKeyPair(lwe.LWE256)
	require.NoError(t, err)
	_, err = Decrypt(&other.SecretKey, ct)
	assert.True(t, errors.Is(err, lwe.ErrDimensionMismatch))

	_, err = DecryptBytes(&kp.SecretKey, []*lwe.Ciphertext{ct})
	assert.True(t, errors.Is(err, lwe.ErrDimensionMismatch))
}

func TestRandomnessFailure(t *testing.T) {
	saved := utils.RandReader
	utils.RandReader = bytes.NewReader(nil)
	defer func() { utils.RandReader = saved }()

	_, err := GenerateKeyPair(lwe.LWE_TOY)
	assert.True(t, errors.Is(err, lwe.ErrRandomnessUnavailable))
}

func BenchmarkGenerateKeyPair256(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GenerateKeyPair(lwe.LWE256)
	}
}

func BenchmarkEncrypt256(b *testing.B) {
	kp, _ := GenerateKeyPair(lwe.LWE256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Encrypt(&kp.PublicKey, i&1)
	}
}

func BenchmarkDecrypt256(b *testing.B) {
	kp, _ := GenerateKeyPair(lwe.LWE256)
	ct, _ := Encrypt(&kp.PublicKey, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Decrypt(&kp.SecretKey, ct)
	}
}
