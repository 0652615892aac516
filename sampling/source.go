// Package sampling provides randomness sources and the distributions drawn from them:
// uniform elements of Z_q, binary vectors and rounded Gaussian noise.
package sampling

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/utils"
)

// Source is a stream of random bytes.
type Source interface {
	io.Reader
}

// systemSource reads the process-wide system randomness source.
type systemSource struct{}

// NewSource returns a Source backed by utils.RandReader (crypto/rand unless a test
// has replaced it). It is safe for concurrent use.
func NewSource() Source {
	return systemSource{}
}

func (systemSource) Read(p []byte) (int, error) {
	return utils.RandReader.Read(p)
}

// KeyedSource deterministically expands a key with the BLAKE2b XOF. Two sources built
// from the same key yield the same byte stream.
//
// Reads are serialized by a mutex, but interleaving readers makes the split of the stream
// between them unpredictable. Give each goroutine its own source.
type KeyedSource struct {
	mutex sync.Mutex
	key   []byte
	xof   blake2b.XOF
}

// KeyedSourceMaxKeySize is the longest key NewKeyedSource accepts.
const KeyedSourceMaxKeySize = blake2b.Size

var errKeyTooLong = errors.New("keyed source: key longer than 64 bytes")

// NewKeyedSource creates a KeyedSource. A nil or empty key is accepted but produces a
// public stream.
func NewKeyedSource(key []byte) (*KeyedSource, error) {
	if len(key) > KeyedSourceMaxKeySize {
		return nil, errKeyTooLong
	}
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		return nil, fmt.Errorf("keyed source: %w", err)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &KeyedSource{key: k, xof: xof}, nil
}

// Key returns a copy of the key, usable with NewKeyedSource to replay the stream.
func (s *KeyedSource) Key() []byte {
	k := make([]byte, len(s.key))
	copy(k, s.key)
	return k
}

// Read fills p with the next bytes of the stream.
func (s *KeyedSource) Read(p []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.xof.Read(p)
}

// Reset rewinds the stream to its first byte.
func (s *KeyedSource) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.xof.Reset()
}

// DeriveKey derives a 32-byte subkey from master for the given label and index.
// Distinct (label, index) pairs give independent keys.
func DeriveKey(master []byte, label string, index int) []byte {
	h := blake3.NewDeriveKey("lwe-go sampling " + label)
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], uint64(index))
	h.Write(idx[:])
	h.Write(master)
	return h.Sum(nil)
}

// NewWorkerSources returns one KeyedSource per worker, each keyed with
// DeriveKey(master, "worker", i). If master is nil a fresh 32-byte master is drawn
// from the system source.
func NewWorkerSources(master []byte, workers int) ([]*KeyedSource, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: worker count %d", lwe.ErrInvalidParameter, workers)
	}
	if master == nil {
		var err error
		master, err = utils.SecureRandomBytes(32)
		if err != nil {
			return nil, err
		}
		defer utils.Zeroize(master)
	}

	sources := make([]*KeyedSource, workers)
	for i := range sources {
		key := DeriveKey(master, "worker", i)
		src, err := NewKeyedSource(key)
		utils.Zeroize(key)
		if err != nil {
			return nil, err
		}
		sources[i] = src
	}
	return sources, nil
}
