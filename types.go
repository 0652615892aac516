package lwe

import (
	"encoding/binary"

	"github.com/google/go-cmp/cmp"
	"github.com/zeebo/blake3"
)

// ParamSet names a parameter preset.
type ParamSet string

const (
	// LWETOY is the small asymmetric demonstration set (n=5, q=257, sigma=1).
	LWETOY ParamSet = "LWE-TOY"
	// LWE256 is the larger symmetric demonstration set (n=256, q=8380417, sigma=3.19).
	LWE256 ParamSet = "LWE-256"
	// Custom marks parameters built by hand rather than taken from a preset.
	Custom ParamSet = "CUSTOM"
	// Aliases with underscore for convenience
	LWE_TOY ParamSet = LWETOY
	LWE_256 ParamSet = LWE256
)

// =============================================================================
// Parameter Types
// =============================================================================

// Params fixes the ring and noise for a session.
type Params struct {
	Name  ParamSet `json:"name"`
	N     int      `json:"n"`     // Lattice dimension
	Q     int      `json:"q"`     // Prime modulus
	Sigma float64  `json:"sigma"` // Error standard deviation
}

// HalfQ returns ⌊q/2⌋, the encoding of the bit 1.
func (p Params) HalfQ() int32 {
	return int32(p.Q / 2)
}

// =============================================================================
// Vector / Matrix
// =============================================================================

// Vector is an ordered sequence of integers, each normalized into [0, q).
type Vector []int32

// NewVector allocates a zero vector of length n.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// Clone returns a deep copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Equal reports whether v and other hold the same entries.
func (v Vector) Equal(other Vector) bool {
	return cmp.Equal([]int32(v), []int32(other))
}

// Matrix is a rows x cols grid of integers in [0, q), stored row-major.
type Matrix struct {
	Rows int
	Cols int
	Data []int32
}

// NewMatrix allocates a zero rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]int32, rows*cols)}
}

// At returns the entry at row i, column j.
func (m Matrix) At(i, j int) int32 {
	return m.Data[i*m.Cols+j]
}

// Set writes the entry at row i, column j.
func (m Matrix) Set(i, j int, v int32) {
	m.Data[i*m.Cols+j] = v
}

// Row returns row i as a vector sharing the matrix storage.
func (m Matrix) Row(i int) Vector {
	return Vector(m.Data[i*m.Cols : (i+1)*m.Cols])
}

// IsSquare reports whether the matrix is n x n.
func (m Matrix) IsSquare(n int) bool {
	return m.Rows == n && m.Cols == n && len(m.Data) == n*n
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	out := Matrix{Rows: m.Rows, Cols: m.Cols, Data: make([]int32, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// Equal reports whether m and other have the same shape and entries.
func (m Matrix) Equal(other Matrix) bool {
	return m.Rows == other.Rows && m.Cols == other.Cols && cmp.Equal(m.Data, other.Data)
}

// =============================================================================
// Key Types
// =============================================================================

// PublicKey is the public key of the asymmetric mode: b = A·s + e mod q.
type PublicKey struct {
	A      Matrix
	B      Vector
	Params Params
}

// SecretKey is the private vector of the asymmetric mode.
type SecretKey struct {
	S      Vector
	Params Params
}

// SharedKey is the secret vector of the symmetric mode. No public matrix is kept;
// every encryption generates its own.
type SharedKey struct {
	S      Vector
	Params Params
}

// KeyPair contains both public and secret keys.
type KeyPair struct {
	PublicKey PublicKey
	SecretKey SecretKey
}

// Equal reports whether two public keys are identical.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.Params == other.Params && pk.A.Equal(other.A) && pk.B.Equal(other.B)
}

// Fingerprint returns a 32-byte BLAKE3 digest of the public key.
func (pk *PublicKey) Fingerprint() []byte {
	h := blake3.New()
	writeParams(h, pk.Params)
	writeInt32s(h, pk.A.Data)
	writeInt32s(h, pk.B)
	return h.Sum(nil)
}

// Fingerprint returns a 32-byte BLAKE3 digest identifying the shared key.
// Small dimensions leave few secret bits, so treat the digest as sensitive.
func (k *SharedKey) Fingerprint() []byte {
	h := blake3.New()
	writeParams(h, k.Params)
	writeInt32s(h, k.S)
	return h.Sum(nil)
}

// =============================================================================
// Ciphertext Types
// =============================================================================

// Ciphertext encrypts one bit: c1 = r·A + e1, c2 = r·b + e2 + m·⌊q/2⌋.
type Ciphertext struct {
	C1 Vector
	C2 int32
}

// Equal reports whether two ciphertexts are identical.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.C2 == other.C2 && ct.C1.Equal(other.C1)
}

// SymmetricCiphertext is a shared-key ciphertext bundled with the ephemeral A and b
// it was produced from. Decryption only needs the embedded Ciphertext.
type SymmetricCiphertext struct {
	Ciphertext
	A Matrix
	B Vector
}

// Equal reports whether two symmetric ciphertexts are identical, ephemeral material
// included.
func (ct *SymmetricCiphertext) Equal(other *SymmetricCiphertext) bool {
	return ct.Ciphertext.Equal(&other.Ciphertext) && ct.A.Equal(other.A) && ct.B.Equal(other.B)
}

func writeParams(h *blake3.Hasher, p Params) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(p.N))
	h.Write(buf)
	binary.LittleEndian.PutUint64(buf, uint64(p.Q))
	h.Write(buf)
}

func writeInt32s(h *blake3.Hasher, values []int32) {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	h.Write(buf)
}
