package zq

import (
	"math"
	"testing"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	assert.Equal(t, int32(1), Reduce(-5, 3))
	assert.Equal(t, int32(2), Reduce(5, 3))
	assert.Equal(t, int32(0), Reduce(-257, 257))
	assert.Equal(t, int32(256), Reduce(-1, 257))
	assert.Equal(t, int32(256), Reduce(int8(-1), 257))
	assert.Equal(t, int32(0), Reduce(int64(8380417)*3, 8380417))

	const q = 8380417
	for _, x := range []int64{math.MinInt64, math.MinInt64 + 1, -q - 1, -1, 0, 1, q - 1, q, math.MaxInt64} {
		r := Reduce(x, q)
		assert.True(t, r >= 0 && r < q, "Reduce(%d) = %d out of range", x, r)
	}
}

func TestCenter(t *testing.T) {
	assert.Equal(t, int32(-2), Center(13, 5)) // 13 % 5 = 3 -> 3-5 = -2
	assert.Equal(t, int32(2), Center(2, 5))
	assert.Equal(t, int32(0), Center(0, 257))
	assert.Equal(t, int32(128), Center(128, 257))
	assert.Equal(t, int32(-128), Center(129, 257))
	assert.Equal(t, int32(-1), Center(256, 257))
}

func TestAddSub(t *testing.T) {
	q := 7
	a := lwe.Vector{1, 6, 3}
	b := lwe.Vector{6, 6, 0}

	sum, err := Add(a, b, q)
	require.NoError(t, err)
	assert.Equal(t, lwe.Vector{0, 5, 3}, sum)

	diff, err := Sub(a, b, q)
	require.NoError(t, err)
	assert.Equal(t, lwe.Vector{2, 0, 3}, diff)

	_, err = Add(a, lwe.Vector{1}, q)
	assert.ErrorIs(t, err, lwe.ErrDimensionMismatch)
	_, err = Sub(a, lwe.Vector{1}, q)
	assert.ErrorIs(t, err, lwe.ErrDimensionMismatch)
}

func TestInnerProduct(t *testing.T) {
	ip, err := InnerProduct(lwe.Vector{1, 2, 3}, lwe.Vector{4, 5, 6}, 17)
	require.NoError(t, err)
	assert.Equal(t, int32(32%17), ip)

	_, err = InnerProduct(lwe.Vector{1, 2}, lwe.Vector{1}, 17)
	assert.ErrorIs(t, err, lwe.ErrDimensionMismatch)
}

func TestMatVecMul(t *testing.T) {
	// [[1 2] [3 4]] · (5, 6) = (17, 39)
	A := lwe.Matrix{Rows: 2, Cols: 2, Data: []int32{1, 2, 3, 4}}
	v := lwe.Vector{5, 6}

	out, err := MatVecMul(A, v, 11)
	require.NoError(t, err)
	assert.Equal(t, lwe.Vector{17 % 11, 39 % 11}, out)

	_, err = MatVecMul(A, lwe.Vector{1}, 11)
	assert.ErrorIs(t, err, lwe.ErrDimensionMismatch)

	bad := lwe.Matrix{Rows: 2, Cols: 2, Data: []int32{1, 2, 3}}
	_, err = MatVecMul(bad, v, 11)
	assert.ErrorIs(t, err, lwe.ErrDimensionMismatch)
}

func TestVecMatMul(t *testing.T) {
	// (5, 6) · [[1 2] [3 4]] = (23, 34)
	A := lwe.Matrix{Rows: 2, Cols: 2, Data: []int32{1, 2, 3, 4}}
	v := lwe.Vector{5, 6}

	out, err := VecMatMul(v, A, 11)
	require.NoError(t, err)
	assert.Equal(t, lwe.Vector{23 % 11, 34 % 11}, out)

	// Non-square shapes follow row/column semantics.
	R := lwe.Matrix{Rows: 2, Cols: 3, Data: []int32{1, 0, 2, 0, 1, 3}}
	out, err = VecMatMul(lwe.Vector{1, 1}, R, 11)
	require.NoError(t, err)
	assert.Equal(t, lwe.Vector{1, 1, 5}, out)

	_, err = VecMatMul(lwe.Vector{1, 2, 3}, A, 11)
	assert.ErrorIs(t, err, lwe.ErrDimensionMismatch)
}

// (r·A)·s must equal r·(A·s): the identity decryption relies on.
func TestProductsAssociate(t *testing.T) {
	const q = 8380417
	n := 16
	A := lwe.NewMatrix(n, n)
	r := lwe.NewVector(n)
	s := lwe.NewVector(n)
	for i := 0; i < n; i++ {
		r[i] = int32(i % 2)
		s[i] = int32(q - 1 - i*7919)
		for j := 0; j < n; j++ {
			A.Set(i, j, int32((i*131071+j*524287)%q))
		}
	}

	rA, err := VecMatMul(r, A, q)
	require.NoError(t, err)
	left, err := InnerProduct(rA, s, q)
	require.NoError(t, err)

	As, err := MatVecMul(A, s, q)
	require.NoError(t, err)
	right, err := InnerProduct(r, As, q)
	require.NoError(t, err)

	assert.Equal(t, left, right)
}

func TestWorstCaseNoOverflow(t *testing.T) {
	const q = 8380417
	n := 256
	a := lwe.NewVector(n)
	for i := range a {
		a[i] = q - 1
	}
	ip, err := InnerProduct(a, a, q)
	require.NoError(t, err)
	// (q-1)^2 = 1 mod q, so the sum is n mod q.
	assert.Equal(t, int32(n), ip)
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange([]int32{0, 1, 256}, 257))
	assert.False(t, InRange([]int32{0, 257}, 257))
	assert.False(t, InRange([]int32{-1}, 257))
	assert.True(t, InRange(nil, 257))
}
