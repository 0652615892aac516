// Package zq implements vector and matrix arithmetic over the integers modulo a prime q.
//
// All results are normalized into [0, q). Inner products accumulate in int64; callers
// validate (see core.ValidateParams) that n*(q-1)^2 fits before using these helpers.
package zq

import (
	"fmt"

	lwe "github.com/BackendStack21/lwe-go"
	"golang.org/x/exp/constraints"
)

// Reduce returns x mod q, ensuring the result is always non-negative in [0, q).
func Reduce[T constraints.Signed](x T, q int) int32 {
	r := int64(x) % int64(q)
	if r < 0 {
		r += int64(q)
	}
	return int32(r)
}

// Center returns the representative of x mod q in (-q/2, q/2].
// This is used to read the magnitude of a noise term.
func Center(x int32, q int) int32 {
	r := Reduce(x, q)
	if int(r) > q/2 {
		return r - int32(q)
	}
	return r
}

// Add adds two vectors element-wise modulo q.
func Add(a, b lwe.Vector, q int) (lwe.Vector, error) {
	if len(a) != len(b) {
		return nil, mismatch("add", len(a), len(b))
	}
	result := make(lwe.Vector, len(a))
	for i := range a {
		result[i] = Reduce(int64(a[i])+int64(b[i]), q)
	}
	return result, nil
}

// Sub subtracts b from a element-wise modulo q.
func Sub(a, b lwe.Vector, q int) (lwe.Vector, error) {
	if len(a) != len(b) {
		return nil, mismatch("sub", len(a), len(b))
	}
	result := make(lwe.Vector, len(a))
	for i := range a {
		result[i] = Reduce(int64(a[i])-int64(b[i]), q)
	}
	return result, nil
}

// InnerProduct computes the dot product of two vectors modulo q.
func InnerProduct(a, b lwe.Vector, q int) (int32, error) {
	if len(a) != len(b) {
		return 0, mismatch("inner product", len(a), len(b))
	}
	var sum int64
	for i := range a {
		sum += int64(a[i]) * int64(b[i])
	}
	return Reduce(sum, q), nil
}

// MatVecMul computes the matrix-vector product A·v mod q, treating v as a column.
// The result has one entry per row of A.
func MatVecMul(A lwe.Matrix, v lwe.Vector, q int) (lwe.Vector, error) {
	if err := checkShape(A); err != nil {
		return nil, err
	}
	if A.Cols != len(v) {
		return nil, mismatch("matrix-vector", A.Cols, len(v))
	}
	result := make(lwe.Vector, A.Rows)
	for i := 0; i < A.Rows; i++ {
		var sum int64
		rowOffset := i * A.Cols
		for j := 0; j < A.Cols; j++ {
			sum += int64(A.Data[rowOffset+j]) * int64(v[j])
		}
		result[i] = Reduce(sum, q)
	}
	return result, nil
}

// VecMatMul computes the vector-matrix product v·A mod q, treating v as a row.
// The result has one entry per column of A.
func VecMatMul(v lwe.Vector, A lwe.Matrix, q int) (lwe.Vector, error) {
	if err := checkShape(A); err != nil {
		return nil, err
	}
	if A.Rows != len(v) {
		return nil, mismatch("vector-matrix", len(v), A.Rows)
	}
	// Column sums are built row by row so A is read in storage order.
	acc := make([]int64, A.Cols)
	for i := 0; i < A.Rows; i++ {
		vi := int64(v[i])
		if vi == 0 {
			continue
		}
		rowOffset := i * A.Cols
		for j := 0; j < A.Cols; j++ {
			acc[j] += int64(A.Data[rowOffset+j]) * vi
		}
	}
	result := make(lwe.Vector, A.Cols)
	for j, s := range acc {
		result[j] = Reduce(s, q)
	}
	return result, nil
}

// InRange reports whether every entry of v lies in [0, q).
func InRange(v []int32, q int) bool {
	for _, x := range v {
		if x < 0 || int(x) >= q {
			return false
		}
	}
	return true
}

func checkShape(A lwe.Matrix) error {
	if A.Rows < 0 || A.Cols < 0 || len(A.Data) != A.Rows*A.Cols {
		return fmt.Errorf("%w: matrix %dx%d backed by %d entries", lwe.ErrDimensionMismatch, A.Rows, A.Cols, len(A.Data))
	}
	return nil
}

func mismatch(op string, a, b int) error {
	return fmt.Errorf("%w: %s of lengths %d and %d", lwe.ErrDimensionMismatch, op, a, b)
}
