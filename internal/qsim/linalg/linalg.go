// Package linalg provides the small complex linear-algebra helpers used by the
// simulator: 2x2 matrix-vector products, Kronecker products of state vectors
// and a categorical sampler over real weights.
package linalg

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Matrix2 is a 2x2 complex matrix in row-major order
type Matrix2 [2][2]complex128

// Vector2 is a 2-component complex column vector
type Vector2 [2]complex128

// MulVec returns m · v
func MulVec(m Matrix2, v Vector2) Vector2 {
	return Vector2{
		m[0][0]*v[0] + m[0][1]*v[1],
		m[1][0]*v[0] + m[1][1]*v[1],
	}
}

// Mul returns the matrix product a · b
func Mul(a, b Matrix2) Matrix2 {
	var out Matrix2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return out
}

// ConjugateTranspose returns the Hermitian adjoint of m
func ConjugateTranspose(m Matrix2) Matrix2 {
	return Matrix2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// IsUnitary reports whether m·m† equals the identity within tol
func IsUnitary(m Matrix2, tol float64) bool {
	p := Mul(m, ConjugateTranspose(m))
	identity := Matrix2{{1, 0}, {0, 1}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.Abs(p[i][j]-identity[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// Kron returns the Kronecker product a ⊗ b.
// The result has len(a)*len(b) entries, with a's index as the high-order part.
func Kron(a, b []complex128) []complex128 {
	out := make([]complex128, len(a)*len(b))
	for i, x := range a {
		for j, y := range b {
			out[i*len(b)+j] = x * y
		}
	}
	return out
}

// KronAll folds Kron over vs from left to right.
// A single vector is returned as a copy; no vectors yield nil.
func KronAll(vs ...[]complex128) []complex128 {
	if len(vs) == 0 {
		return nil
	}

	acc := make([]complex128, len(vs[0]))
	copy(acc, vs[0])
	for _, v := range vs[1:] {
		acc = Kron(acc, v)
	}
	return acc
}

// Sum adds up weights
func Sum(weights []float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}

// Categorical picks an index from weights using u, a uniform draw in [0, 1).
// Weights are used as given: they must be nonnegative and are expected to sum
// to 1. Draws that land past the cumulative total fall back to the last index
// with nonzero weight.
func Categorical(weights []float64, u float64) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("no weights to sample from")
	}

	last := -1
	cumulative := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, fmt.Errorf("invalid weight %v at index %d", w, i)
		}
		if w == 0 {
			continue
		}
		last = i
		cumulative += w
		if u < cumulative {
			return i, nil
		}
	}

	if last < 0 {
		return 0, fmt.Errorf("all weights are zero")
	}
	return last, nil
}
