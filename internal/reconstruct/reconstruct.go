// Package reconstruct inverts the sharing engine's polynomial
// construction: given k shadows and their distinct share indices, it
// rebuilds each group's original k coefficients by Gaussian
// elimination over GF(257) on a Vandermonde-augmented matrix.
//
// The source this scheme is modeled on allocates each matrix row
// separately; spec.md §9 calls that out as worth improving. This
// package instead holds the k-by-(k+1) matrix in one contiguous slice
// with row-major index arithmetic (row r, column c lives at
// r*(k+1)+c), avoiding k small heap allocations per pixel group and
// keeping the whole working set in one cache-friendly buffer.
package reconstruct

import (
	"errors"
	"fmt"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/gf257"
)

var (
	ErrBadArgument        = errors.New("reconstruct: bad argument")
	ErrDuplicateIndex     = errors.New("reconstruct: duplicate or zero shadow index")
	ErrZeroPivot          = errors.New("reconstruct: zero pivot during elimination")
	ErrShadowSizeMismatch = errors.New("reconstruct: shadow pixel counts differ")
)

// matrix is a k-by-(k+1) buffer over GF(257) held as one contiguous
// slice in row-major order.
type matrix struct {
	k    int
	data []int
}

func newMatrix(k int) *matrix {
	return &matrix{k: k, data: make([]int, k*(k+1))}
}

func (m *matrix) at(r, c int) int { return m.data[r*(m.k+1)+c] }
func (m *matrix) set(r, c, v int) { m.data[r*(m.k+1)+c] = gf257.Mod(v) }

// Reconstruct rebuilds M = len(shadows[0])/1 ... pixel groups (one
// group per k shadow pixels) from k shadows, given their distinct,
// nonzero share indices. It returns the recovered (still-whitened)
// pixel buffer; callers apply the inverse mask themselves (see
// spec.md §4.5 step 4).
func Reconstruct(shadows [][]byte, indices []int) ([]byte, error) {
	k := len(shadows)
	if k < 2 {
		return nil, fmt.Errorf("reconstruct.Reconstruct: %w: need at least 2 shadows", ErrBadArgument)
	}
	if len(indices) != k {
		return nil, fmt.Errorf("reconstruct.Reconstruct: %w: indices/shadows length mismatch", ErrBadArgument)
	}
	if err := checkDistinctNonzero(indices); err != nil {
		return nil, err
	}

	m0 := len(shadows[0])
	for _, s := range shadows {
		if len(s) != m0 {
			return nil, fmt.Errorf("reconstruct.Reconstruct: %w", ErrShadowSizeMismatch)
		}
	}

	out := make([]byte, m0*k)
	mat := newMatrix(k)
	for p := 0; p < m0; p++ {
		fillMatrix(mat, indices, shadows, p)
		coeffs, err := solve(mat)
		if err != nil {
			return nil, err
		}
		for i, c := range coeffs {
			out[p*k+i] = byte(c)
		}
	}
	return out, nil
}

func checkDistinctNonzero(indices []int) error {
	seen := make(map[int]bool, len(indices))
	for _, x := range indices {
		if x == 0 {
			return fmt.Errorf("reconstruct: %w: shadow index must be nonzero", ErrDuplicateIndex)
		}
		if seen[x] {
			return fmt.Errorf("reconstruct: %w: %d appears twice", ErrDuplicateIndex, x)
		}
		seen[x] = true
	}
	return nil
}

// fillMatrix writes row j as [x_j^0, x_j^1, ..., x_j^(k-1) | shadow_j.pixels[p]].
func fillMatrix(m *matrix, indices []int, shadows [][]byte, p int) {
	k := m.k
	for j := 0; j < k; j++ {
		x := indices[j]
		power := 1
		for c := 0; c < k; c++ {
			m.set(j, c, power)
			power = gf257.Mul(power, x)
		}
		m.set(j, k, int(shadows[j][p]))
	}
}

// solve runs forward elimination then back-substitution on m in
// place, returning the k recovered coefficients held in column k.
func solve(m *matrix) ([]int, error) {
	k := m.k

	// Forward elimination: for each column, zero it out below the
	// diagonal using the row directly above as pivot.
	for c := 0; c < k-1; c++ {
		for r := k - 1; r > c; r-- {
			pivot := m.at(r-1, c)
			if pivot == 0 {
				return nil, fmt.Errorf("reconstruct.solve: %w", ErrZeroPivot)
			}
			alpha := gf257.Mul(m.at(r, c), gf257.Inv[pivot])
			for t := c; t <= k; t++ {
				m.set(r, t, gf257.Sub(m.at(r, t), gf257.Mul(m.at(r-1, t), alpha)))
			}
		}
	}

	// Back-substitution: scale each row so its pivot is 1, then
	// eliminate that column from every row above it.
	for i := k - 1; i >= 1; i-- {
		pivot := m.at(i, i)
		if pivot == 0 {
			return nil, fmt.Errorf("reconstruct.solve: %w", ErrZeroPivot)
		}
		invPivot := gf257.Inv[pivot]
		for t := i; t <= k; t++ {
			m.set(i, t, gf257.Mul(m.at(i, t), invPivot))
		}
		for t := 0; t < i; t++ {
			factor := m.at(t, i)
			m.set(t, k, gf257.Sub(m.at(t, k), gf257.Mul(m.at(i, k), factor)))
			m.set(t, i, 0)
		}
	}

	if m.at(0, 0) == 0 {
		return nil, fmt.Errorf("reconstruct.solve: %w", ErrZeroPivot)
	}

	coeffs := make([]int, k)
	for i := 0; i < k; i++ {
		coeffs[i] = m.at(i, k)
	}
	return coeffs, nil
}
