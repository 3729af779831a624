// Package share implements the Thien-Lin polynomial construction: it
// partitions a whitened secret's pixels into length-k groups, treats
// each group as the coefficients of a degree-(k-1) polynomial over
// GF(257), and evaluates that polynomial at x = 1..n to produce n
// shadow pixels per group.
//
// The evaluation itself mirrors the Horner-method/coefficient-table
// style used throughout the reference corpus's GF(2^8) and GF(2^16)
// secret-sharing implementations (e.g. PureStorage-OpenConnect's
// polynomial.evaluate and antik10ud-go-tss's eval), adapted from a
// characteristic-2 field to GF(257).
package share

import (
	"errors"
	"fmt"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/gf257"
)

var (
	ErrBadArgument     = errors.New("share: bad argument")
	ErrGroupMisaligned = errors.New("share: pixel count not divisible by k")
)

// Result is the outcome of sharing one secret's pixel buffer: n rows
// of M = len(pixels)/k shadow pixels each, plus bookkeeping about how
// many pixel groups triggered the coefficient-repair rule.
type Result struct {
	// Shadows[i] holds the pixel bytes for shadow index i+1 (1-based
	// shadow indices run 1..n).
	Shadows [][]byte
	// RepairedGroups counts how many pixel groups needed the
	// coefficient-repair rule (see repair below and spec.md §9).
	RepairedGroups int
}

// Evaluate partitions pixels into groups of k coefficients and
// evaluates the resulting degree-(k-1) polynomial at x = 1..n for each
// group, applying the coefficient-repair rule whenever an evaluation
// would land on 256 (unrepresentable in a byte).
func Evaluate(pixels []byte, k, n int) (*Result, error) {
	if k < 2 || n < k || n > 65535 {
		return nil, fmt.Errorf("share.Evaluate: %w: need 2 <= k <= n <= 65535, got k=%d n=%d", ErrBadArgument, k, n)
	}
	if len(pixels)%k != 0 {
		return nil, fmt.Errorf("share.Evaluate: %w: %d pixels, k=%d", ErrGroupMisaligned, len(pixels), k)
	}

	numGroups := len(pixels) / k
	res := &Result{Shadows: make([][]byte, n)}
	for i := range res.Shadows {
		res.Shadows[i] = make([]byte, numGroups)
	}

	coeffs := make([]int, k)
	for g := 0; g < numGroups; g++ {
		for i := 0; i < k; i++ {
			coeffs[i] = int(pixels[g*k+i])
		}

		values, repaired := evaluateGroup(coeffs, n)
		if repaired {
			res.RepairedGroups++
		}
		for i := 0; i < n; i++ {
			res.Shadows[i][g] = byte(values[i])
		}
	}
	return res, nil
}

// evaluateGroup evaluates the polynomial with coefficients coeffs at x
// = 1..n, applying the repair rule (see repair) until every resulting
// value fits in a byte. It reports whether a repair was needed.
func evaluateGroup(coeffs []int, n int) (values []int, repaired bool) {
	values = make([]int, n)
	for {
		ok := true
		for x := 1; x <= n; x++ {
			values[x-1] = evalPoly(coeffs, x)
			if values[x-1] == 256 {
				ok = false
			}
		}
		if ok {
			return values, repaired
		}
		repair(coeffs)
		repaired = true
	}
}

// evalPoly evaluates f(x) = coeffs[0] + coeffs[1]*x + ... via Horner's
// method, reduced mod 257 at every step.
func evalPoly(coeffs []int, x int) int {
	r := 0
	for i := len(coeffs) - 1; i >= 0; i-- {
		r = gf257.Add(gf257.Mul(r, x), coeffs[i])
	}
	return r
}

// repair decrements the first nonzero coefficient (mod 256) in place.
//
// spec.md §9 flags a tension here: the Thien-Lin paper's argument
// assumes a zero coefficient exists (so decrementing it would be a
// no-op on the recovered value once reversed through the whitening
// mask), but the observable behavior this implementation preserves
// decrements the first NON-zero coefficient, which does change the
// secret byte at that position. Round-trip recovery is therefore only
// exact when this branch is never taken; RepairedGroups on the Result
// lets a caller detect and report when it was.
func repair(coeffs []int) {
	for i := range coeffs {
		if coeffs[i] != 0 {
			coeffs[i] = (coeffs[i] - 1 + 256) % 256
			return
		}
	}
}
