package share

import (
	"testing"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/gf257"
	"github.com/contivero/kuang-shyr-tsung-ming/internal/reconstruct"
)

// TestMinimalShare reproduces spec.md §8 scenario 2: a 4-pixel secret,
// k=2, n=2.
func TestMinimalShare(t *testing.T) {
	pixels := []byte{10, 20, 30, 40}
	res, err := Evaluate(pixels, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{30, 70}, {50, 110}}
	for i, shadow := range res.Shadows {
		for j, v := range shadow {
			if v != want[i][j] {
				t.Errorf("shadow %d pixel %d = %d, want %d", i+1, j, v, want[i][j])
			}
		}
	}
}

// TestRoundTripAnyKOfN reproduces spec.md §8 scenario 3: a (3,5) share,
// recovered from three different 3-of-5 combinations.
func TestRoundTripAnyKOfN(t *testing.T) {
	pixels := []byte{68, 32, 130, 60, 253, 230, 241, 194, 107}
	k, n := 3, 5
	res, err := Evaluate(pixels, k, n)
	if err != nil {
		t.Fatal(err)
	}

	combos := [][]int{{1, 2, 3}, {1, 3, 5}, {2, 4, 5}}
	for _, combo := range combos {
		var shadows [][]byte
		for _, idx := range combo {
			shadows = append(shadows, res.Shadows[idx-1])
		}
		got, err := reconstruct.Reconstruct(shadows, combo)
		if err != nil {
			t.Fatalf("combo %v: %v", combo, err)
		}
		for i, b := range got {
			if b != pixels[i] {
				t.Fatalf("combo %v: recovered[%d] = %d, want %d", combo, i, b, pixels[i])
			}
		}
	}
}

// TestCoefficientRepairTrigger reproduces spec.md §8 scenario 4: k=2
// coefficients (128, 128) evaluate to 256 at x=1, forcing the repair
// rule. The resulting shadow values must all be valid bytes.
func TestCoefficientRepairTrigger(t *testing.T) {
	res, err := Evaluate([]byte{128, 128}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.RepairedGroups != 1 {
		t.Fatalf("RepairedGroups = %d, want 1", res.RepairedGroups)
	}
	for i, shadow := range res.Shadows {
		for _, v := range shadow {
			if v > 255 {
				t.Fatalf("shadow %d contains out-of-range byte %d", i+1, v)
			}
		}
	}
}

func TestEvaluateRejectsMisalignedPixelCount(t *testing.T) {
	_, err := Evaluate([]byte{1, 2, 3}, 2, 2)
	if err == nil {
		t.Fatal("expected error for pixel count not divisible by k")
	}
}

func TestEvaluateRejectsBadThreshold(t *testing.T) {
	cases := []struct{ k, n int }{
		{1, 5}, // k < 2
		{5, 3}, // n < k
		{2, 70000},
	}
	for _, c := range cases {
		if _, err := Evaluate([]byte{1, 2}, c.k, c.n); err == nil {
			t.Errorf("k=%d n=%d: expected error", c.k, c.n)
		}
	}
}

func TestShadowIndicesAreDistinctOneToN(t *testing.T) {
	res, err := Evaluate([]byte{1, 2, 3, 4}, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Shadows) != 4 {
		t.Fatalf("got %d shadows, want 4", len(res.Shadows))
	}
	// Shadows[i] must hold the evaluations at x = i+1: groups (1, 2) and
	// (3, 4) give f(x) = 1+2x and f(x) = 3+4x.
	for i, shadow := range res.Shadows {
		x := i + 1
		want := []byte{byte(1 + 2*x), byte(3 + 4*x)}
		for g, v := range shadow {
			if v != want[g] {
				t.Errorf("shadow index %d group %d = %d, want %d", x, g, v, want[g])
			}
		}
	}
}

func TestEvalPolyMatchesDirectEvaluation(t *testing.T) {
	coeffs := []int{5, 9, 200}
	for x := 1; x <= 5; x++ {
		want := gf257.Mod(coeffs[0] + coeffs[1]*x + coeffs[2]*x*x)
		if got := evalPoly(coeffs, x); got != want {
			t.Errorf("evalPoly(_, %d) = %d, want %d", x, got, want)
		}
	}
}
