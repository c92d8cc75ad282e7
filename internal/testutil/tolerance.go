package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireProgress fails t unless reports is a non-empty, non-decreasing
// sequence within [0, 100] that ends at exactly 100.
func RequireProgress(t *testing.T, reports []int) {
	t.Helper()
	if len(reports) == 0 {
		t.Fatalf("no progress reported")
	}
	prev := 0
	for i, p := range reports {
		if p < 0 || p > 100 {
			t.Fatalf("report %d: %d outside [0,100]", i, p)
		}
		if p < prev {
			t.Fatalf("report %d: %d decreases from %d", i, p, prev)
		}
		prev = p
	}
	if last := reports[len(reports)-1]; last != 100 {
		t.Fatalf("last report = %d, want 100", last)
	}
}
