package windowing

import (
	"math"
	"testing"
)

func TestPeriodicHann(t *testing.T) {
	h := NewPeriodicHann(8)
	coeffs := h.Coefficients()

	if len(coeffs) != 8 {
		t.Fatalf("length = %d, want 8", len(coeffs))
	}
	for i, c := range coeffs {
		want := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/8))
		if math.Abs(c-want) > 1e-12 {
			t.Errorf("coeff %d = %v, want %v", i, c, want)
		}
	}
	// The periodic window starts at zero but does not end at zero, so
	// consecutive frames tile seamlessly.
	if coeffs[0] != 0 {
		t.Errorf("coeff 0 = %v, want 0", coeffs[0])
	}
	if coeffs[7] == 0 {
		t.Error("periodic window must not end at zero")
	}
}

func TestSymmetricHannEndpoints(t *testing.T) {
	h := NewHann(9, true)
	coeffs := h.Coefficients()
	if coeffs[0] != 0 || math.Abs(coeffs[8]) > 1e-15 {
		t.Errorf("symmetric endpoints = %v, %v, want 0, 0", coeffs[0], coeffs[8])
	}
	if math.Abs(coeffs[4]-1) > 1e-12 {
		t.Errorf("midpoint = %v, want 1", coeffs[4])
	}
}

func TestApplyInPlaceLengthCheck(t *testing.T) {
	h := NewPeriodicHann(4)
	if err := h.ApplyInPlace(make([]float64, 5)); err == nil {
		t.Error("expected length mismatch error")
	}
	signal := []float64{1, 1, 1, 1}
	if err := h.ApplyInPlace(signal); err != nil {
		t.Fatal(err)
	}
	for i, v := range signal {
		if math.Abs(v-h.Coefficients()[i]) > 1e-15 {
			t.Errorf("windowed[%d] = %v", i, v)
		}
	}
}
