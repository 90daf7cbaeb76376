package tensor

import "testing"

func TestPad1DConstant(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2, 3, 4}, 2, 2)
	y, err := Pad1D(x, 1, 2, PadConstant)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1, 2, 0, 0, 0, 3, 4, 0, 0}
	if y.Dim(-1) != 5 {
		t.Fatalf("padded length = %d, want 5", y.Dim(-1))
	}
	for i, v := range want {
		if y.Data[i] != v {
			t.Fatalf("padded = %v, want %v", y.Data, want)
		}
	}
}

func TestPad1DReflect(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2, 3, 4, 5}, 1, 5)
	y, err := Pad1D(x, 3, 2, PadReflect)
	if err != nil {
		t.Fatal(err)
	}
	// Mirror without repeating the edge sample.
	want := []float64{4, 3, 2, 1, 2, 3, 4, 5, 4, 3}
	for i, v := range want {
		if y.Data[i] != v {
			t.Fatalf("reflected = %v, want %v", y.Data, want)
		}
	}
}

func TestPad1DReflectSymmetry(t *testing.T) {
	x, _ := FromSlice([]float64{3, 1, 4, 1, 5, 9, 2, 6}, 1, 8)
	const p = 5
	y, err := Pad1D(x, p, p, PadReflect)
	if err != nil {
		t.Fatal(err)
	}
	// The pad mirrors around the first sample: y[p-1-k] == y[p+1+k].
	for k := 0; k+1 < p; k++ {
		if y.Data[p-1-k] != y.Data[p+1+k] {
			t.Errorf("left mirror broken at k=%d: %v != %v", k, y.Data[p-1-k], y.Data[p+1+k])
		}
	}
	end := p + 8 - 1 // index of the last data sample
	for k := 0; k+1 < p; k++ {
		if y.Data[end+1+k] != y.Data[end-1-k] {
			t.Errorf("right mirror broken at k=%d: %v != %v", k, y.Data[end+1+k], y.Data[end-1-k])
		}
	}
}

func TestPad1DReflectShortInput(t *testing.T) {
	// Pads larger than length-1 force the two-pass scheme: zero-extend by
	// the minimum deficit, then reflect the remainder.
	x, _ := FromSlice([]float64{1, 2}, 1, 2)
	y, err := Pad1D(x, 3, 3, PadReflect)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 2, 1, 2, 0, 0, 0}
	for i, v := range want {
		if y.Data[i] != v {
			t.Fatalf("short reflect = %v, want %v", y.Data, want)
		}
	}
}

func TestPad1DRejectsNegativePads(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2, 3}, 1, 3)
	if _, err := Pad1D(x, -1, 0, PadConstant); err == nil {
		t.Error("expected error for negative pad")
	}
}
