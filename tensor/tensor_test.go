package tensor

import (
	"errors"
	"testing"
)

func TestFromSliceValidatesShape(t *testing.T) {
	if _, err := FromSlice([]float64{1, 2, 3}, 2, 2); err == nil {
		t.Fatal("expected error for mismatched shape")
	}
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if x.Size() != 6 || x.Dim(0) != 2 || x.Dim(-1) != 3 {
		t.Errorf("unexpected dims: shape=%v size=%d", x.Shape, x.Size())
	}
}

func TestReshapePreservesData(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	y, err := x.Reshape(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := range x.Data {
		if y.Data[i] != x.Data[i] {
			t.Fatalf("data[%d] = %v, want %v", i, y.Data[i], x.Data[i])
		}
	}
	// Reshape allocates; mutating the copy must not touch the source.
	y.Data[0] = 99
	if x.Data[0] == 99 {
		t.Error("reshape aliased the source buffer")
	}

	if _, err := x.Reshape(4, 2); err == nil {
		t.Error("expected error for element count mismatch")
	}
}

func TestIndexSelectsLeadingDim(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	mid, err := x.Index(1)
	if err != nil {
		t.Fatal(err)
	}
	if mid.NumDims() != 1 || mid.Data[0] != 3 || mid.Data[1] != 4 {
		t.Errorf("Index(1) = %v shape %v", mid.Data, mid.Shape)
	}

	var rangeErr *RangeError
	if _, err := x.Index(3); !errors.As(err, &rangeErr) {
		t.Errorf("expected RangeError, got %v", err)
	}
}

func TestNarrowLast(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 2, 4)
	y, err := x.NarrowLast(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 3, 6, 7}
	for i, v := range want {
		if y.Data[i] != v {
			t.Fatalf("narrow data = %v, want %v", y.Data, want)
		}
	}

	if _, err := x.NarrowLast(3, 2); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestCenterTrim(t *testing.T) {
	x, _ := FromSlice([]float64{0, 1, 2, 3, 4, 5, 6}, 1, 7)

	y, err := x.CenterTrim(3)
	if err != nil {
		t.Fatal(err)
	}
	// Surplus of 4 trims 2 from each end.
	want := []float64{2, 3, 4}
	for i, v := range want {
		if y.Data[i] != v {
			t.Fatalf("trim = %v, want %v", y.Data, want)
		}
	}

	// Odd surplus leaves the extra sample on the back.
	y, err = x.CenterTrim(4)
	if err != nil {
		t.Fatal(err)
	}
	if y.Data[0] != 1 || y.Data[3] != 4 {
		t.Errorf("odd trim = %v, want [1 2 3 4]", y.Data)
	}

	if _, err := x.CenterTrim(8); err == nil {
		t.Error("expected error growing via CenterTrim")
	}
}
