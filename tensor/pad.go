package tensor

// PadMode selects how Pad1D fills the new samples.
type PadMode string

const (
	// PadConstant zero-fills the padded region.
	PadConstant PadMode = "constant"
	// PadReflect mirrors the signal around its first and last sample
	// without repeating the edge sample itself.
	PadReflect PadMode = "reflect"
)

// Pad1D pads the trailing dimension of t by left and right samples,
// independently for every outer slice.
//
// Reflect padding follows the discrete mirror convention where the i-th
// left-padded sample is data[left-i] and the i-th right-padded sample is
// data[length-2-i]. When a requested reflect pad would read past the buffer
// (pad > length-1), the data is first zero-extended by the minimum deficit
// and the remaining, smaller pad is reflected off the extended signal. The
// two-pass scheme keeps very short inputs well defined.
func Pad1D(t *Tensor, left, right int, mode PadMode) (*Tensor, error) {
	if left < 0 || right < 0 {
		return nil, &RangeError{Op: "tensor.Pad1D", Offset: left, Length: right, Bound: t.Dim(-1)}
	}
	switch mode {
	case PadConstant:
		return padConstant(t, left, right), nil
	case PadReflect:
	default:
		return nil, &SizeError{Op: "tensor.Pad1D", Size: 0, Want: "mode constant or reflect"}
	}

	length := t.Dim(-1)
	maxPad := max(left, right)
	if length <= maxPad {
		extra := maxPad - length + 1
		extraRight := min(right, extra)
		extraLeft := extra - extraRight
		t = padConstant(t, extraLeft, extraRight)
		left -= extraLeft
		right -= extraRight
	}
	return padReflect(t, left, right), nil
}

func padConstant(t *Tensor, left, right int) *Tensor {
	inner := t.Dim(-1)
	outLen := left + inner + right
	shape := append([]int(nil), t.Shape...)
	shape[len(shape)-1] = outLen
	out := New(shape...)
	for o := 0; o < t.Outer(); o++ {
		copy(out.Data[o*outLen+left:o*outLen+left+inner], t.Data[o*inner:(o+1)*inner])
	}
	return out
}

func padReflect(t *Tensor, left, right int) *Tensor {
	inner := t.Dim(-1)
	outLen := left + inner + right
	shape := append([]int(nil), t.Shape...)
	shape[len(shape)-1] = outLen
	out := New(shape...)
	for o := 0; o < t.Outer(); o++ {
		src := t.Data[o*inner : (o+1)*inner]
		dst := out.Data[o*outLen : (o+1)*outLen]
		copy(dst[left:left+inner], src)
		for i := 0; i < left; i++ {
			dst[left-1-i] = src[i+1]
		}
		for i := 0; i < right; i++ {
			dst[left+inner+i] = src[inner-2-i]
		}
	}
	return out
}
