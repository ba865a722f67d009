package dsp

// ZeroPhase applies a biquad cascade forward then backward, giving a
// zero-phase response with doubled effective rolloff. The input is extended
// at both ends with odd reflections of itself before filtering, so the
// filter state settles outside the region that is kept: no start/end
// transient leaks into the output.
//
// The output has exactly the same length as the input. Input shorter than
// the padding is still processed, just with proportionally less padding.
func ZeroPhase(sections []Biquad, x []float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}
	if len(sections) == 0 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}

	pad := 3 * (2*len(sections) + 1)
	if pad > len(x)-1 {
		pad = len(x) - 1
	}

	ext := oddReflect(x, pad)

	for _, bq := range sections {
		ext = bq.Apply(ext)
	}
	reverse(ext)
	for _, bq := range sections {
		ext = bq.Apply(ext)
	}
	reverse(ext)

	return ext[pad : pad+len(x)]
}

// oddReflect extends x by pad samples on each side with point-reflected
// copies (2*edge - sample), the same edge handling scipy's filtfilt uses.
func oddReflect(x []float64, pad int) []float64 {
	ext := make([]float64, pad+len(x)+pad)
	for i := 0; i < pad; i++ {
		ext[i] = 2*x[0] - x[pad-i]
	}
	copy(ext[pad:], x)
	last := len(x) - 1
	for i := 0; i < pad; i++ {
		ext[pad+len(x)+i] = 2*x[last] - x[last-1-i]
	}
	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
