package audio

import "math"

// Resample converts samples from one rate to another using linear
// interpolation. Good enough for moving between the supported working
// rates; percussive transients survive it fine.
func Resample(samples []float64, fromRate, toRate int) []float64 {
	if fromRate == toRate {
		return samples
	}

	if len(samples) == 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	newLen := int(float64(len(samples)) / ratio)

	if newLen == 0 {
		return []float64{}
	}

	result := make([]float64, newLen)

	for i := 0; i < newLen; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		if srcIdx >= len(samples)-1 {
			result[i] = samples[len(samples)-1]
		} else {
			// Linear interpolation
			s1 := samples[srcIdx]
			s2 := samples[srcIdx+1]
			result[i] = s1 + frac*(s2-s1)
		}
	}

	return result
}

// ResampleBuffer returns a copy of buf at the target rate.
// Returns buf unchanged when the rate already matches.
func ResampleBuffer(buf *SampleBuffer, toRate int) *SampleBuffer {
	if buf.Rate == toRate {
		return buf
	}
	return &SampleBuffer{
		Samples:        Resample(buf.Samples, buf.Rate, toRate),
		Rate:           toRate,
		SourceChannels: buf.SourceChannels,
	}
}

// Normalize scales samples so the peak hits targetPeak.
// Silent input is returned unchanged; re-normalizing normalized audio is
// the identity within floating point tolerance.
func Normalize(samples []float64, targetPeak float64) []float64 {
	var peak float64
	for _, s := range samples {
		if s > peak {
			peak = s
		}
		if -s > peak {
			peak = -s
		}
	}

	if peak == 0 {
		return samples
	}

	scale := targetPeak / peak
	result := make([]float64, len(samples))
	for i, s := range samples {
		result[i] = s * scale
	}
	return result
}

// RMS returns the root mean square level of samples, 0 for empty input.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
