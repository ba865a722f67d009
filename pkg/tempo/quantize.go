package tempo

import (
	"math"

	"github.com/drum2midi/drum2midi/pkg/onset"
)

// GridDivision is the quantize grid resolution: 16 means 16th notes.
const GridDivision = 16

// Quantize snaps event times toward the nearest 1/16-note grid position
// for the given BPM. strength blends between the original time (0) and the
// grid time (1). Event order is preserved: an event that quantization
// would push onto or before its predecessor is nudged one sample epsilon
// after it instead.
//
// The input slice is not modified.
func Quantize(events []onset.Event, bpm, strength float64, sampleRate int) []onset.Event {
	out := make([]onset.Event, len(events))
	copy(out, events)

	if len(out) == 0 || bpm <= 0 || strength <= 0 {
		return out
	}
	if strength > 1 {
		strength = 1
	}

	beat := 60.0 / bpm
	grid := beat / (GridDivision / 4)

	eps := 1.0 / float64(sampleRate)
	if sampleRate <= 0 {
		eps = 1e-6
	}

	for i := range out {
		t := out[i].Time
		snapped := math.Round(t/grid) * grid
		out[i].Time = t + strength*(snapped-t)

		if i > 0 && out[i].Time <= out[i-1].Time {
			out[i].Time = out[i-1].Time + eps
		}
	}
	return out
}
