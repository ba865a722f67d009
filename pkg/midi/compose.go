// Package midi turns per-stem onset events into a General MIDI drum
// transcription and writes it as a Standard MIDI File.
//
// All notes land on channel 10 (index 9) using the GM percussion map.
package midi

import (
	"math"
	"sort"

	"github.com/drum2midi/drum2midi/pkg/onset"
	"github.com/drum2midi/drum2midi/pkg/separation"
)

// GM channel-10 note numbers.
const (
	KeyKick        uint8 = 36 // Bass Drum 1
	KeySnare       uint8 = 38 // Acoustic Snare
	KeyClosedHihat uint8 = 42 // Closed Hi-Hat
	KeyOpenHihat   uint8 = 46 // Open Hi-Hat
	KeyLowTom      uint8 = 45 // Low Tom
	KeyMidTom      uint8 = 47 // Mid Tom
	KeyHighTom     uint8 = 50 // High Tom
	KeyCrash       uint8 = 49 // Crash Cymbal 1
	KeyRide        uint8 = 51 // Ride Cymbal 1
)

// DrumChannel is the zero-indexed GM percussion channel (channel 10).
const DrumChannel uint8 = 9

// NoteDurationBeats is the fixed length of every drum hit.
const NoteDurationBeats = 0.1

// DrumMap maps instrument classes to their GM note. The hihat class maps
// to the closed hat and toms to the low tom; the open hat and the other
// tom keys stay available for callers that split those classes further.
var DrumMap = map[separation.ClassLabel]uint8{
	separation.ClassKick:  KeyKick,
	separation.ClassSnare: KeySnare,
	separation.ClassHihat: KeyClosedHihat,
	separation.ClassToms:  KeyLowTom,
}

// classPriority fixes the tie-break order for notes starting on the same
// beat: kick < snare < toms < hihat. Arbitrary but stable.
var classPriority = map[separation.ClassLabel]int{
	separation.ClassKick:  0,
	separation.ClassSnare: 1,
	separation.ClassToms:  2,
	separation.ClassHihat: 3,
}

// NoteEvent is one drum hit in beat time.
type NoteEvent struct {
	Key           uint8
	Velocity      uint8
	StartBeats    float64
	DurationBeats float64
	Class         separation.ClassLabel
}

// Velocity maps onset strength in [0, 1] to MIDI velocity in [1, 127].
// Monotonic and saturating: out-of-range strengths clamp first.
func Velocity(strength float64) uint8 {
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	return uint8(math.Round(strength*126)) + 1
}

// Compose merges per-class onset events into a single note list in
// non-decreasing start order. Onset times in seconds convert to beats via
// bpm; same-beat collisions order by class priority. Classes without a
// drum mapping are skipped.
func Compose(perClass map[separation.ClassLabel][]onset.Event, bpm float64) []NoteEvent {
	if bpm <= 0 {
		return nil
	}

	var notes []NoteEvent
	for class, events := range perClass {
		key, ok := DrumMap[class]
		if !ok {
			continue
		}
		for _, ev := range events {
			notes = append(notes, NoteEvent{
				Key:           key,
				Velocity:      Velocity(ev.Strength),
				StartBeats:    ev.Time * bpm / 60.0,
				DurationBeats: NoteDurationBeats,
				Class:         class,
			})
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].StartBeats != notes[j].StartBeats {
			return notes[i].StartBeats < notes[j].StartBeats
		}
		return classPriority[notes[i].Class] < classPriority[notes[j].Class]
	})
	return notes
}
