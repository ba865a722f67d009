package midi

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the SMF time resolution.
const TicksPerQuarter = 960

// WriteFile writes notes to a single-track Standard MIDI File at path,
// with a tempo meta event at tick zero and all notes on the drum channel.
// Parent directories are created as needed.
func WriteFile(path string, notes []NoteEvent, bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("midi: bpm must be positive, got %g", bpm)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("midi: create output dir: %w", err)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(bpm))

	var prevTick uint32
	for _, ev := range timeline(notes) {
		delta := ev.tick - prevTick
		prevTick = ev.tick
		if ev.on {
			tr.Add(delta, gomidi.NoteOn(DrumChannel, ev.key, ev.velocity))
		} else {
			tr.Add(delta, gomidi.NoteOff(DrumChannel, ev.key))
		}
	}
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		return fmt.Errorf("midi: add track: %w", err)
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("midi: write %s: %w", path, err)
	}
	return nil
}

type tickEvent struct {
	tick     uint32
	on       bool
	key      uint8
	velocity uint8
}

// timeline expands notes into absolute-tick on/off events, offs ahead of
// ons at the same tick so a re-hit key is released before it retriggers.
func timeline(notes []NoteEvent) []tickEvent {
	events := make([]tickEvent, 0, len(notes)*2)
	for _, n := range notes {
		start := beatsToTicks(n.StartBeats)
		dur := n.DurationBeats
		if dur <= 0 {
			dur = NoteDurationBeats
		}
		end := beatsToTicks(n.StartBeats + dur)
		if end <= start {
			end = start + 1
		}
		events = append(events,
			tickEvent{tick: start, on: true, key: n.Key, velocity: n.Velocity},
			tickEvent{tick: end, on: false, key: n.Key},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})
	return events
}

func beatsToTicks(beats float64) uint32 {
	if beats < 0 {
		return 0
	}
	return uint32(beats*TicksPerQuarter + 0.5)
}
