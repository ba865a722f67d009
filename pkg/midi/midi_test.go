package midi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/drum2midi/drum2midi/pkg/onset"
	"github.com/drum2midi/drum2midi/pkg/separation"
)

func TestVelocity_Bounds(t *testing.T) {
	cases := []struct {
		strength float64
		want     uint8
	}{
		{0, 1},
		{1, 127},
		{-0.5, 1},
		{2.0, 127},
		{0.5, 64},
	}
	for _, tc := range cases {
		if got := Velocity(tc.strength); got != tc.want {
			t.Errorf("Velocity(%g) = %d, want %d", tc.strength, got, tc.want)
		}
	}
}

func TestVelocity_Monotonic(t *testing.T) {
	prev := Velocity(0)
	for s := 0.01; s <= 1.0; s += 0.01 {
		v := Velocity(s)
		if v < prev {
			t.Fatalf("velocity dropped from %d to %d at strength %g", prev, v, s)
		}
		prev = v
	}
}

func TestCompose_MergesAndSorts(t *testing.T) {
	perClass := map[separation.ClassLabel][]onset.Event{
		separation.ClassKick:  {{Time: 0.0, Strength: 0.9}, {Time: 1.0, Strength: 0.8}},
		separation.ClassSnare: {{Time: 0.5, Strength: 0.7}},
		separation.ClassHihat: {{Time: 0.25, Strength: 0.4}, {Time: 0.75, Strength: 0.4}},
	}

	notes := Compose(perClass, 120)
	require.Len(t, notes, 5)

	for i := 1; i < len(notes); i++ {
		assert.GreaterOrEqual(t, notes[i].StartBeats, notes[i-1].StartBeats,
			"notes must come back in non-decreasing start order")
	}

	// 120 BPM: 0.5 s is one beat.
	assert.Equal(t, KeyKick, notes[0].Key)
	assert.InDelta(t, 0.0, notes[0].StartBeats, 1e-9)
	assert.Equal(t, KeyClosedHihat, notes[1].Key)
	assert.InDelta(t, 0.5, notes[1].StartBeats, 1e-9)
	assert.Equal(t, KeySnare, notes[2].Key)
	assert.InDelta(t, 1.0, notes[2].StartBeats, 1e-9)
}

func TestCompose_TiePriority(t *testing.T) {
	// All four classes hit at the same instant.
	perClass := map[separation.ClassLabel][]onset.Event{
		separation.ClassHihat: {{Time: 1.0, Strength: 0.5}},
		separation.ClassToms:  {{Time: 1.0, Strength: 0.5}},
		separation.ClassKick:  {{Time: 1.0, Strength: 0.5}},
		separation.ClassSnare: {{Time: 1.0, Strength: 0.5}},
	}

	notes := Compose(perClass, 120)
	require.Len(t, notes, 4)

	want := []uint8{KeyKick, KeySnare, KeyLowTom, KeyClosedHihat}
	for i, key := range want {
		assert.Equal(t, key, notes[i].Key, "tie order position %d", i)
	}
}

func TestCompose_SkipsUnmappedClass(t *testing.T) {
	perClass := map[separation.ClassLabel][]onset.Event{
		separation.ClassKick: {{Time: 0.5, Strength: 0.5}},
		"cowbell":            {{Time: 0.5, Strength: 0.5}},
	}
	notes := Compose(perClass, 120)
	require.Len(t, notes, 1)
	assert.Equal(t, KeyKick, notes[0].Key)
}

func TestCompose_NoTempo(t *testing.T) {
	perClass := map[separation.ClassLabel][]onset.Event{
		separation.ClassKick: {{Time: 0.5, Strength: 0.5}},
	}
	assert.Nil(t, Compose(perClass, 0))
}

func TestCompose_EmptyInput(t *testing.T) {
	assert.Empty(t, Compose(nil, 120))
	assert.Empty(t, Compose(map[separation.ClassLabel][]onset.Event{}, 120))
}

func TestWriteFile_RoundTrip(t *testing.T) {
	notes := []NoteEvent{
		{Key: KeyKick, Velocity: 100, StartBeats: 0, DurationBeats: 0.1, Class: separation.ClassKick},
		{Key: KeySnare, Velocity: 80, StartBeats: 1, DurationBeats: 0.1, Class: separation.ClassSnare},
		{Key: KeyClosedHihat, Velocity: 60, StartBeats: 1.5, DurationBeats: 0.1, Class: separation.ClassHihat},
	}

	path := filepath.Join(t.TempDir(), "drums.mid")
	require.NoError(t, WriteFile(path, notes, 128))

	data, err := smf.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data.Tracks, 1)

	var (
		gotTempo float64
		ons      int
		offs     int
	)
	for _, ev := range data.Tracks[0] {
		msg := ev.Message
		var bpm float64
		if msg.GetMetaTempo(&bpm) {
			gotTempo = bpm
		}
		var ch, key, vel uint8
		if msg.GetNoteStart(&ch, &key, &vel) {
			ons++
			assert.Equal(t, DrumChannel, ch, "all notes belong on the drum channel")
		}
		if msg.GetNoteEnd(&ch, &key) {
			offs++
		}
	}

	assert.InDelta(t, 128.0, gotTempo, 0.01)
	assert.Equal(t, len(notes), ons)
	assert.Equal(t, len(notes), offs)
}

func TestWriteFile_EmptyNotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mid")
	require.NoError(t, WriteFile(path, nil, 120))

	data, err := smf.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data.Tracks, 1)

	var gotTempo float64
	for _, ev := range data.Tracks[0] {
		var bpm float64
		if ev.Message.GetMetaTempo(&bpm) {
			gotTempo = bpm
		}
		var ch, key, vel uint8
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			t.Fatal("empty transcription must carry no notes")
		}
	}
	assert.InDelta(t, 120.0, gotTempo, 0.01)
}

func TestWriteFile_InvalidBPM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mid")
	require.Error(t, WriteFile(path, nil, 0))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file should be written on error")
}

func TestWriteFile_CreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "drums.mid")
	require.NoError(t, WriteFile(path, nil, 120))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestTimeline_OffBeforeOnAtSameTick(t *testing.T) {
	// Back-to-back hits on the same key: the first release must precede
	// the second strike when they share a tick.
	notes := []NoteEvent{
		{Key: KeyKick, Velocity: 100, StartBeats: 0, DurationBeats: 0.5},
		{Key: KeyKick, Velocity: 100, StartBeats: 0.5, DurationBeats: 0.5},
	}
	events := timeline(notes)
	require.Len(t, events, 4)

	boundary := beatsToTicks(0.5)
	assert.Equal(t, boundary, events[1].tick)
	assert.False(t, events[1].on, "note off should come first at the shared tick")
	assert.Equal(t, boundary, events[2].tick)
	assert.True(t, events[2].on)
}

func TestTimeline_ZeroDurationGetsMinimumLength(t *testing.T) {
	notes := []NoteEvent{{Key: KeySnare, Velocity: 90, StartBeats: 2, DurationBeats: 0}}
	events := timeline(notes)
	require.Len(t, events, 2)
	assert.Greater(t, events[1].tick, events[0].tick)
}

func TestBeatsToTicks(t *testing.T) {
	if got := beatsToTicks(1); got != TicksPerQuarter {
		t.Errorf("one beat = %d ticks, want %d", got, TicksPerQuarter)
	}
	if got := beatsToTicks(-1); got != 0 {
		t.Errorf("negative beats should clamp to 0, got %d", got)
	}
	if got := beatsToTicks(0.25); got != TicksPerQuarter/4 {
		t.Errorf("quarter beat = %d ticks, want %d", got, TicksPerQuarter/4)
	}
}
