package separation

// Band definitions per instrument class. High == 0 means "up to Nyquist".
// The snare band tops out at 4 kHz; callers wanting the narrower 2 kHz
// variant override Config.Bands.
//
// Gains compensate for energy lost to the band split: kicks lose their
// click, hihats sit low in most mixes.
var DefaultBands = map[ClassLabel]FilterSpec{
	ClassKick:  {Class: ClassKick, Topology: Lowpass, High: 150, Gain: 1.5},
	ClassSnare: {Class: ClassSnare, Topology: Bandpass, Low: 150, High: 4000, Gain: 1.0},
	ClassHihat: {Class: ClassHihat, Topology: Highpass, Low: 5000, Gain: 2.0},
	ClassToms:  {Class: ClassToms, Topology: Bandpass, Low: 80, High: 500, Gain: 1.0},
}

// resolveSpec looks up the band for a class and stamps in the preset's
// filter order.
func resolveSpec(bands map[ClassLabel]FilterSpec, class ClassLabel, quality Quality) (FilterSpec, error) {
	if bands == nil {
		bands = DefaultBands
	}
	spec, ok := bands[class]
	if !ok {
		return FilterSpec{}, wrapClassErr(class)
	}
	spec.Order = quality.Order()
	if spec.Gain == 0 {
		spec.Gain = 1.0
	}
	return spec, nil
}
