package pitch

// Estimate is the pitch of one window. FrequencyHz is meaningful only when
// Voiced is true; unvoiced windows keep FrequencyHz at 0.
type Estimate struct {
	FrequencyHz float64
	Voiced      bool
	// Confidence is 1 minus the normalized difference at the selected lag,
	// 0 for unvoiced windows.
	Confidence float64
}

// Unvoiced is the estimate of a window without a detectable period.
var Unvoiced = Estimate{}

// Sequence is the ordered list of estimates produced for one recording.
// It is never mutated after construction.
type Sequence struct {
	sampleRate int
	estimates  []Estimate
}

// NewSequence copies estimates into a Sequence analyzed at sampleRate.
func NewSequence(sampleRate int, estimates []Estimate) Sequence {
	cp := make([]Estimate, len(estimates))
	copy(cp, estimates)
	return Sequence{sampleRate: sampleRate, estimates: cp}
}

// SampleRate returns the sample rate the sequence was analyzed at.
func (s Sequence) SampleRate() int { return s.sampleRate }

// Len returns the number of estimates.
func (s Sequence) Len() int { return len(s.estimates) }

// At returns the i-th estimate in analysis order.
func (s Sequence) At(i int) Estimate { return s.estimates[i] }

// Estimates returns a copy of all estimates.
func (s Sequence) Estimates() []Estimate {
	cp := make([]Estimate, len(s.estimates))
	copy(cp, s.estimates)
	return cp
}

// Frequencies returns the frequency of every estimate in order.
func (s Sequence) Frequencies() []float64 {
	out := make([]float64, len(s.estimates))
	for i, e := range s.estimates {
		out[i] = e.FrequencyHz
	}
	return out
}
