package score

import (
	"math"

	"github.com/cwbudde/algo-singscore/dsp/core"
	"github.com/cwbudde/algo-singscore/dsp/pitch"
)

// Result is the outcome of one comparison.
type Result struct {
	// Accuracy is Matches/Compared in [0, 1], or 0 when nothing was compared.
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
	// Score is Accuracy scaled to an integer percentage in [0, 100].
	Score int `json:"score" yaml:"score"`
	// Compared is the number of index pairs examined.
	Compared int `json:"compared" yaml:"compared"`
	// Matches is the number of pairs within tolerance.
	Matches int `json:"matches" yaml:"matches"`
}

// Comparator rates a user sequence against a reference sequence.
type Comparator interface {
	Compare(reference, user pitch.Sequence) (Result, error)
}

// IndexAligned pairs estimates by position and counts a pair as a match when
// the frequencies differ by at most ToleranceHz.
type IndexAligned struct {
	toleranceHz float64
}

// NewIndexAligned returns an IndexAligned comparator. toleranceHz must be
// finite and non-negative.
func NewIndexAligned(toleranceHz float64) (*IndexAligned, error) {
	if toleranceHz < 0 || math.IsNaN(toleranceHz) || math.IsInf(toleranceHz, 0) {
		return nil, core.Errorf(core.KindInvalidConfiguration, "score.new",
			"tolerance must be finite and >= 0: %v", toleranceHz)
	}
	return &IndexAligned{toleranceHz: toleranceHz}, nil
}

// ToleranceHz returns the match tolerance.
func (c *IndexAligned) ToleranceHz() float64 { return c.toleranceHz }

// Compare implements Comparator. An empty sequence on either side yields a
// zero result, not an error. Sequences produced at different sample rates
// are rejected with a KindSampleRateMismatch error.
func (c *IndexAligned) Compare(reference, user pitch.Sequence) (Result, error) {
	if reference.SampleRate() != user.SampleRate() {
		return Result{}, core.Errorf(core.KindSampleRateMismatch, "score.compare",
			"reference at %d Hz, user at %d Hz", reference.SampleRate(), user.SampleRate())
	}

	n := min(reference.Len(), user.Len())
	if n == 0 {
		return Result{}, nil
	}

	matches := 0
	for i := 0; i < n; i++ {
		if math.Abs(reference.At(i).FrequencyHz-user.At(i).FrequencyHz) <= c.toleranceHz {
			matches++
		}
	}
	return newResult(matches, n), nil
}

func newResult(matches, compared int) Result {
	acc := core.Clamp(float64(matches)/float64(compared), 0, 1)
	return Result{
		Accuracy: acc,
		Score:    core.ClampInt(int(math.Round(acc*100)), 0, 100),
		Compared: compared,
		Matches:  matches,
	}
}
