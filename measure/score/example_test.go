package score_test

import (
	"fmt"

	"github.com/cwbudde/algo-singscore/dsp/pitch"
	"github.com/cwbudde/algo-singscore/measure/score"
)

func ExampleIndexAligned_Compare() {
	voiced := func(freqs ...float64) pitch.Sequence {
		es := make([]pitch.Estimate, len(freqs))
		for i, f := range freqs {
			es[i] = pitch.Estimate{FrequencyHz: f, Voiced: true}
		}
		return pitch.NewSequence(44100, es)
	}

	reference := voiced(262, 294, 330, 349)
	user := voiced(270, 290, 420, 351, 392)

	c, err := score.NewIndexAligned(50)
	if err != nil {
		panic(err)
	}
	res, err := c.Compare(reference, user)
	if err != nil {
		panic(err)
	}
	fmt.Printf("matches=%d/%d accuracy=%.2f score=%d\n", res.Matches, res.Compared, res.Accuracy, res.Score)
	// Output:
	// matches=3/4 accuracy=0.75 score=75
}
