package pitch

import (
	"math"
	"strconv"
)

const referenceA4 = 440.0

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the nearest equal-tempered note (A4 = 440 Hz) and the
// deviation from it in cents. Non-positive or non-finite input returns "".
func NoteName(freqHz float64) (name string, cents float64) {
	if freqHz <= 0 || math.IsInf(freqHz, 0) || math.IsNaN(freqHz) {
		return "", 0
	}

	semis := 12 * math.Log2(freqHz/referenceA4)
	nearest := math.Round(semis)
	cents = 100 * (semis - nearest)

	midi := int(nearest) + 69
	idx := ((midi % 12) + 12) % 12
	octave := midi/12 - 1
	if midi < 0 && midi%12 != 0 {
		octave--
	}
	return noteNames[idx] + strconv.Itoa(octave), cents
}
