// Package track drives a window source and a YIN estimator across a whole
// recording and produces its pitch sequence.
//
// Only voiced windows are kept, in stream order. Progress is reported as an
// integer percentage every few windows and always ends with an explicit 100
// on a completed run. Cancellation is cooperative: the context is checked
// between windows and a cancelled run returns the prefix collected so far,
// marked incomplete, without an error.
//
// # Usage
//
//	x, err := track.NewExtractor(core.DefaultAnalysisConfig())
//	src, err := x.NewSource(pcmReader)
//	tr, err := x.Extract(ctx, src, durationMs, func(p int) { fmt.Println(p) })
//	fmt.Println(tr.Sequence.Len(), tr.Complete)
package track
