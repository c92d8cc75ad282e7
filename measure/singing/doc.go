// Package singing scores a sung performance against a reference recording.
//
// A Scorer extracts the pitch track of both recordings and compares them
// with a score.Comparator. It is the single entry point and single
// cancellation point for callers: every failure below it is returned as a
// core.KindAnalysisFailed error with the cause kept in the chain, and a
// cancelled run returns the score of the prefixes collected so far marked
// incomplete.
//
// Persisting results is the caller's concern; a Scorer never writes anything.
package singing
