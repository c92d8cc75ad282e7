// Package score compares two pitch sequences and rates how closely they agree.
//
// The only comparator shipped is IndexAligned: the i-th voiced estimate of the
// reference is paired with the i-th voiced estimate of the user recording,
// with no time alignment. Other strategies (for example dynamic time warping)
// plug in behind the Comparator interface without touching extraction.
package score
