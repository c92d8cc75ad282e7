// Package pcm turns a raw byte stream of mono 16-bit little-endian linear PCM
// into a lazy sequence of fixed-length, possibly overlapping analysis windows.
//
// Samples are normalized to [-1, 1) on decode. The trailing samples that do
// not fill a whole window are discarded, never zero-padded.
package pcm
