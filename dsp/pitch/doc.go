// Package pitch estimates the fundamental frequency of short PCM windows
// with the YIN algorithm.
//
// Included pieces:
//   - Estimator: reusable YIN estimator with scratch buffers.
//   - EstimateYIN: allocation-per-call pure form of the same estimate.
//   - DifferenceDirect / FFTDifference: the two interchangeable backends of
//     the YIN squared-difference function.
//   - Sequence: the immutable, ordered result of analyzing one recording.
//
// Reference: A. de Cheveigné, H. Kawahara, "YIN, a fundamental frequency
// estimator for speech and music", JASA 111(4), 2002.
package pitch
