// Package buffer provides the reusable float64 storage behind PCM analysis
// windows. A frame source draws one Buffer per window from a Pool and the
// analysis loop hands it back once the window has been estimated, so a long
// recording is processed with a bounded number of live allocations.
package buffer
