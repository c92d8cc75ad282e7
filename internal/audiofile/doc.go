// Package audiofile turns audio files into the raw 16-bit mono PCM stream
// the analysis pipeline consumes.
//
// Mono 16-bit PCM WAV files are parsed with go-audio/wav and their data
// chunk is streamed as is. Every other input is piped through an ffmpeg
// process that resamples and downmixes to s16le.
package audiofile
