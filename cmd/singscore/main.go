// Command singscore rates how accurately a recording follows the pitch of a
// reference recording.
//
// Usage:
//
//	singscore score [flags] <reference> <user>
//	singscore track [flags] <file>
//	singscore history [flags]
//	singscore config
//
// Examples:
//
//	singscore score song.wav take1.m4a
//	singscore score --tolerance 30 --history -o json song.wav take2.wav
//	singscore track --progress take1.m4a
//	singscore history --reference song.wav
package main

import (
	"os"

	"github.com/cwbudde/algo-singscore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
