// Package rlog provides the process-wide diagnostic logger.
//
// Verbose output is discarded by default; SetVerbose(true) routes it to
// stderr alongside the always-on warning/error logger. This mirrors the
// teacher's toggle in server/logging.go: debug noise is free until asked
// for, but boot/error messages are never silently dropped.
package rlog

import (
	"io"
	"log"
	"os"
)

var (
	// Warn logs are always emitted.
	Warn = log.New(os.Stderr, "rrwm: ", log.LstdFlags)
	// Debug logs are discarded unless SetVerbose(true).
	Debug = log.New(io.Discard, "rrwm[debug]: ", log.LstdFlags)
)

// SetVerbose toggles debug-level logging.
func SetVerbose(enable bool) {
	if enable {
		Debug.SetOutput(os.Stderr)
	} else {
		Debug.SetOutput(io.Discard)
	}
}
