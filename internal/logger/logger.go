// internal/logger/logger.go

// Package logger is the single diagnostic output of lvdcmon.
package logger

import "log"

// Quiet suppresses Info; Error is always printed.
var Quiet bool

// Info prints an informational line unless Quiet is set.
func Info(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Printf(format, args...)
}

// Error prints an error line.
func Error(format string, args ...interface{}) {
	log.Printf("ERROR: "+format, args...)
}
