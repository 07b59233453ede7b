// Package logger provides the loggers of the example drivers and the benchmark runner.
package logger

import (
	"io"
	"log"
	"os"
)

// New returns a logger writing to stdout with UTC timestamps.
func New(prefix string) *log.Logger {
	return NewWithWriter(os.Stdout, prefix)
}

// NewWithWriter returns a logger writing to w with UTC timestamps.
func NewWithWriter(w io.Writer, prefix string) *log.Logger {
	return log.New(w, prefix, log.LstdFlags|log.LUTC)
}
