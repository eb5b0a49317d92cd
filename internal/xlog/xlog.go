// Package xlog wraps the standard library logger the way the teacher's
// cmd binaries configure one *log.Logger per subsystem, instead of
// reaching for a structured-logging dependency the corpus never uses.
package xlog

import (
	"io"
	"log"
	"os"
)

// Logger is a subsystem-prefixed wrapper around *log.Logger.
type Logger struct {
	l *log.Logger
}

// New creates a Logger writing to w (os.Stderr when w is nil) with the
// given subsystem tag as its prefix, e.g. New(nil, "locator").
func New(w io.Writer, subsystem string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{l: log.New(w, "["+subsystem+"] ", log.LstdFlags|log.Lmicroseconds)}
}

func (lg *Logger) Printf(format string, args ...any) { lg.l.Printf(format, args...) }
func (lg *Logger) Println(args ...any)                { lg.l.Println(args...) }

// Default subsystem loggers, created once at package initialisation;
// mirrors the teacher's package-level `var log = log.New(...)`.
var (
	Locator    = New(nil, "locator")
	NASearch   = New(nil, "na")
	TravelTime = New(nil, "ttime")
	PhaseID    = New(nil, "phaseid")
	Inversion  = New(nil, "inversion")
)
