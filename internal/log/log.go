// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package log provides logging utilities for the tracer.
package log

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/DataDog/batchtrace-go/internal/version"
)

// Level specifies the logging level that the log package prints at.
type Level int

const (
	// LevelDebug represents debug level messages.
	LevelDebug Level = iota
	// LevelInfo represents informational messages.
	LevelInfo
	// LevelWarn represents warning level messages.
	LevelWarn
	// LevelError represents error level messages.
	LevelError
)

var prefixMsg = fmt.Sprintf("Datadog Tracer %s", version.Tag)

var (
	mu             sync.RWMutex // guards below fields
	levelThreshold = LevelWarn
	logger         Logger = &defaultLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
)

// Logger implementations are able to log given messages that the tracer might
// output.
type Logger interface {
	// Log prints the given message.
	Log(msg string)
}

// UseLogger sets l as the active logger.
func UseLogger(l Logger) {
	Flush()
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// SetLevel sets the given lvl as the threshold for logging.
func SetLevel(lvl Level) {
	mu.Lock()
	defer mu.Unlock()
	levelThreshold = lvl
}

// DebugEnabled returns true if debug log messages are enabled.
func DebugEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return levelThreshold == LevelDebug
}

// Debug prints the given message if the level is LevelDebug.
func Debug(format string, a ...interface{}) {
	if !DebugEnabled() {
		return
	}
	printMsg("DEBUG", format, a...)
}

// Info prints an informational message.
func Info(format string, a ...interface{}) {
	mu.RLock()
	enabled := levelThreshold <= LevelInfo
	mu.RUnlock()
	if !enabled {
		return
	}
	printMsg("INFO", format, a...)
}

// Warn prints a warning message.
func Warn(format string, a ...interface{}) {
	printMsg("WARN", format, a...)
}

var (
	errmu          sync.Mutex // guards below fields
	erragg         = map[string]*errorReport{}
	errrate        = time.Minute
	erragged       bool // true if a flush is scheduled
	defaultErrorLimit uint64 = 200
)

type errorReport struct {
	first string // first error message
	count uint64
}

// Error reports an error. Errors get aggregated and logged periodically, once
// per flush window, so that a spammy caller cannot flood the output.
func Error(format string, a ...interface{}) {
	key := format // format should 99.9% of the time be constant
	if reachedLimit(key) {
		// avoid too much lock contention on spammy errors
		return
	}
	errmu.Lock()
	defer errmu.Unlock()
	report, ok := erragg[key]
	if !ok {
		erragg[key] = &errorReport{first: fmt.Sprintf(format, a...)}
		report = erragg[key]
	}
	report.count++
	if errrate == 0 {
		flushLocked()
		return
	}
	if !erragged {
		erragged = true
		time.AfterFunc(errrate, Flush)
	}
}

func reachedLimit(key string) bool {
	errmu.Lock()
	defer errmu.Unlock()
	report, ok := erragg[key]
	return ok && report.count > defaultErrorLimit
}

// Flush flushes and resets all aggregated errors to the logger.
func Flush() {
	errmu.Lock()
	defer errmu.Unlock()
	flushLocked()
}

func flushLocked() {
	for _, report := range erragg {
		msg := report.first
		if n := report.count; n > defaultErrorLimit {
			msg = fmt.Sprintf("%s, %d+ additional messages skipped", msg, defaultErrorLimit)
		} else if n > 1 {
			msg = fmt.Sprintf("%s, %d additional messages skipped", msg, n-1)
		}
		printMsg("ERROR", "%s", msg)
	}
	for k := range erragg {
		delete(erragg, k)
	}
	erragged = false
}

func printMsg(lvl, format string, a ...interface{}) {
	msg := fmt.Sprintf("%s %s: %s", prefixMsg, lvl, fmt.Sprintf(format, a...))
	mu.RLock()
	logger.Log(msg)
	mu.RUnlock()
}

type defaultLogger struct{ l *log.Logger }

var _ Logger = &defaultLogger{}

func (p *defaultLogger) Log(msg string) { p.l.Print(msg) }
