// Package slogx provides slog attribute constructors shared by the broker, the
// worker pool and the command line tools so log keys stay consistent.
package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	KeyLoggerName = "logger"
	KeyError      = "error"
	KeyChannel    = "channel"
	KeyEventType  = "event_type"
	KeyProcess    = "process"
)

// Error renders err under the "error" key. A nil error renders as "<nil>".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "<nil>")
	}
	return slog.String(KeyError, err.Error())
}

// Channel names the channel a log line is about.
func Channel(name string) slog.Attr {
	return slog.String(KeyChannel, name)
}

// EventType names the event type a log line is about.
func EventType(name string) slog.Attr {
	return slog.String(KeyEventType, name)
}

// Process names the application process emitting the line.
func Process(name string) slog.Attr {
	return slog.String(KeyProcess, name)
}

// LoggerName tags the component that owns a logger.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

// ByteString logs a payload as text.
func ByteString(key string, value []byte) slog.Attr {
	return slog.String(key, string(value))
}

// Stringer logs the String form of value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Elapsed logs the time since start, rounded to milliseconds.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start).Round(time.Millisecond))
}
