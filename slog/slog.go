// Package slog provides a small leveled logging interface. It defaults to the
// log package of the standard library, but other backends can be plugged in
// with Set. The minimum emitted level is configurable, which is how the
// exporter's "level" setting is honored.
package slog

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Level is a log severity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel converts a config string such as "DEBUG" or "warning" into a
// Level. Unrecognized strings return LevelInfo and an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("slog: unknown level %q", s)
}

type Logger interface {
	Debug(v string)
	Info(v string)
	Warning(v string)
	Error(v string)
	Fatal(v string)
}

type stdLog struct {
	log *log.Logger
}

func (s *stdLog) Debug(v string)   { s.log.Println("debug:", rmNl(v)) }
func (s *stdLog) Info(v string)    { s.log.Println("info:", rmNl(v)) }
func (s *stdLog) Warning(v string) { s.log.Println("warning:", rmNl(v)) }
func (s *stdLog) Error(v string)   { s.log.Println("error:", rmNl(v)) }
func (s *stdLog) Fatal(v string)   { s.log.Fatalln("fatal:", rmNl(v)) }

func rmNl(v string) string {
	return strings.TrimSuffix(v, "\n")
}

var (
	logging  Logger = &stdLog{log: log.New(os.Stderr, "", log.LstdFlags)}
	minLevel        = LevelInfo
)

// Set replaces the logging backend.
func Set(l Logger) {
	logging = l
}

// SetLevel sets the minimum level that will be emitted.
func SetLevel(l Level) {
	minLevel = l
}

func Debug(v ...interface{}) {
	if minLevel <= LevelDebug {
		output(logging.Debug, v...)
	}
}

func Debugf(format string, v ...interface{}) {
	if minLevel <= LevelDebug {
		outputf(logging.Debug, format, v...)
	}
}

func Info(v ...interface{}) {
	if minLevel <= LevelInfo {
		output(logging.Info, v...)
	}
}

func Infof(format string, v ...interface{}) {
	if minLevel <= LevelInfo {
		outputf(logging.Info, format, v...)
	}
}

func Warning(v ...interface{}) {
	if minLevel <= LevelWarning {
		output(logging.Warning, v...)
	}
}

func Warningf(format string, v ...interface{}) {
	if minLevel <= LevelWarning {
		outputf(logging.Warning, format, v...)
	}
}

func Error(v ...interface{}) {
	if minLevel <= LevelError {
		output(logging.Error, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if minLevel <= LevelError {
		outputf(logging.Error, format, v...)
	}
}

func Fatal(v ...interface{}) {
	output(logging.Fatal, v...)
	// Call os.Exit here just in case the logging backend doesn't.
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	outputf(logging.Fatal, format, v...)
	os.Exit(1)
}

func output(f func(string), v ...interface{}) {
	f(fmt.Sprint(v...))
}

func outputf(f func(string), format string, v ...interface{}) {
	output(f, fmt.Sprintf(format, v...))
}
