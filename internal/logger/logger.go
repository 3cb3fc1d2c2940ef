package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
)

// Level orders log labels from most to least severe.
type Level int32

const (
	LevelFatal Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

var labels = [...]string{
	LevelFatal: "[FATAL] ",
	LevelError: "[ERROR] ",
	LevelWarn:  "[WARN ] ",
	LevelInfo:  "[INFO ] ",
	LevelDebug: "[DEBUG] ",
}

var threshold atomic.Int32

func init() {
	threshold.Store(int32(LevelInfo))
}

// ParseLevel maps a config value such as "warn" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fatal":
		return LevelFatal, nil
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// SetLevel drops messages less severe than the named level.
func SetLevel(s string) error {
	l, err := ParseLevel(s)
	if err != nil {
		return err
	}
	threshold.Store(int32(l))
	return nil
}

// SetOutput redirects the standard logger, which every level writes to.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Enabled reports whether messages at l are written.
func Enabled(l Level) bool {
	return int32(l) <= threshold.Load()
}

// mylog prepends the level string to log.Printf.
// Arguments are handled in the manner of [fmt.Printf].
func mylog(l Level, format string, args ...interface{}) {
	if !Enabled(l) {
		return
	}
	log.Printf(labels[l]+format, args...)
}

// Fatal calls [log.Fatalf], adding a fatal label. It is never filtered.
// Arguments are handled in the manner of [fmt.Printf].
func Fatal(format string, args ...interface{}) {
	log.Fatalf(labels[LevelFatal]+format, args...)
}

// Error prints to the standard logger, adding an error label.
// Arguments are handled in the manner of [fmt.Printf].
func Error(format string, args ...interface{}) {
	mylog(LevelError, format, args...)
}

// Warn prints to the standard logger, adding a warn label.
// Arguments are handled in the manner of [fmt.Printf].
func Warn(format string, args ...interface{}) {
	mylog(LevelWarn, format, args...)
}

// Info prints to the standard logger, adding an info label.
// Arguments are handled in the manner of [fmt.Printf].
func Info(format string, args ...interface{}) {
	mylog(LevelInfo, format, args...)
}

// Debug prints to the standard logger, adding a debug label.
// Arguments are handled in the manner of [fmt.Printf].
func Debug(format string, args ...interface{}) {
	mylog(LevelDebug, format, args...)
}
