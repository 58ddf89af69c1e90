// Package debug provides conditional debug logging for kb.
//
// Debug logging is enabled by setting the KB_DEBUG environment variable:
//
//	KB_DEBUG=1 kb
//
// When enabled, debug messages are written to stderr (or KB_DEBUG_FILE when
// set, which keeps the terminal UI readable) with timestamps. When disabled
// (default), all debug functions are no-ops.
//
// Usage:
//
//	import "github.com/vanderheijden86/kanboard/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("processing %d items", count)
//	    debug.Logger().WithField("task", id).Debug("moved")
//	}
package debug

import (
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = newLogger()
)

func newLogger() *log.Logger {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	l.SetLevel(log.PanicLevel)
	return l
}

func init() {
	if os.Getenv("KB_DEBUG") == "" {
		return
	}
	if path := os.Getenv("KB_DEBUG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			logger.SetOutput(f)
		}
	}
	SetEnabled(true)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.PanicLevel)
	}
}

// Logger returns the underlying logger for structured fields. Entries below
// panic level are discarded while debug logging is disabled.
func Logger() *log.Logger {
	return logger
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.Debugf(format, args...)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	logger.WithField("elapsed", d).Debugf("%s done", name)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	logger.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		logger.WithField("elapsed", time.Since(start)).Debugf("<- %s", name)
	}
}
