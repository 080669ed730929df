// Package logging holds the global zerolog logger for phpswitch.
//
// Commands log human-readable lines to stderr; the watch daemon logs JSON
// to a file so events survive across sessions. Console output from commands
// themselves goes through internal/output, not the logger.
package logging

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance. Defaults to console output at info
// level; Init and InitFile reconfigure it.
var Logger zerolog.Logger

// logFileHandle tracks the current log file so the daemon can close it on
// shutdown.
var logFileHandle *os.File

// logMu guards the global logger state.
var logMu sync.Mutex

func init() {
	Logger = consoleLogger(zerolog.InfoLevel)
}

func consoleLogger(lvl zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

// Init configures console logging on stderr. With debug true the level drops
// to debug so every external command invocation is visible.
func Init(debug bool) {
	logMu.Lock()
	defer logMu.Unlock()

	lvl := zerolog.InfoLevel
	if debug {
		lvl = zerolog.DebugLevel
	}
	Logger = consoleLogger(lvl)
}

// InitFile switches logging to JSON lines appended to the given file. Used
// by the watch daemon, whose stderr is detached from any terminal.
func InitFile(path string, debug bool) error {
	logMu.Lock()
	defer logMu.Unlock()

	lvl := zerolog.InfoLevel
	if debug {
		lvl = zerolog.DebugLevel
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	closeFileLocked()
	logFileHandle = file
	Logger = zerolog.New(file).Level(lvl).With().Timestamp().Logger()

	return nil
}

// Close closes the log file, if one is open, and falls back to console
// logging at the current level.
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	closeFileLocked()
}

// closeFileLocked closes the log file and resets the logger. Must be called
// with logMu held.
func closeFileLocked() {
	if logFileHandle != nil {
		_ = logFileHandle.Close()
		logFileHandle = nil
		Logger = consoleLogger(Logger.GetLevel())
	}
}
