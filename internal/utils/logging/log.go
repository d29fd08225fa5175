// Package logging provides leveled console logging with a structured file sink.
package logging

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"coursarr/internal/domain/consts"

	"github.com/rs/zerolog"
)

var (
	loggable bool
	fileLog  zerolog.Logger
	logFile  *os.File
	setupMu  sync.Mutex
)

// Regular expression to match ANSI escape codes
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// SetupLogging creates and/or opens the structured log file inside targetDir.
func SetupLogging(targetDir string) error {
	setupMu.Lock()
	defer setupMu.Unlock()

	f, err := os.OpenFile(filepath.Join(targetDir, consts.LogFileName),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	logFile = f
	fileLog = zerolog.New(f).With().Timestamp().Logger()
	loggable = true

	fileLog.Info().Msg("logging started")
	return nil
}

// CloseLogging flushes and closes the log file.
func CloseLogging() {
	setupMu.Lock()
	defer setupMu.Unlock()

	if logFile != nil {
		loggable = false
		_ = logFile.Close()
		logFile = nil
	}
}

// writeLog writes a console line to the structured file sink.
func writeLog(level zerolog.Level, msg string) {
	if !loggable {
		return
	}
	fileLog.WithLevel(level).Msg(stripAnsiCodes(msg))
}

// stripAnsiCodes removes ANSI escape codes from a string
func stripAnsiCodes(input string) string {
	return ansiEscape.ReplaceAllString(input, "")
}
