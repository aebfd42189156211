package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// EnvVar enables debug logging to debug.log when set
const EnvVar = "FSVIEW_DEBUG"

var (
	Debug   *log.Logger
	Scanner *log.Logger
	Layout  *log.Logger
	Enabled bool
)

func init() {
	// Only enable logging if FSVIEW_DEBUG is set; the TUI owns the terminal
	if os.Getenv(EnvVar) == "" {
		setOutput(io.Discard, log.FatalLevel)
		return
	}

	Enabled = true

	debugFile, err := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		setOutput(os.Stderr, log.DebugLevel)
		return
	}
	setOutput(debugFile, log.DebugLevel)
}

// New creates a logger with the timestamp format used across fsview
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// SetOutput redirects the package loggers, e.g. to stderr for headless
// commands run with --verbose
func SetOutput(w io.Writer, level log.Level) {
	Enabled = w != io.Discard
	setOutput(w, level)
}

func setOutput(w io.Writer, level log.Level) {
	base := New(w, level)
	Debug = base.WithPrefix("debug")
	Scanner = base.WithPrefix("scanner")
	Layout = base.WithPrefix("layout")
}
