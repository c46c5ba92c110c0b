package logging

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers       = make(map[string]*logrus.Entry)
	loggersMu     sync.Mutex
	silenced      bool
	levelOverride *logrus.Level
)

// NewLogger creates and returns a pre-configured logger for a specific
// component. It uses a singleton pattern per component to avoid
// re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()

	levelStr := "warn" // libraries stay quiet by default
	if env := os.Getenv("LIVETUNE_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.WarnLevel
	}
	if levelOverride != nil {
		level = *levelOverride
	}
	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   !isatty.IsTerminal(os.Stderr.Fd()),
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	logger.SetOutput(os.Stderr)
	if silenced {
		logger.SetOutput(io.Discard)
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Silence discards output from all loggers created afterwards. Tests use
// this to keep expected warnings out of the test log.
func Silence() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	silenced = true
	for _, entry := range loggers {
		entry.Logger.SetOutput(io.Discard)
	}
}

// SetLevel adjusts the level of every logger created so far and acts as the
// default for loggers created afterwards.
func SetLevel(level logrus.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	levelOverride = &level
	for _, entry := range loggers {
		entry.Logger.SetLevel(level)
	}
}
