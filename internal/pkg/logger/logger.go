// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a zerolog.Logger tagged with the service name
func New(w io.Writer, serviceName string) zerolog.Logger {
	return zerolog.New(w).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// Setup installs the service logger as the global logger and sets the level
func Setup(serviceName string, debug bool) zerolog.Logger {
	return SetupTo(os.Stdout, serviceName, debug)
}

// SetupTo is Setup writing to w
func SetupTo(w io.Writer, serviceName string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	l := New(w, serviceName)
	log.Logger = l
	return l
}

// Component returns the global logger scoped to a component
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
