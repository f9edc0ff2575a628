// Package logging provides the module's package-singleton structured
// logger, grounded on the newtron CLI's pkg/util/log.go.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared logger every package in this module logs through.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   false,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// SetLogLevel parses level ("debug", "info", "warn", "error") and applies
// it, falling back to InfoLevel on an unrecognized value.
func SetLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		Logger.Warnf("unrecognized log level %q, defaulting to info", level)
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)
}

// SetLogOutput redirects where log lines are written.
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat switches the logger to JSON lines, useful when fwconvert
// output is consumed by another tool.
func SetJSONFormat(enabled bool) {
	if enabled {
		Logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// WithField is a shorthand for Logger.WithField.
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithVendor tags a log entry with the vendor it concerns, the way
// newtron's WithDevice tags entries with a device name.
func WithVendor(vendor string) *logrus.Entry {
	return Logger.WithField("vendor", vendor)
}

// WithOperation tags a log entry with the pipeline stage it concerns
// ("parse", "analyze", "map", "generate").
func WithOperation(op string) *logrus.Entry {
	return Logger.WithField("operation", op)
}
