// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger at level. Release mode logs JSON for collectors;
// otherwise logs are human-readable text.
func New(level logrus.Level, release bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if release {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	logger.SetLevel(level)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
