// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Logger construction shared by the command and tests.

package logging

import (
	"io"
	"strings"

	"github.com/momentics/schedbench/api"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out at level ("debug", "info", ...) in the given
// format, "text" or "json".
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "parse log level", err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000000",
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "parse log format", nil).WithContext("format", format)
	}
	return log, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
