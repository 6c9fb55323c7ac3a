// File: internal/logging/logging_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New("warn", "json", &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("dropped")
	log.WithField("app", 2).Warn("not granted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "not granted", entry["msg"])
	assert.Equal(t, float64(2), entry["app"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New("debug", "text", &buf)
	require.NoError(t, err)
	log.Debug("Running App #1...")
	assert.Contains(t, buf.String(), "Running App #1...")
}

func TestNew_Invalid(t *testing.T) {
	_, err := logging.New("loud", "text", &bytes.Buffer{})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = logging.New("info", "xml", &bytes.Buffer{})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}
