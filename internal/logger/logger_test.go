package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: "json", Output: &buf})

	log.Info().Fields([]any{"locale", "en", "count", 3}).Msg("generated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "generated", entry["message"])
	assert.Equal(t, "en", entry["locale"])
	assert.EqualValues(t, 3, entry["count"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf})

	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "loud", Output: &buf})

	log.Debug().Msg("dropped")
	log.Info().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestPackageHelpersDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("info", "k", "v")
		Warn("warn")
		Debug("debug")
		Error("error", nil)
	})
}
