package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestExternalServiceResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "json")
	defer Initialize("info", "text")

	ExternalServiceResult("firestore", "Snapshots", errors.New("stream broken"), "collection", "demoreport")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "firestore", entry["service"])
	assert.Equal(t, "stream broken", entry["error"])
	assert.Equal(t, "demoreport", entry["collection"])
}

func TestDebugFilteredAtInfo(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "text")
	defer Initialize("info", "text")

	EnterMethod("dashboard.Tick")
	assert.Empty(t, buf.String())

	Info("Snapshot applied", "records", 3)
	assert.Contains(t, buf.String(), "records=3")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "json")
	defer Initialize("info", "text")

	WithComponent("firestore").Debug("Checkout snapshot received", "records", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "firestore", entry["component"])
	assert.Equal(t, float64(2), entry["records"])
}
