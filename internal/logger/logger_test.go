package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter("warn", "text", &buf)
	t.Cleanup(func() { Initialize("info", "text") })

	Info("hidden message")
	Warn("visible message", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "key=value")
}

func TestInitializeWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter("debug", "JSON", &buf)
	t.Cleanup(func() { Initialize("info", "text") })

	DatabaseResult("UPDATE", 0, errors.New("boom"), "id", "r-1")

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "UPDATE", entry["operation"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "r-1", entry["id"])
}

func TestInitializeWithFile_WritesRotatedCopy(t *testing.T) {
	path := t.TempDir() + "/app.log"
	InitializeWithFile("info", "text", FileOptions{Path: path, MaxSizeMB: 1})
	t.Cleanup(func() { Initialize("info", "text") })

	Info("to file")
	assert.FileExists(t, path)
}
