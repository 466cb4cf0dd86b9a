package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		expectLevel logrus.Level
	}{
		{name: "debug", level: "debug", expectLevel: logrus.DebugLevel},
		{name: "upper case warn", level: "WARN", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "loud", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, "text")
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)
		})
	}
}

func TestLogrusAdapter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("info", "json", &buf)

	logger.WithField(FieldAccountID, "acc-1").
		WithError(errors.New("boom")).
		Info("import finished", F(FieldCount, 3))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "import finished", decoded["msg"])
	assert.Equal(t, "acc-1", decoded[FieldAccountID])
	assert.Equal(t, float64(3), decoded[FieldCount])
	assert.Equal(t, "boom", decoded["error"])
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("warn", "text", &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestMockLogger_SharesEntriesWithDerivedLoggers(t *testing.T) {
	mock := NewMockLogger()
	derived := mock.WithField(FieldUserID, "u1")
	derived.Warn("row skipped", F(FieldRow, 2))

	require.True(t, mock.HasEntry("WARN", "row skipped"))
	entries := mock.EntriesByLevel("WARN")
	require.Len(t, entries, 1)

	v, ok := entries[0].FieldValue(FieldUserID)
	assert.True(t, ok)
	assert.Equal(t, "u1", v)

	v, ok = entries[0].FieldValue(FieldRow)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
