package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"", logrus.WarnLevel},
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"error", logrus.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(tt.level, "text")
			require.NoError(t, err)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", "text")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}

func TestNewTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewTo(&buf, "debug", "json")
	require.NoError(t, err)

	log.WithFields(logrus.Fields{"repo": "/tmp/x", "commits": 3}).Debug("extracted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "extracted", entry["msg"])
	assert.Equal(t, "/tmp/x", entry["repo"])
	assert.Equal(t, float64(3), entry["commits"])
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("dropped")
	assert.False(t, log.IsLevelEnabled(logrus.ErrorLevel))
}
