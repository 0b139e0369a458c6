package obs

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogging(t *testing.T) {
	level, formatter, out := log.GetLevel(), log.StandardLogger().Formatter, log.StandardLogger().Out
	t.Cleanup(func() {
		log.SetLevel(level)
		log.SetFormatter(formatter)
		log.SetOutput(out)
	})

	var buf bytes.Buffer
	require.NoError(t, ConfigureLogging("warn", "json", &buf))
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	log.Info("dropped")
	log.WithField("l_id", 3).Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(3), entry["l_id"])
}

func TestConfigureLogging_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{name: "unknown level", level: "loud", format: "text"},
		{name: "unknown format", level: "info", format: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ConfigureLogging(tt.level, tt.format, nil))
		})
	}
}
