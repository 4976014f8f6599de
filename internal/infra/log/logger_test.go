package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"marketmap/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestBuild_JSONHandlerCarriesService(t *testing.T) {
	var buf bytes.Buffer

	logger, err := build(&buf, config.Log{Level: "warn"}, "marketmap")
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", slog.String("session_id", "s1"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "marketmap", line["service"])
	assert.Equal(t, "s1", line["session_id"])
}
