package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		"empty":   {in: "", want: slog.LevelInfo},
		"debug":   {in: "debug", want: slog.LevelDebug},
		"upper":   {in: "WARN", want: slog.LevelWarn},
		"warning": {in: "warning", want: slog.LevelWarn},
		"error":   {in: " error ", want: slog.LevelError},
		"unknown": {in: "verbose", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("slot check", EventID("evt1"), Err(nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "slot check", line["msg"])
	assert.Equal(t, "evt1", line[KeyEventID])
	assert.NotContains(t, line, KeyError)
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "", &buf)
	require.NoError(t, err)

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", FormatJSON, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)

	StdLogger(logger, slog.LevelWarn).Print("http: TLS handshake error")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "http: TLS handshake error", line["msg"])

	assert.NotNil(t, StdLogger(nil, slog.LevelError))
}
