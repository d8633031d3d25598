package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/DoumanAsh/vn/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logging.Level
		wantErr bool
	}{
		{in: "debug", want: logging.LevelDebug},
		{in: "INFO", want: logging.LevelInfo},
		{in: "", want: logging.LevelInfo},
		{in: "warning", want: logging.LevelWarn},
		{in: " error ", want: logging.LevelError},
		{in: "loud", want: logging.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{
		Level:  logging.LevelInfo,
		Format: "json",
		Output: &buf,
		Attrs:  map[string]any{"run_id": "abc"},
	})

	logging.Component(logger, "state").Debug("hidden")
	logging.Component(logger, "state").Info("switch", "to", "game")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "switch", record["msg"])
	assert.Equal(t, "state", record["component"])
	assert.Equal(t, "game", record["to"])
	assert.Equal(t, "abc", record["run_id"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestComponentOfNil(t *testing.T) {
	assert.NotPanics(t, func() {
		logging.Component(nil, "x").Error("nothing happens")
	})
}
