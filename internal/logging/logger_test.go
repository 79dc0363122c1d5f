package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

func (l label) String() string { return "<" + string(l) + ">" }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		logs    bool
	}{
		{"empty level is silent", Config{Level: ""}, false, false},
		{"blank level is silent", Config{Level: "  "}, false, false},
		{"text", Config{Level: "info"}, false, true},
		{"upper case", Config{Level: "DEBUG"}, false, true},
		{"json", Config{Level: "warn", Format: JSON}, false, true},
		{"unknown level", Config{Level: "chatty"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Output = &buf
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			logger.Error("boom")
			assert.Equal(t, tt.logs, buf.Len() > 0)
		})
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNew_JSONAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: JSON, Output: &buf})
	require.NoError(t, err)

	logger.Info("step", "error", errors.New("no match"), "rule", label("swap"), "count", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "step", rec["msg"])
	assert.Equal(t, "<swap>", rec["rule"])
	assert.Equal(t, float64(3), rec["count"])
	assert.NotContains(t, rec, "error")
	assert.Contains(t, rec, "err")
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	assert.False(t, logger.Enabled(t.Context(), 12))
}
