package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerWritesComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Configure("debug", "json", &buf))
	defer func() { _ = Configure("info", "json", nil) }()

	l := New("reservation")
	l.Infof("reserved %s", "1")
	l.Debugw("tick", map[string]any{"active": 2})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "reservation", first["component"])
	assert.Equal(t, "reserved 1", first["message"])
	assert.Equal(t, "info", first["level"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.EqualValues(t, 2, second["active"])
}

func TestZerologLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Configure("warn", "json", &buf))
	defer func() { _ = Configure("info", "json", nil) }()

	l := New("test")
	l.Debugf("debug %d", 1)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Configure("loud", "", nil))
}
