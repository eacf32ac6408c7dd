package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/voltgo/core/reservation"
)

var sample = []reservation.Event{
	{ID: "a", Kind: reservation.KindReserved, StationID: "1", RemainingSeconds: 300, HoldSeconds: 300, Active: 1, Time: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
	{ID: "b", Kind: reservation.KindReleased, StationID: "1", Reason: reservation.ReasonExpired, HoldSeconds: 300, Time: time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC)},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "csv", sample))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "time,id,kind,station_id,reason,remaining_seconds,hold_seconds,active", lines[0])
	assert.Equal(t, "2025-03-01T10:05:00Z,b,released,1,expired,0,300,0", lines[2])
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "", sample))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"kind":"reserved"`)
	assert.Contains(t, lines[1], `"reason":"expired"`)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", sample))
}
