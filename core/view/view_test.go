package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/voltgo/core/catalog"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/core/search"
)

func TestFormatTimeLeft(t *testing.T) {
	cases := map[int]string{0: "00:00", 5: "00:05", 65: "01:05", 300: "05:00", 900: "15:00", -3: "00:00"}
	for in, want := range cases {
		assert.Equal(t, want, FormatTimeLeft(in), "seconds %d", in)
	}
}

func TestBuildJoinsSnapshot(t *testing.T) {
	all := catalog.Default().All()
	snap := map[string]reservation.Entry{
		"1": {StationID: "1", Reserved: true, RemainingSeconds: 61},
	}
	views := Build(all, snap)
	require.Len(t, views, 3)

	assert.True(t, views[0].Reserved)
	assert.Equal(t, "01:01", views[0].TimeLeft)
	assert.False(t, views[0].CanReserve)
	assert.True(t, views[0].CanCancel)
	assert.Equal(t, LabelReserved, views[0].ReserveLabel)

	// occupied station can never be reserved from the surface
	assert.False(t, views[1].CanReserve)
	assert.False(t, views[1].CanCancel)

	assert.True(t, views[2].CanReserve)
	assert.Equal(t, LabelReserve, views[2].ReserveLabel)
	assert.Empty(t, views[2].TimeLeft)
}

func TestBuildLeavesCatalogUntouched(t *testing.T) {
	c := catalog.Default()
	snap := map[string]reservation.Entry{"3": {StationID: "3", Reserved: true, RemainingSeconds: 4}}
	_ = Build(c.All(), snap)
	st, _ := c.Get("3")
	assert.Equal(t, "Kazam Charging Station", st.Name)
}

func TestNewPageNotFound(t *testing.T) {
	all := catalog.Default().All()
	page := NewPage(search.Resolve(all, "Nonexistent"), nil, DefaultMapSettings())
	assert.True(t, page.NotFound)
	assert.Equal(t, `Search "Nonexistent" not found`, page.Message)
	assert.Len(t, page.Stations, 3)
	assert.Len(t, page.Map.Markers, 3)
	assert.Equal(t, 12, page.Map.Zoom)
}

func TestNewPageMarkersFollowResult(t *testing.T) {
	all := catalog.Default().All()
	page := NewPage(search.Resolve(all, "Jayanagar"), nil, DefaultMapSettings())
	require.Len(t, page.Map.Markers, 2)
	assert.Equal(t, "ElectricPe Charging Station", page.Map.Markers[0].Label)
	assert.Equal(t, 12.9342, page.Map.Markers[0].Position.Lat)
	assert.Equal(t, "Kazam Charging Station", page.Map.Markers[1].Label)
	assert.Equal(t, 12.9716, page.Map.Center.Lat)

	page = NewPage(search.Resolve(all, "RR Nagar"), nil, DefaultMapSettings())
	require.Len(t, page.Map.Markers, 1)
	assert.Equal(t, "Thunderplus EV Charging Station", page.Map.Markers[0].Label)
}
