package stations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/voltgo/core/catalog"
	"github.com/kilianp07/voltgo/core/journal"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/core/view"
)

type memStore struct{ events []reservation.Event }

func (m *memStore) Append(_ context.Context, ev reservation.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *memStore) Query(_ context.Context, q journal.Query) ([]reservation.Event, error) {
	var res []reservation.Event
	for _, ev := range m.events {
		if q.Match(ev) {
			res = append(res, ev)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func newTestHandler(t *testing.T, opts ...Option) (*Handler, *reservation.Store) {
	t.Helper()
	cat := catalog.Default()
	store, err := reservation.NewStore(cat)
	require.NoError(t, err)
	return NewHandler(cat, store, opts...), store
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestListStationsSearch(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Router()

	rr := do(t, router, http.MethodGet, "/api/stations?q=nagar")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var page view.Page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Stations, 3)
	assert.False(t, page.NotFound)

	rr = do(t, router, http.MethodGet, "/api/stations?q=rr%20nagar")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Stations, 1)
	assert.Equal(t, "1", page.Stations[0].ID)
	assert.Len(t, page.Map.Markers, 1)

	// Vijayanagar contains Jayanagar.
	rr = do(t, router, http.MethodGet, "/api/stations?q=Jayanagar")
	page = view.Page{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Stations, 2)
	assert.Equal(t, "2", page.Stations[0].ID)
	assert.Equal(t, "3", page.Stations[1].ID)
}

func TestListStationsNotFoundFallsBack(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := do(t, h.Router(), http.MethodGet, "/api/stations?q=Mumbai")
	require.Equal(t, http.StatusOK, rr.Code)
	var page view.Page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.True(t, page.NotFound)
	assert.Equal(t, `Search "Mumbai" not found`, page.Message)
	assert.Len(t, page.Stations, 3)
}

func TestGetStation(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Router()
	rr := do(t, router, http.MethodGet, "/api/stations/3")
	require.Equal(t, http.StatusOK, rr.Code)
	var sv view.StationView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sv))
	assert.Equal(t, "Kazam Charging Station", sv.Name)
	assert.True(t, sv.CanReserve)

	rr = do(t, router, http.MethodGet, "/api/stations/99")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReserveLifecycle(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Router()

	rr := do(t, router, http.MethodPost, "/api/stations/1/reservation")
	require.Equal(t, http.StatusCreated, rr.Code)
	var resp reserveResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "reserved", resp.Outcome)
	assert.True(t, resp.Station.Reserved)
	assert.Equal(t, "05:00", resp.Station.TimeLeft)
	assert.Equal(t, view.LabelReserved, resp.Station.ReserveLabel)

	store.Advance()
	rr = do(t, router, http.MethodPost, "/api/stations/1/reservation")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "already_reserved", resp.Outcome)
	assert.Equal(t, 299, resp.Station.RemainingSeconds)

	rr = do(t, router, http.MethodGet, "/api/reservations")
	var snap map[string]reservation.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Contains(t, snap, "1")

	rr = do(t, router, http.MethodDelete, "/api/stations/1/reservation")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, store.Len())

	rr = do(t, router, http.MethodDelete, "/api/stations/1/reservation")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestReserveErrors(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Router()
	assert.Equal(t, http.StatusConflict, do(t, router, http.MethodPost, "/api/stations/2/reservation").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/api/stations/nope/reservation").Code)
	assert.Zero(t, store.Len())
}

func TestHistory(t *testing.T) {
	js := &memStore{}
	h, _ := newTestHandler(t, WithHistory(js))
	router := h.Router()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	js.events = []reservation.Event{
		{ID: "a", Kind: reservation.KindReserved, StationID: "1", Time: ts},
		{ID: "b", Kind: reservation.KindReleased, StationID: "1", Reason: reservation.ReasonExpired, Time: ts.Add(5 * time.Minute)},
		{ID: "c", Kind: reservation.KindReserved, StationID: "3", Time: ts.Add(time.Hour)},
	}

	rr := do(t, router, http.MethodGet, "/api/reservations/history?station_id=1&kind=released")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []reservation.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)

	rr = do(t, router, http.MethodGet, "/api/reservations/history?start=2025-03-01T10:30:00Z")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].ID)

	rr = do(t, router, http.MethodGet, "/api/reservations/history?station_id=9")
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/reservations/history?start=yesterday").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/reservations/history?kind=tick").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/reservations/history?limit=-1").Code)
}

func TestHistoryDisabled(t *testing.T) {
	h, _ := newTestHandler(t)
	assert.Equal(t, http.StatusNotFound, do(t, h.Router(), http.MethodGet, "/api/reservations/history").Code)
}

func TestMapAndHealth(t *testing.T) {
	settings := view.DefaultMapSettings()
	settings.Zoom = 14
	h, _ := newTestHandler(t, WithMapSettings(settings))
	router := h.Router()

	rr := do(t, router, http.MethodGet, "/api/map")
	require.Equal(t, http.StatusOK, rr.Code)
	var m view.Map
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, 14, m.Zoom)
	require.Len(t, m.Markers, 3)
	assert.Equal(t, 12.925845, m.Markers[0].Position.Lat)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, router, http.MethodPut, "/api/stations/1/reservation").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, router, http.MethodPost, "/api/map").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/unknown").Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t, WithAllowedOrigins("http://localhost:3000"))
	req := httptest.NewRequest(http.MethodOptions, "/api/stations/1/reservation", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

type panicStore struct{ *reservation.Store }

func (panicStore) Snapshot() map[string]reservation.Entry { panic("snapshot failed") }

func TestRecoversFromPanics(t *testing.T) {
	h := NewHandler(catalog.Default(), panicStore{})
	rr := do(t, h.Router(), http.MethodGet, "/api/reservations")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
