package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/voltgo/core/reservation"
)

func sampleEvents(base time.Time) []reservation.Event {
	return []reservation.Event{
		{ID: "e1", Kind: reservation.KindReserved, StationID: "1", RemainingSeconds: 300, Time: base},
		{ID: "e2", Kind: reservation.KindReserved, StationID: "3", RemainingSeconds: 300, Time: base.Add(time.Second)},
		{ID: "e3", Kind: reservation.KindReleased, Reason: reservation.ReasonCancelled, StationID: "1", RemainingSeconds: 290, Time: base.Add(10 * time.Second)},
		{ID: "e4", Kind: reservation.KindReleased, Reason: reservation.ReasonExpired, StationID: "3", Time: base.Add(301 * time.Second)},
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	for _, ev := range sampleEvents(base) {
		require.NoError(t, store.Append(ctx, ev))
	}

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "e1", all[0].ID)
	assert.Equal(t, "e4", all[3].ID)
	assert.Equal(t, reservation.ReasonExpired, all[3].Reason)

	byStation, err := store.Query(ctx, Query{StationID: "1"})
	require.NoError(t, err)
	require.Len(t, byStation, 2)
	assert.Equal(t, 290, byStation[1].RemainingSeconds)

	released, err := store.Query(ctx, Query{Kind: reservation.KindReleased})
	require.NoError(t, err)
	assert.Len(t, released, 2)

	window, err := store.Query(ctx, Query{Start: base.Add(time.Second), End: base.Add(10 * time.Second)})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "e2", window[0].ID)

	last, err := store.Query(ctx, Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "e4", last[0].ID)
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "journal", "events.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestJSONLStoreReadsRotatedFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	store, err := NewJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Now().UTC()
	for _, ev := range sampleEvents(base) {
		require.NoError(t, store.Append(ctx, ev))
	}
	require.NoError(t, store.logger.Rotate())
	require.NoError(t, store.Append(ctx, reservation.Event{ID: "e5", Kind: reservation.KindReserved, StationID: "1", Time: base.Add(time.Hour)}))

	files, err := store.files()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(files), 2)

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "e5", all[4].ID)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("jsonl", filepath.Join(dir, "a.jsonl"), 1, 1, 1)
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open("sqlite", filepath.Join(dir, "a.db"), 0, 0, 0)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("csv", "x", 0, 0, 0)
	assert.Error(t, err)
}

type failingStore struct{ appended []reservation.Event }

func (f *failingStore) Append(_ context.Context, ev reservation.Event) error {
	f.appended = append(f.appended, ev)
	return errors.New("disk full")
}
func (f *failingStore) Query(context.Context, Query) ([]reservation.Event, error) { return nil, nil }
func (f *failingStore) Close() error                                              { return nil }

func TestRecorderSkipsTicks(t *testing.T) {
	fs := &failingStore{}
	rec := Recorder{Store: fs}
	assert.NoError(t, rec.HandleReservationEvent(reservation.Event{Kind: reservation.KindTick}))
	assert.Empty(t, fs.appended)

	err := rec.HandleReservationEvent(reservation.Event{Kind: reservation.KindReserved, StationID: "1"})
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, fs.appended, 1)
}
