package reservation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/voltgo/core/catalog"
	"github.com/kilianp07/voltgo/core/logger"
	"github.com/kilianp07/voltgo/core/monitoring"
)

// DefaultHoldSeconds is the hold duration used when none is configured.
const DefaultHoldSeconds = 300

// Entry is the hold state of one station.
type Entry struct {
	StationID        string    `json:"station_id"`
	Reserved         bool      `json:"reserved"`
	RemainingSeconds int       `json:"remaining_seconds"`
	ReservedAt       time.Time `json:"reserved_at"`
}

// Option configures a Store.
type Option func(*Store)

// WithHoldSeconds sets the countdown assigned to new holds.
func WithHoldSeconds(n int) Option { return func(s *Store) { s.hold = n } }

// WithLogger sets the logger used for isolated faults.
func WithLogger(l logger.Logger) Option { return func(s *Store) { s.log = l } }

// WithNotifier registers the receiver of lifecycle events.
func WithNotifier(n Notifier) Option { return func(s *Store) { s.notifier = n } }

// WithClock overrides time.Now for event and entry timestamps.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// Store owns the reservation mapping. All methods are safe for concurrent use.
type Store struct {
	catalog  catalog.Lookup
	hold     int
	log      logger.Logger
	notifier Notifier
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]*Entry

	// pubMu is taken before mu is released so events leave in mutation order.
	pubMu sync.Mutex
}

// NewStore creates an empty store validating station ids against lookup.
func NewStore(lookup catalog.Lookup, opts ...Option) (*Store, error) {
	if lookup == nil {
		return nil, fmt.Errorf("catalog lookup is required")
	}
	s := &Store{
		catalog: lookup,
		hold:    DefaultHoldSeconds,
		log:     logger.NopLogger{},
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
	for _, o := range opts {
		o(s)
	}
	if s.hold <= 0 {
		return nil, fmt.Errorf("hold seconds must be positive, got %d", s.hold)
	}
	if s.log == nil {
		s.log = logger.NopLogger{}
	}
	return s, nil
}

// HoldSeconds returns the countdown assigned to new holds.
func (s *Store) HoldSeconds() int { return s.hold }

// Reserve places a hold on the station. Reserving a held station is a no-op
// reported as AlreadyReserved; its countdown is left untouched.
func (s *Store) Reserve(stationID string) (Outcome, error) {
	st, ok := s.catalog.Get(stationID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, stationID)
	}
	if !st.Reservable() {
		return 0, fmt.Errorf("%w: %s is %s", ErrInvalidState, stationID, st.Status)
	}

	s.mu.Lock()
	if _, held := s.entries[stationID]; held {
		s.mu.Unlock()
		return AlreadyReserved, nil
	}
	now := s.now()
	s.entries[stationID] = &Entry{
		StationID:        stationID,
		Reserved:         true,
		RemainingSeconds: s.hold,
		ReservedAt:       now,
	}
	ev := newEvent(KindReserved, stationID, now)
	ev.RemainingSeconds = s.hold
	ev.HoldSeconds = s.hold
	ev.Active = len(s.entries)
	s.unlockAndNotify(ev)
	return Reserved, nil
}

// Cancel drops the hold on the station, if any.
func (s *Store) Cancel(stationID string) {
	s.mu.Lock()
	ev, ok := s.releaseLocked(stationID, ReasonCancelled)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.unlockAndNotify(ev)
}

// Advance decrements every hold by one and releases those reaching zero. The
// whole pass runs under the store lock, so concurrent Reserve and Cancel calls
// land entirely before or after it. The released station ids are returned in
// sorted order.
func (s *Store) Advance() []string {
	s.mu.Lock()
	var (
		expired []string
		events  []Event
	)
	for id := range s.entries {
		done, err := s.step(id)
		if err != nil {
			s.log.Errorf("advance %s: %v", id, err)
			monitoring.CaptureException(err, map[string]string{"station_id": id, "module": "reservation_store"})
			done = true
		}
		if !done {
			continue
		}
		if ev, ok := s.releaseLocked(id, ReasonExpired); ok {
			events = append(events, ev)
			expired = append(expired, id)
		}
	}
	tick := newEvent(KindTick, "", s.now())
	tick.HoldSeconds = s.hold
	tick.Active = len(s.entries)
	events = append(events, tick)
	s.unlockAndNotify(events...)

	sort.Strings(expired)
	return expired
}

// step decrements one entry. A corrupt entry or a panic is reported as an
// error so the caller can drop that entry and carry on with the others.
func (s *Store) step(id string) (expired bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	e := s.entries[id]
	if e == nil || !e.Reserved || e.RemainingSeconds <= 0 {
		return false, fmt.Errorf("%w: %+v", errCorruptEntry, e)
	}
	e.RemainingSeconds--
	return e.RemainingSeconds == 0, nil
}

// releaseLocked removes the entry. Cancel and expiry both end up here.
func (s *Store) releaseLocked(id string, reason Reason) (Event, bool) {
	e, ok := s.entries[id]
	if !ok {
		return Event{}, false
	}
	delete(s.entries, id)
	ev := newEvent(KindReleased, id, s.now())
	ev.Reason = reason
	if e != nil {
		ev.RemainingSeconds = max(e.RemainingSeconds, 0)
	}
	ev.HoldSeconds = s.hold
	ev.Active = len(s.entries)
	return ev, true
}

// unlockAndNotify releases mu and delivers events in order.
func (s *Store) unlockAndNotify(events ...Event) {
	if s.notifier == nil {
		s.mu.Unlock()
		return
	}
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()
	for _, ev := range events {
		s.publish(ev)
	}
}

func (s *Store) publish(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("notify %s %s: %v", ev.Kind, ev.StationID, r)
			s.log.Errorf("%v", err)
			monitoring.CaptureException(err, map[string]string{"station_id": ev.StationID, "module": "reservation_notifier"})
		}
	}()
	s.notifier.Publish(ev)
}

// Get returns the hold on a station.
func (s *Store) Get(stationID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[stationID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Snapshot returns a copy of all holds taken at a single point in time.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.entries))
	for id, e := range s.entries {
		out[id] = *e
	}
	return out
}

// Len returns the number of active holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
