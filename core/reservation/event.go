package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Outcome describes a successful Reserve call.
type Outcome int

const (
	// Reserved means a new hold was created.
	Reserved Outcome = iota + 1
	// AlreadyReserved means the station was held already; nothing changed.
	AlreadyReserved
)

func (o Outcome) String() string {
	switch o {
	case Reserved:
		return "reserved"
	case AlreadyReserved:
		return "already_reserved"
	default:
		return "none"
	}
}

// Kind identifies a lifecycle event.
type Kind string

const (
	KindReserved Kind = "reserved"
	KindReleased Kind = "released"
	// KindTick is emitted once per Advance call, after any expiries.
	KindTick Kind = "tick"
)

// Reason explains why a hold was released.
type Reason string

const (
	ReasonCancelled Reason = "cancelled"
	ReasonExpired   Reason = "expired"
)

// Event reports a change in the reservation mapping.
type Event struct {
	ID               string    `json:"id"`
	Kind             Kind      `json:"kind"`
	StationID        string    `json:"station_id,omitempty"`
	Reason           Reason    `json:"reason,omitempty"`
	RemainingSeconds int       `json:"remaining_seconds"`
	HoldSeconds      int       `json:"hold_seconds"`
	Active           int       `json:"active"` // holds left after the change
	Time             time.Time `json:"time"`
}

func newEvent(kind Kind, stationID string, now time.Time) Event {
	return Event{ID: uuid.NewString(), Kind: kind, StationID: stationID, Time: now}
}

// Notifier receives lifecycle events. Publish must not block and must not
// call back into the mutating methods of the Store that emitted the event.
type Notifier interface {
	Publish(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Publish(ev Event) { f(ev) }
