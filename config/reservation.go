package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/internal/eventbus"
)

// ReservationConfig controls the hold countdown.
type ReservationConfig struct {
	// HoldSeconds is the countdown given to each new hold.
	HoldSeconds int `json:"hold_seconds"`
	// TickIntervalMS is the wall-clock length of one countdown second.
	TickIntervalMS int `json:"tick_interval_ms"`
	// EventBuffer is the per-subscriber channel size of the event bus.
	EventBuffer int `json:"event_buffer"`
}

// SetDefaults applies sane defaults.
func (c *ReservationConfig) SetDefaults() {
	if c.HoldSeconds == 0 {
		c.HoldSeconds = reservation.DefaultHoldSeconds
	}
	if c.TickIntervalMS == 0 {
		c.TickIntervalMS = int(reservation.DefaultTickInterval / time.Millisecond)
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = eventbus.DefaultBuffer
	}
}

// Validate checks mandatory fields.
func (c ReservationConfig) Validate() error {
	if c.HoldSeconds <= 0 {
		return fmt.Errorf("reservation: hold_seconds must be positive")
	}
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("reservation: tick_interval_ms must be positive")
	}
	if c.EventBuffer < 0 {
		return fmt.Errorf("reservation: event_buffer must not be negative")
	}
	return nil
}

// TickInterval returns the configured interval as a duration.
func (c ReservationConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
