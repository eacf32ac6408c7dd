// Package redis mirrors active reservation holds into Redis so that other
// processes can read them. The mirror is write-only; the store never reads it
// back.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/voltgo/core/reservation"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second

	// DefaultKeyPrefix namespaces the mirrored keys.
	DefaultKeyPrefix = "voltgo:reservations"
)

// Config holds the Redis connection settings.
type Config struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

// SetDefaults fills optional fields.
func (c *Config) SetDefaults() {
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
}

// Validate checks mandatory fields when the mirror is enabled.
func (c Config) Validate() error {
	if c.Enabled && strings.TrimSpace(c.Addr) == "" {
		return errors.New("redis: addr is empty")
	}
	return nil
}

// Hold is the value stored for each reserved station.
type Hold struct {
	StationID   string    `json:"station_id"`
	HoldSeconds int       `json:"hold_seconds"`
	ReservedAt  time.Time `json:"reserved_at"`
	EventID     string    `json:"event_id"`
}

// NewClient returns a configured go-redis client and validates the connection with PING.
func NewClient(cfg Config) (*redis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Mirror keeps one key per active hold. Keys expire on their own after the
// remaining countdown so a crashed process leaves no stale holds behind.
type Mirror struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	tick    time.Duration
}

// MirrorOption configures a Mirror.
type MirrorOption func(*Mirror)

// WithTickInterval sets the wall-clock length of one countdown unit. Key
// TTLs are the remaining countdown multiplied by it.
func WithTickInterval(d time.Duration) MirrorOption {
	return func(m *Mirror) {
		if d > 0 {
			m.tick = d
		}
	}
}

// NewMirror returns a mirror writing under prefix.
func NewMirror(client *redis.Client, prefix string, opts ...MirrorOption) *Mirror {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	m := &Mirror{
		client:  client,
		prefix:  strings.TrimSuffix(prefix, ":"),
		timeout: defaultWriteTimeout,
		tick:    reservation.DefaultTickInterval,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// TTL returns the key lifetime for a hold with remaining countdown units.
func (m *Mirror) TTL(remaining int) time.Duration {
	return time.Duration(remaining) * m.tick
}

// Key returns the key used for a station.
func (m *Mirror) Key(stationID string) string {
	return fmt.Sprintf("%s:%s", m.prefix, stationID)
}

// HandleReservationEvent sets the key on reserve and deletes it on release.
func (m *Mirror) HandleReservationEvent(ev reservation.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	switch ev.Kind {
	case reservation.KindReserved:
		data, err := json.Marshal(Hold{
			StationID:   ev.StationID,
			HoldSeconds: ev.HoldSeconds,
			ReservedAt:  ev.Time,
			EventID:     ev.ID,
		})
		if err != nil {
			return err
		}
		return m.client.Set(ctx, m.Key(ev.StationID), data, m.TTL(ev.RemainingSeconds)).Err()
	case reservation.KindReleased:
		return m.client.Del(ctx, m.Key(ev.StationID)).Err()
	}
	return nil
}

// Get returns the mirrored hold for a station.
func (m *Mirror) Get(ctx context.Context, stationID string) (*Hold, error) {
	result, err := m.client.Get(ctx, m.Key(stationID)).Result()
	if err != nil {
		return nil, err
	}
	var h Hold
	if err := json.Unmarshal([]byte(result), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Close releases the client.
func (m *Mirror) Close() error {
	return m.client.Close()
}
