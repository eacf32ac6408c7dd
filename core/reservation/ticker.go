package reservation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/voltgo/core/logger"
	"github.com/kilianp07/voltgo/core/monitoring"
)

// DefaultTickInterval is the wall-clock period between two Advance calls.
const DefaultTickInterval = time.Second

// Advancer is driven by a Ticker. Store implements it.
type Advancer interface {
	Advance() []string
}

// Ticker calls Advance on a fixed interval. Ticks missed while the process is
// suspended or Advance is slow are dropped, never replayed.
type Ticker struct {
	adv      Advancer
	interval time.Duration
	log      logger.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewTicker creates a stopped ticker. A non-positive interval selects DefaultTickInterval.
func NewTicker(adv Advancer, interval time.Duration, log logger.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Ticker{adv: adv, interval: interval, log: log}
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Start launches the tick loop. It runs until Stop is called or ctx is done.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		select {
		case <-t.done:
		default:
			return fmt.Errorf("ticker already running")
		}
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(ctx, t.stop, t.done)
	t.log.Infof("ticker started, interval %s", t.interval)
	return nil
}

// Stop signals the loop and waits for it to exit. An Advance already running
// completes first; none starts once Stop has returned. Stop is idempotent.
func (t *Ticker) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	if stop != nil {
		select {
		case <-stop:
		default:
			close(stop)
		}
	}
	t.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (t *Ticker) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-tk.C:
			// select picks randomly among ready cases; stop wins over a pending tick.
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			default:
			}
			t.tick()
		}
	}
}

func (t *Ticker) tick() {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("advance panic: %v", r)
			t.log.Errorf("%v", err)
			monitoring.CaptureException(err, map[string]string{"module": "reservation_ticker"})
		}
	}()
	if expired := t.adv.Advance(); len(expired) > 0 {
		t.log.Infof("holds expired: %v", expired)
	}
}
