package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/voltgo/api/stations"
	"github.com/kilianp07/voltgo/config"
	"github.com/kilianp07/voltgo/core/catalog"
	"github.com/kilianp07/voltgo/core/journal"
	coremetrics "github.com/kilianp07/voltgo/core/metrics"
	"github.com/kilianp07/voltgo/core/monitoring"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/infra/logger"
	"github.com/kilianp07/voltgo/infra/metrics"
	"github.com/kilianp07/voltgo/infra/mqtt"
	"github.com/kilianp07/voltgo/infra/redis"
	"github.com/kilianp07/voltgo/internal/eventbus"
)

// EventHandler consumes reservation lifecycle events off the bus.
type EventHandler interface {
	HandleReservationEvent(ev reservation.Event) error
}

type sinkHandler struct{ coremetrics.Sink }

func (s sinkHandler) HandleReservationEvent(ev reservation.Event) error {
	return s.RecordReservationEvent(ev)
}

type subscriber struct {
	name    string
	handler EventHandler
	ch      <-chan reservation.Event
}

// Service wires the reservation store, its ticker, the event observers and
// the HTTP API.
type Service struct {
	Catalog *catalog.Catalog
	Store   *reservation.Store
	Journal journal.Store

	cfg     *config.Config
	ticker  *reservation.Ticker
	bus     *eventbus.TypedBus[reservation.Event]
	api     *stations.Handler
	subs    []subscriber
	log     logger.Logger
	closers []func() error

	ready chan struct{}
	addr  string
}

// New creates a Service from the configuration. Optional observers
// (MQTT, Redis) are connected here so that misconfiguration fails fast.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	bus := eventbus.NewTyped(
		eventbus.WithBuffer[reservation.Event](cfg.Reservation.EventBuffer),
		eventbus.WithDropHandler(func(ev reservation.Event) {
			logg.Warnf("event bus full, dropped %s %s", ev.Kind, ev.StationID)
		}),
	)
	store, err := reservation.NewStore(cat,
		reservation.WithHoldSeconds(cfg.Reservation.HoldSeconds),
		reservation.WithLogger(logger.New("reservation_store")),
		reservation.WithNotifier(reservation.NotifierFunc(bus.Publish)),
	)
	if err != nil {
		return nil, fmt.Errorf("reservation store: %w", err)
	}

	s := &Service{
		Catalog: cat,
		Store:   store,
		cfg:     cfg,
		ticker:  reservation.NewTicker(store, cfg.Reservation.TickInterval(), logger.New("reservation_ticker")),
		bus:     bus,
		log:     logg,
		ready:   make(chan struct{}),
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	s.subscribe("metrics", sinkHandler{sink})

	if cfg.Journal.Enabled {
		js, err := journal.Open(cfg.Journal.Backend, cfg.Journal.Path, cfg.Journal.MaxSizeMB, cfg.Journal.MaxBackups, cfg.Journal.MaxAgeDays)
		if err != nil {
			s.closeAll()
			return nil, fmt.Errorf("journal: %w", err)
		}
		s.Journal = js
		s.closers = append(s.closers, js.Close)
		s.subscribe("journal", journal.Recorder{Store: js})
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			s.closeAll()
			return nil, err
		}
		s.closers = append(s.closers, func() error { pub.Disconnect(); return nil })
		s.subscribe("mqtt", pub)
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			s.closeAll()
			return nil, err
		}
		mirror := redis.NewMirror(client, cfg.Redis.KeyPrefix, redis.WithTickInterval(cfg.Reservation.TickInterval()))
		s.closers = append(s.closers, mirror.Close)
		s.subscribe("redis", mirror)
	}

	opts := []stations.Option{
		stations.WithMapSettings(cfg.Map.Settings()),
		stations.WithAllowedOrigins(cfg.HTTP.AllowedOrigins...),
		stations.WithLogger(logger.New("http")),
	}
	if s.Journal != nil {
		opts = append(opts, stations.WithHistory(s.Journal))
	}
	s.api = stations.NewHandler(cat, store, opts...)
	s.subscribe("websocket", s.api.Hub())
	return s, nil
}

func (s *Service) subscribe(name string, h EventHandler) {
	s.subs = append(s.subs, subscriber{name: name, handler: h, ch: s.bus.Subscribe()})
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler { return s.api.Router() }

// Ready is closed once the HTTP listener is bound.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound HTTP address. Valid after Ready.
func (s *Service) Addr() string { return s.addr }

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, sub := range s.subs {
		wg.Add(1)
		go func(sub subscriber) {
			defer wg.Done()
			s.dispatch(sub)
		}(sub)
	}

	ln, err := net.Listen("tcp", s.cfg.HTTP.Address)
	if err != nil {
		s.bus.Close()
		wg.Wait()
		return fmt.Errorf("http listen: %w", err)
	}
	s.addr = ln.Addr().String()
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 2)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if addr := s.cfg.Metrics.PrometheusAddress; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if err := s.ticker.Start(ctx); err != nil {
		_ = srv.Close()
		s.bus.Close()
		wg.Wait()
		return err
	}
	s.log.Infof("listening on %s, hold %ds, tick %s", s.addr, s.Store.HoldSeconds(), s.ticker.Interval())
	close(s.ready)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	s.ticker.Stop()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warnf("http shutdown: %v", err)
	}
	s.api.Hub().Close()
	s.bus.Close()
	wg.Wait()
	return runErr
}

// dispatch feeds one observer until the bus closes. A failing or panicking
// observer is logged and reported; it never affects the others.
func (s *Service) dispatch(sub subscriber) {
	for ev := range sub.ch {
		s.handle(sub, ev)
	}
}

func (s *Service) handle(sub subscriber, ev reservation.Event) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s observer panic: %v", sub.name, r)
			s.log.Errorf("%v", err)
			monitoring.CaptureException(err, map[string]string{"module": sub.name, "station_id": ev.StationID})
		}
	}()
	if err := sub.handler.HandleReservationEvent(ev); err != nil {
		s.log.Errorf("%s observer: %v", sub.name, err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	err := s.closeAll()
	monitoring.Flush(2 * time.Second)
	return err
}

func (s *Service) closeAll() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
