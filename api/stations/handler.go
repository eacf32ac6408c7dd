// Package stations exposes the station finder over HTTP: catalog search,
// reservation commands, the audit history and a WebSocket feed of the
// rendered page.
package stations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/kilianp07/voltgo/core/journal"
	"github.com/kilianp07/voltgo/core/logger"
	"github.com/kilianp07/voltgo/core/model"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/core/search"
	"github.com/kilianp07/voltgo/core/view"
)

// Catalog is the read side of the station catalog.
type Catalog interface {
	All() []model.Station
	Get(id string) (model.Station, bool)
}

// Reservations is the subset of the reservation store used by the API.
type Reservations interface {
	Reserve(stationID string) (reservation.Outcome, error)
	Cancel(stationID string)
	Snapshot() map[string]reservation.Entry
}

// Handler serves the station API.
type Handler struct {
	catalog  Catalog
	store    Reservations
	history  journal.Store
	settings view.MapSettings
	origins  []string
	hub      *Hub
	log      logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithHistory enables /api/reservations/history backed by store.
func WithHistory(store journal.Store) Option { return func(h *Handler) { h.history = store } }

// WithMapSettings sets the map center and zoom.
func WithMapSettings(s view.MapSettings) Option { return func(h *Handler) { h.settings = s } }

// WithAllowedOrigins sets the CORS origins. Defaults to any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) { h.origins = origins }
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option { return func(h *Handler) { h.log = l } }

// NewHandler creates the API handler and its WebSocket hub.
func NewHandler(c Catalog, store Reservations, opts ...Option) *Handler {
	h := &Handler{
		catalog:  c,
		store:    store,
		settings: view.DefaultMapSettings(),
		origins:  []string{"*"},
		log:      logger.NopLogger{},
	}
	for _, o := range opts {
		o(h)
	}
	h.hub = NewHub(h.Page, h.log)
	return h
}

// Hub returns the WebSocket hub. It must be subscribed to reservation events
// for clients to receive updates.
func (h *Handler) Hub() *Hub { return h.hub }

// Page renders the search screen for query against the current holds.
func (h *Handler) Page(query string) view.Page {
	res := search.Resolve(h.catalog.All(), query)
	return view.NewPage(res, h.store.Snapshot(), h.settings)
}

// Router returns the routes wrapped with CORS and panic recovery.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	// Root router routes answer 405 on a method mismatch.
	r.HandleFunc("/api/stations", h.listStations).Methods(http.MethodGet)
	r.HandleFunc("/api/stations/{id}", h.getStation).Methods(http.MethodGet)
	r.HandleFunc("/api/stations/{id}/reservation", h.reserve).Methods(http.MethodPost)
	r.HandleFunc("/api/stations/{id}/reservation", h.cancel).Methods(http.MethodDelete)
	r.HandleFunc("/api/reservations", h.listReservations).Methods(http.MethodGet)
	r.HandleFunc("/api/reservations/history", h.listHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/map", h.getMap).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.hub.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(h.origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{h.log}))(cors(r))
}

func (h *Handler) listStations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Page(r.URL.Query().Get("q")))
}

func (h *Handler) getStation(w http.ResponseWriter, r *http.Request) {
	st, ok := h.catalog.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}
	writeJSON(w, http.StatusOK, view.Station(st, h.store.Snapshot()))
}

type reserveResponse struct {
	Outcome string           `json:"outcome"`
	Station view.StationView `json:"station"`
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	out, err := h.store.Reserve(id)
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, reservation.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	st, _ := h.catalog.Get(id)
	status := http.StatusOK
	if out == reservation.Reserved {
		status = http.StatusCreated
		h.log.Infof("station %s reserved", id)
	}
	writeJSON(w, status, reserveResponse{Outcome: out.String(), Station: view.Station(st, h.store.Snapshot())})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.store.Cancel(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listReservations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}
	q, err := parseHistoryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := h.history.Query(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []reservation.Event{}
	}
	writeJSON(w, http.StatusOK, records)
}

func parseHistoryQuery(r *http.Request) (journal.Query, error) {
	v := r.URL.Query()
	q := journal.Query{StationID: v.Get("station_id"), Kind: reservation.Kind(v.Get("kind"))}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, errors.New("start must be RFC3339")
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, errors.New("end must be RFC3339")
		}
		q.End = t
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, errors.New("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	switch q.Kind {
	case "", reservation.KindReserved, reservation.KindReleased:
	default:
		return q, errors.New("kind must be reserved or released")
	}
	return q, nil
}

func (h *Handler) getMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, view.NewMap(h.catalog.All(), h.settings))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type recoveryLogger struct{ log logger.Logger }

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Errorf("http handler panic: %v", v)
}
