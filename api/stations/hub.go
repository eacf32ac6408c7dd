package stations

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kilianp07/voltgo/core/logger"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/core/view"
)

const (
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingPeriod   = 30 * time.Second
	sendBuffer   = 16
)

// Hub pushes the rendered page to every WebSocket client. Each client keeps
// its own search query; a client may change it by sending {"query":"..."}.
type Hub struct {
	render   func(query string) view.Page
	log      logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub returns a hub rendering pages with render.
func NewHub(render func(string) view.Page, log logger.Logger) *Hub {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Hub{
		render: render,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu    sync.Mutex
	query string
}

func (c *client) getQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *client) setQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// enqueue drops the message when the client is not keeping up; the next
// tick carries a fresh page anyway.
func (c *client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ServeWS upgrades the request and starts streaming pages. The optional q
// parameter sets the initial search query.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	c := &client{
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
		query: r.URL.Query().Get("q"),
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.push(c, map[string][]byte{})
	go h.writePump(c)
	go h.readPump(c)
}

// HandleReservationEvent re-renders every client's page. Ticks are included
// so countdowns stay current.
func (h *Hub) HandleReservationEvent(reservation.Event) error {
	h.Broadcast()
	return nil
}

// Broadcast renders and queues the current page for every client. Clients
// sharing a query share one rendering.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	cache := make(map[string][]byte)
	for _, c := range clients {
		h.push(c, cache)
	}
}

func (h *Hub) push(c *client, cache map[string][]byte) {
	q := c.getQuery()
	msg, ok := cache[q]
	if !ok {
		var err error
		msg, err = json.Marshal(h.render(q))
		if err != nil {
			h.log.Errorf("render page: %v", err)
			return
		}
		cache[q] = msg
	}
	if !c.enqueue(msg) {
		h.log.Warnf("dropping page update, client buffer full")
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warnf("invalid websocket message: %v", err)
			continue
		}
		c.setQuery(msg.Query)
		h.push(c, map[string][]byte{})
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
