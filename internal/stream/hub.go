// Package stream pushes simulation snapshots to websocket clients as JSON.
package stream

import (
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"fluid-sim/internal/simulation"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 4 // frames queued per client before frames are dropped
)

// Frame is the wire format of one snapshot.
type Frame struct {
	Step      int          `json:"step"`
	Time      float64      `json:"time"`
	Positions [][2]float64 `json:"positions"`
}

// NewFrame converts a snapshot to its wire format.
func NewFrame(snap simulation.Snapshot) Frame {
	positions := make([][2]float64, len(snap.Particles))
	for i, p := range snap.Particles {
		positions[i] = [2]float64{p.Position.X, p.Position.Y}
	}
	return Frame{Step: snap.Step, Time: snap.Time, Positions: positions}
}

type client struct {
	conn *websocket.Conn
	send chan Frame
}

// Hub fans snapshots out to every connected websocket client. Slow clients
// miss frames instead of stalling the simulation.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub. A nil logger discards output.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving the /ws endpoint.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return mux
}

// Publish queues the snapshot for every client. It never blocks.
func (h *Hub) Publish(snap simulation.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return nil
	}
	frame := NewFrame(snap)
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			h.logger.Println(err)
		}
		return
	}
	c := &client{conn: conn, send: make(chan Frame, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Printf("stream: %s connected", r.RemoteAddr)

	go h.writeFrames(c)
	go h.readSocket(c)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// writeFrames drains the client's queue until it is closed or a write fails.
func (h *Hub) writeFrames(c *client) {
	defer c.conn.Close()
	for frame := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			break
		}
		if err := c.conn.WriteJSON(frame); err != nil {
			h.logger.Printf("stream: write: %v", err)
			break
		}
	}
	h.unregister(c)
}

// readSocket discards incoming messages and unregisters the client once the
// connection closes.
func (h *Hub) readSocket(c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Printf("stream: read: %v", err)
			}
			return
		}
	}
}
