// Package stream serves session snapshots to remote renderers over WebSocket and
// accepts controller updates from remote input devices
package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/event"
	"github.com/lixenwraith/vignettes/input"
	"github.com/lixenwraith/vignettes/status"
)

const (
	// DefaultInterval is the snapshot broadcast period
	DefaultInterval = 50 * time.Millisecond
	// SendQueue is the per-client outbound buffer; a full queue drops the client
	SendQueue = 64

	// DefaultPongWait bounds the silence from a client before it is dropped
	DefaultPongWait = 60 * time.Second

	writeWait       = 5 * time.Second
	maxInboundBytes = 4096
)

// Message types
const (
	TypeSnapshot   = "snapshot"
	TypeEvent      = "event"
	TypeController = "controller"
	TypeReady      = "ready"
	TypeDisconnect = "disconnect"
)

// Envelope wraps every outbound message
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Inbound is a message from a remote input device
// Rotation is (w, x, y, z); omitted keeps the current rotation
type Inbound struct {
	Type      string      `json:"type"`
	ID        int         `json:"id"`
	Position  [3]float64  `json:"position"`
	Rotation  *[4]float64 `json:"rotation,omitempty"`
	Grab      float64     `json:"grab"`
	Connected *bool       `json:"connected,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Hub broadcasts snapshots and records to connected clients
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	state    *input.State
	source   func() any
	interval time.Duration
	pongWait time.Duration // pings go out every half wait

	statClients *status.Gauge
	statDropped *atomic.Int64
	statInbound *atomic.Int64
}

// NewHub creates a hub; state may be nil to ignore inbound controller messages
func NewHub(state *input.State, source func() any, interval time.Duration) *Hub {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		state:    state,
		source:   source,
		interval: interval,
		pongWait: DefaultPongWait,
	}
}

// SetMetrics caches counters from reg
func (h *Hub) SetMetrics(reg *status.Registry) {
	if reg == nil {
		return
	}
	h.statClients = reg.Gauge("stream.clients")
	h.statDropped = reg.Counter("stream.dropped")
	h.statInbound = reg.Counter("stream.inbound")
}

// Clients returns the connected client count
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and starts the client's reader and writer
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, SendQueue), id: r.RemoteAddr}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.updateClientGauge()
	h.mu.Unlock()
	log.Printf("stream: client %s connected", c.id)

	core.Go(func() { h.readLoop(c) })
	core.Go(func() { h.writeLoop(c) })
}

// Broadcast queues msg for every client, dropping clients whose queue is full
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropLocked(c)
			if h.statDropped != nil {
				h.statDropped.Add(1)
			}
			log.Printf("stream: dropped slow client %s", c.id)
		}
	}
}

// Publish marshals v inside an envelope and broadcasts it
func (h *Hub) Publish(kind string, v any) error {
	data, err := json.Marshal(Envelope{Type: kind, Data: v})
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// Record implements event.Sink
func (h *Hub) Record(r event.Record) {
	if err := h.Publish(TypeEvent, r); err != nil {
		log.Printf("stream: publish event: %v", err)
	}
}

// Run broadcasts a snapshot every interval until ctx is done, then closes all clients
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer h.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.source == nil || h.Clients() == 0 {
				continue
			}
			if err := h.Publish(TypeSnapshot, h.source()); err != nil {
				log.Printf("stream: publish snapshot: %v", err)
			}
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// Apply folds an inbound message into the controller table
func (h *Hub) Apply(msg Inbound) {
	if h.state == nil {
		return
	}
	switch msg.Type {
	case TypeReady:
		h.state.SetReady(true)
	case TypeDisconnect:
		h.state.Update(msg.ID, func(c *input.ControllerState) { c.Connected = false })
	case TypeController:
		h.state.Update(msg.ID, func(c *input.ControllerState) {
			c.Position = mgl64.Vec3(msg.Position)
			if msg.Rotation != nil {
				r := msg.Rotation
				c.Rotation = mgl64.Quat{W: r[0], V: mgl64.Vec3{r[1], r[2], r[3]}}.Normalize()
			}
			c.GrabValue = msg.Grab
			c.Connected = msg.Connected == nil || *msg.Connected
		})
	default:
		return
	}
	if h.statInbound != nil {
		h.statInbound.Add(1)
	}
}

// dropLocked removes c and closes its queue; callers must hold the mutex
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.updateClientGauge()
}

func (h *Hub) updateClientGauge() {
	if h.statClients != nil {
		h.statClients.Set(float64(len(h.clients)))
	}
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
		c.conn.Close()
		log.Printf("stream: client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(maxInboundBytes)
	c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("stream: bad message from %s: %v", c.id, err)
			continue
		}
		// Any inbound traffic proves the peer is alive
		c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
		h.Apply(msg)
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.pongWait / 2)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
