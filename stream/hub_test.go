package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/event"
	"github.com/lixenwraith/vignettes/input"
	"github.com/lixenwraith/vignettes/status"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func dial(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(h)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, "client registration", func() bool { return h.Clients() == 1 })
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestHubControllerMessages(t *testing.T) {
	state := input.NewState(1)
	h := NewHub(state, nil, 0)
	conn, done := dial(t, h)
	defer done()

	msg := `{"type":"controller","id":0,"position":[1,2,3],"rotation":[1,0,0,0],"grab":1.5}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ready"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, "ready flag", state.Ready)
	c, ok := state.Controller(0)
	if !ok {
		t.Fatal("controller missing")
	}
	if c.Position[0] != 1 || c.Position[2] != 3 {
		t.Errorf("position = %v", c.Position)
	}
	if c.GrabValue != 1 {
		t.Errorf("grab = %f, want clamp to 1", c.GrabValue)
	}
	if !c.Connected {
		t.Error("controller should be connected")
	}
}

func TestHubApplyDisconnect(t *testing.T) {
	state := input.NewState(2)
	h := NewHub(state, nil, 0)
	reg := status.NewRegistry()
	h.SetMetrics(reg)

	h.Apply(Inbound{Type: TypeDisconnect, ID: 1})
	h.Apply(Inbound{Type: "unknown"})

	if c, _ := state.Controller(1); c.Connected {
		t.Error("controller 1 should be disconnected")
	}
	if got := reg.Counter("stream.inbound").Load(); got != 1 {
		t.Errorf("inbound = %d, want 1", got)
	}
}

func TestHubSnapshotBroadcast(t *testing.T) {
	source := func() any { return map[string]int{"step": 42} }
	h := NewHub(nil, source, 10*time.Millisecond)
	conn, done := dial(t, h)
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != TypeSnapshot || env.Data["step"] != 42 {
		t.Errorf("envelope = %+v", env)
	}
}

func TestHubRecordSink(t *testing.T) {
	h := NewHub(nil, nil, 0)
	conn, done := dial(t, h)
	defer done()

	var sink event.Sink = h
	sink.Record(event.Record{Kind: event.KindGrab, Name: "ball", Detail: "grabbed"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"type":"event"`) || !strings.Contains(string(data), `"name":"ball"`) {
		t.Errorf("unexpected message %s", data)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub(nil, nil, 0)
	reg := status.NewRegistry()
	h.SetMetrics(reg)

	slow := &client{send: make(chan []byte, 1), id: "slow"}
	h.clients[slow] = struct{}{}

	h.Broadcast([]byte("a"))
	if h.Clients() != 1 {
		t.Fatal("client dropped too early")
	}
	h.Broadcast([]byte("b"))
	if h.Clients() != 0 {
		t.Fatal("slow client should be dropped")
	}
	if got := reg.Counter("stream.dropped").Load(); got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}
	if _, ok := <-slow.send; !ok {
		t.Error("queued message should still be readable")
	}
	if _, ok := <-slow.send; ok {
		t.Error("queue should be closed")
	}
}

func TestHubDropsSilentClient(t *testing.T) {
	h := NewHub(nil, nil, 0)
	h.pongWait = 200 * time.Millisecond
	_, done := dial(t, h)
	defer done()

	// The client never reads, so pings go unanswered and the read deadline lapses
	waitFor(t, "silent client drop", func() bool { return h.Clients() == 0 })
}

func TestHubKeepsResponsiveClient(t *testing.T) {
	h := NewHub(nil, nil, 0)
	h.pongWait = 300 * time.Millisecond
	conn, done := dial(t, h)
	defer done()

	// Reading lets the default ping handler answer with pongs
	core.Go(func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	time.Sleep(time.Second)
	if h.Clients() != 1 {
		t.Errorf("responsive client dropped, clients = %d", h.Clients())
	}
}
