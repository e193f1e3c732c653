package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"farebid/internal/service"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", query, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_FanOutByTopic(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := newTestServer(t, hub)
	tripConn := dial(t, srv, "topic=trip:trip-1")
	driverConn := dial(t, srv, "topic=drivers")
	waitForClients(t, hub, 2)

	err := hub.Publish("trip:trip-1", service.Event{
		Type: service.EventTripStatus,
		Data: map[string]any{"trip_id": "trip-1", "status": "completed"},
		At:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	_ = tripConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := tripConn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got envelope
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Topic != "trip:trip-1" {
		t.Errorf("expected topic trip:trip-1, got %q", got.Topic)
	}
	if got.Type != service.EventTripStatus {
		t.Errorf("expected type %s, got %q", service.EventTripStatus, got.Type)
	}
	if got.At != "2025-06-01T12:00:00.000Z" {
		t.Errorf("unexpected timestamp %q", got.At)
	}

	// The drivers subscriber must not see a trip-topic event.
	_ = driverConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := driverConn.ReadMessage(); err == nil {
		t.Error("unsubscribed client received the event")
	}
}

func TestHub_MultipleTopicsPerClient(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := newTestServer(t, hub)
	conn := dial(t, srv, "topic=drivers&topic=user:rider-1")
	waitForClients(t, hub, 1)

	for _, topic := range []string{"drivers", "user:rider-1"} {
		if err := hub.Publish(topic, service.Event{Type: service.EventTripCreated, At: time.Now()}); err != nil {
			t.Fatalf("publish %s: %v", topic, err)
		}
	}

	for i := 0; i < 2; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
}

func TestHub_RejectsConnectWithoutTopic(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHub_DropsSubscriberWithFullBuffer(t *testing.T) {
	hub := NewHub()

	// A client that never drains its send buffer.
	stuck := &Client{
		hub:    hub,
		send:   make(chan []byte, 1),
		topics: map[string]struct{}{"drivers": {}},
	}
	hub.clients[stuck] = struct{}{}

	if err := hub.Publish("drivers", service.Event{Type: service.EventTripCreated, At: time.Now()}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if hub.ClientCount() != 1 {
		t.Fatal("client should survive while its buffer has room")
	}

	if err := hub.Publish("drivers", service.Event{Type: service.EventTripCreated, At: time.Now()}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Fatal("client with a full buffer should be dropped")
	}

	// The dropped client's channel is closed so its write pump exits.
	select {
	case _, ok := <-stuck.send:
		if ok {
			// first buffered payload, channel closes after it drains
			if _, ok := <-stuck.send; ok {
				t.Error("send channel should be closed after drop")
			}
		}
	default:
		t.Error("expected a buffered payload")
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := newTestServer(t, hub)
	conn := dial(t, srv, "topic=drivers")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
