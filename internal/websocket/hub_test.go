package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/juru/domain"
)

func setupTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocketWithAuth(hub, c, c.QueryParam("viewer"), logger)
	})

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, viewer string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?viewer=" + viewer
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, got %d", n, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesEveryViewer(t *testing.T) {
	hub, server := setupTestServer(t)

	first := dial(t, server, "first")
	second := dial(t, server, "second")
	waitForClients(t, hub, 2)

	hub.Broadcast(domain.ExchangeEvent{
		Type:           domain.EventExchangeTranslated,
		CycleID:        "cycle-1",
		SourceLanguage: "ru",
		OriginalText:   "привет",
		TargetLanguage: "en",
		TranslatedText: "hello",
		Timestamp:      time.Now(),
	})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}

		var event domain.ExchangeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		if event.Type != domain.EventExchangeTranslated || event.TranslatedText != "hello" {
			t.Errorf("Unexpected event %+v", event)
		}
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, server := setupTestServer(t)

	conn := dial(t, server, "viewer")
	waitForClients(t, hub, 1)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitForClients(t, hub, 0)
}

func TestHub_BroadcastWithoutViewers(t *testing.T) {
	hub, _ := setupTestServer(t)

	// Must not block or panic.
	hub.Broadcast(domain.ExchangeEvent{Type: domain.EventStateChanged, State: "idle"})
	if hub.ClientCount() != 0 {
		t.Errorf("Expected no clients, got %d", hub.ClientCount())
	}
}

func TestHub_DropsSlowViewer(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	slow := &Client{hub: hub, send: make(chan []byte, 1), viewerID: "slow"}
	hub.clients[slow] = struct{}{}

	hub.Broadcast(domain.ExchangeEvent{Type: domain.EventStateChanged, State: "listening"})
	hub.Broadcast(domain.ExchangeEvent{Type: domain.EventStateChanged, State: "idle"})

	if hub.ClientCount() != 0 {
		t.Errorf("Expected the slow viewer to be dropped, got %d clients", hub.ClientCount())
	}
	if _, ok := <-slow.send; !ok {
		t.Error("Expected the first buffered event before the channel closed")
	}
	if _, ok := <-slow.send; ok {
		t.Error("Expected the send channel to be closed")
	}
}

func TestHub_ShutdownClosesViewers(t *testing.T) {
	logger := zaptest.NewLogger(t)
	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocketWithAuth(hub, c, "viewer", logger)
	})
	server := httptest.NewServer(e)
	defer server.Close()

	conn := dial(t, server, "viewer")
	waitForClients(t, hub, 1)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Hub did not stop")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed after shutdown")
	}
}
