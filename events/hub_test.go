package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playvault/server/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("SubscriberCount = %d, want %d", hub.SubscriberCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	ws := dialHub(t, hub)
	waitForSubscribers(t, hub, 1)

	hub.Publish(Event{
		Type:    TypeWishlistUpdated,
		Payload: map[string]interface{}{"user_id": 7},
	})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("bad event payload: %v", err)
	}
	if evt.Type != TypeWishlistUpdated {
		t.Errorf("event type = %q, want %q", evt.Type, TypeWishlistUpdated)
	}
}

func TestPublishFansOut(t *testing.T) {
	hub := NewHub()
	first := dialHub(t, hub)
	second := dialHub(t, hub)
	waitForSubscribers(t, hub, 2)

	hub.Publish(Event{Type: TypeCartUpdated})

	for _, ws := range []*websocket.Conn{first, second} {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := ws.ReadMessage(); err != nil {
			t.Fatalf("subscriber missed the event: %v", err)
		}
	}
}

func TestDisconnectRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ws := dialHub(t, hub)
	waitForSubscribers(t, hub, 1)

	ws.Close()
	waitForSubscribers(t, hub, 0)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	// Must not block or panic with nobody listening.
	hub.Publish(Event{Type: TypePurchaseCompleted})
}
