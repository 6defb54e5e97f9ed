package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T, allowOrigin func(string) bool) (*EventHub, string) {
	t.Helper()
	hub := NewEventHub(nil)
	hub.AllowOrigin = allowOrigin
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, r.URL.Query().Get("user"))
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitSubscribers(t *testing.T, hub *EventHub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(userID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Subscribers(%s) = %d, want %d", userID, hub.Subscribers(userID), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventHubDeliversToOwnerOnly(t *testing.T) {
	hub, url := startHub(t, nil)

	owner, _, err := websocket.DefaultDialer.Dial(url+"?user=u1", nil)
	if err != nil {
		t.Fatalf("dial owner: %v", err)
	}
	defer owner.Close()
	other, _, err := websocket.DefaultDialer.Dial(url+"?user=u2", nil)
	if err != nil {
		t.Fatalf("dial other: %v", err)
	}
	defer other.Close()
	waitSubscribers(t, hub, "u1", 1)
	waitSubscribers(t, hub, "u2", 1)

	hub.Publish(context.Background(), "u1", CourseEvent{Type: "course_published", CourseID: "c1"})

	owner.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := owner.ReadMessage()
	if err != nil {
		t.Fatalf("owner read: %v", err)
	}
	var ev CourseEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != "course_published" || ev.CourseID != "c1" || ev.Timestamp.IsZero() {
		t.Errorf("event = %+v", ev)
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("other user received the event")
	}
}

func TestEventHubUnregistersOnClose(t *testing.T) {
	hub, url := startHub(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?user=u1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitSubscribers(t, hub, "u1", 1)

	conn.Close()
	waitSubscribers(t, hub, "u1", 0)
}

func TestEventHubRejectsOrigin(t *testing.T) {
	_, url := startHub(t, func(origin string) bool { return origin == "https://baobab.academy" })

	header := http.Header{"Origin": {"https://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url+"?user=u1", header); err == nil {
		t.Fatal("dial with a foreign origin succeeded")
	}
}

func TestNilEventHubPublish(t *testing.T) {
	var hub *EventHub
	hub.Publish(context.Background(), "u1", CourseEvent{Type: "course_created"})
}

func TestEventHubDisconnectsFloodingSubscriber(t *testing.T) {
	hub, url := startHub(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?user=u1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitSubscribers(t, hub, "u1", 1)

	for i := 0; i < 50; i++ {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("hi")); err != nil {
			break
		}
	}
	waitSubscribers(t, hub, "u1", 0)
}
