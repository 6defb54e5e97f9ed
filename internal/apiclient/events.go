package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// CourseEvent is one message of the authoring event stream.
type CourseEvent struct {
	Type      string    `json:"type"`
	CourseID  string    `json:"courseId"`
	EntityID  string    `json:"entityId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WatchEvents streams the signed-in instructor's course events into handle
// until ctx is done or the server closes the stream. A refused upgrade with
// 401 runs the unauthorized handler like any other call.
func (c *Client) WatchEvents(ctx context.Context, handle func(CourseEvent)) error {
	u := c.BaseURL + "/admin/courses/events"
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}

	header := http.Header{}
	if token := c.Tokens.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusUnauthorized {
				c.onUnauthorized(ctx)
			}
			return &APIError{Kind: KindServer, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Err: err}
		}
		return &APIError{Kind: KindTransport, Err: err}
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return &APIError{Kind: KindTransport, Err: err}
		}
		var ev CourseEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.log.Debug("Skipping malformed course event", zap.Error(err))
			continue
		}
		handle(ev)
	}
}
