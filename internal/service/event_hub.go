package service

import (
	"baobab_academy/pkg/logger"
	"baobab_academy/pkg/monitoring"
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 32
	sendBuffer     = 64

	EventsChannel = "course_events"
)

// CourseEvent is pushed to the instructor's open editor sessions.
type CourseEvent struct {
	Type      string    `json:"type"`
	CourseID  string    `json:"courseId"`
	EntityID  string    `json:"entityId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type subscriber struct {
	hub     *EventHub
	conn    *websocket.Conn
	send    chan []byte
	userID  string
	limiter *rate.Limiter
}

// readPump drains incoming frames. Subscribers do not send events, so one
// that floods the socket past its limiter is disconnected.
func (c *subscriber) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("Event stream closed unexpectedly", zap.String("userID", c.userID), zap.Error(err))
			}
			return
		}
		if !c.limiter.Allow() {
			logger.Log.Warn("Closing subscriber over frame limit", zap.String("userID", c.userID))
			return
		}
	}
}

func (c *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

type shard struct {
	mu      sync.RWMutex
	clients map[string]map[*subscriber]struct{}
}

type pubSubMessage struct {
	TargetUser string          `json:"targetUser"`
	Payload    json.RawMessage `json:"payload"`
}

// EventHub fans course events out to websocket subscribers. With redis the
// events travel over a pub/sub channel so every instance delivers them;
// without it delivery stays in-process.
type EventHub struct {
	shards     [shardCount]*shard
	register   chan *subscriber
	unregister chan *subscriber
	done       chan struct{}
	Redis      *redis.Client
	// AllowOrigin vets the Origin header of upgrade requests; nil accepts any.
	AllowOrigin func(origin string) bool
}

func NewEventHub(rdb *redis.Client) *EventHub {
	h := &EventHub{
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		done:       make(chan struct{}),
		Redis:      rdb,
	}
	for i := range h.shards {
		h.shards[i] = &shard{clients: make(map[string]map[*subscriber]struct{})}
	}
	return h
}

func (h *EventHub) shardFor(userID string) *shard {
	f := fnv.New32a()
	f.Write([]byte(userID))
	return h.shards[f.Sum32()%shardCount]
}

// Run serves registrations until ctx is done, then closes every subscriber.
func (h *EventHub) Run(ctx context.Context) {
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(ctx, EventsChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				var m pubSubMessage
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					logger.Log.Error("Event pubsub unmarshal error", zap.Error(err))
					continue
				}
				h.deliver(m.TargetUser, m.Payload)
			}
		}()
	}

	for {
		select {
		case c := <-h.register:
			s := h.shardFor(c.userID)
			s.mu.Lock()
			if s.clients[c.userID] == nil {
				s.clients[c.userID] = make(map[*subscriber]struct{})
			}
			s.clients[c.userID][c] = struct{}{}
			s.mu.Unlock()
			monitoring.EventSubscribers.Inc()

		case c := <-h.unregister:
			h.remove(c)

		case <-ctx.Done():
			h.stop()
			return
		}
	}
}

func (h *EventHub) remove(c *subscriber) {
	s := h.shardFor(c.userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(s.clients, c.userID)
	}
	close(c.send)
	monitoring.EventSubscribers.Dec()
}

func (h *EventHub) stop() {
	close(h.done)
	closed := 0
	for _, s := range h.shards {
		s.mu.Lock()
		for userID, set := range s.clients {
			for c := range set {
				close(c.send)
				closed++
			}
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}
	monitoring.EventSubscribers.Set(0)
	logger.Log.Info("Event hub stopped", zap.Int("closedConnections", closed))
}

// Publish sends ev to every session of userID. A nil hub is a no-op.
func (h *EventHub) Publish(ctx context.Context, userID string, ev CourseEvent) {
	if h == nil || userID == "" {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("Failed to encode course event", zap.Error(err))
		return
	}

	if h.Redis != nil {
		msg, _ := json.Marshal(pubSubMessage{TargetUser: userID, Payload: payload})
		err := h.Redis.Publish(ctx, EventsChannel, msg).Err()
		if err == nil {
			return
		}
		logger.Log.Warn("Event publish failed, delivering locally", zap.Error(err))
	}
	h.deliver(userID, payload)
}

// deliver never blocks; a subscriber with a full buffer misses the event.
func (h *EventHub) deliver(userID string, payload []byte) {
	s := h.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients[userID] {
		select {
		case c.send <- payload:
			monitoring.EventsPushed.Inc()
		default:
		}
	}
}

// Subscribers reports the open sessions of userID on this instance.
func (h *EventHub) Subscribers(userID string) int {
	s := h.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID])
}

// Serve upgrades the request and streams userID's events until either side closes.
func (h *EventHub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || h.AllowOrigin == nil || h.AllowOrigin(origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.String("userID", userID), zap.Error(err))
		return
	}
	c := &subscriber{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		userID:  userID,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
