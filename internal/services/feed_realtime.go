package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/planthead/planthead-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// FeedChannel is the Redis pub/sub channel carrying feed events.
const FeedChannel = "feed:events"

// Feed event types.
const (
	FeedPostCreated = "post_created"
	FeedPostLiked   = "post_liked"
)

// FeedEvent represents the payload broadcast over Redis and WebSocket.
type FeedEvent struct {
	Type      string       `json:"type"`
	PostID    string       `json:"post_id"`
	Post      *models.Post `json:"post,omitempty"`
	Likes     int          `json:"likes"`
	Timestamp time.Time    `json:"timestamp"`
}

// FeedPublisher delivers feed events to subscribers.
type FeedPublisher interface {
	PublishFeedEvent(ctx context.Context, event FeedEvent) error
}

// FeedConn is the minimal interface our WebSocket implementation must satisfy.
type FeedConn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

const (
	// feedSendBuffer bounds the events queued for one connection. A client
	// that falls this far behind is dropped.
	feedSendBuffer   = 64
	feedWriteTimeout = 10 * time.Second
)

type feedClient struct {
	conn FeedConn
	send chan FeedEvent
}

// FeedHub is the registry of this process's feed connections. Each
// connection has one writer goroutine, so events reach it in publish order.
type FeedHub struct {
	mu      sync.RWMutex
	clients map[string]*feedClient
}

func NewFeedHub() *FeedHub {
	return &FeedHub{clients: make(map[string]*feedClient)}
}

// Register adds a connection, starts its writer and returns its id.
func (h *FeedHub) Register(conn FeedConn) string {
	id := uuid.New().String()
	c := &feedClient{conn: conn, send: make(chan FeedEvent, feedSendBuffer)}
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()

	go h.writeLoop(id, c)
	return id
}

func (h *FeedHub) writeLoop(id string, c *feedClient) {
	for event := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := c.conn.WriteJSON(event); err != nil {
			log.Printf("error writing feed event to websocket: %v", err)
			h.drop(id)
			return
		}
	}
}

// Unregister removes a connection and stops its writer. It is safe to call
// more than once.
func (h *FeedHub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *FeedHub) drop(id string) {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.Unregister(id)
	c.conn.Close()
}

// Len reports the number of registered connections.
func (h *FeedHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FanOut queues an event for every local connection without blocking.
// Connections whose queue is full are dropped.
func (h *FeedHub) FanOut(event FeedEvent) {
	var slow []string

	h.mu.RLock()
	for id, c := range h.clients {
		select {
		case c.send <- event:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		log.Printf("Feed subscriber %s is too slow, dropping", id)
		h.drop(id)
	}
}

// PublishFeedEvent fans out locally. It is used when Redis is not configured.
func (h *FeedHub) PublishFeedEvent(_ context.Context, event FeedEvent) error {
	h.FanOut(event)
	return nil
}

// RedisFeed publishes feed events through Redis so every instance's hub
// receives them.
type RedisFeed struct {
	client  *redis.Client
	hub     *FeedHub
	started sync.Once
}

func NewRedisFeed(client *redis.Client, hub *FeedHub) *RedisFeed {
	return &RedisFeed{client: client, hub: hub}
}

// Start ensures a single shared Redis listener per instance.
func (f *RedisFeed) Start(ctx context.Context) {
	f.started.Do(func() {
		go f.run(ctx)
	})
}

func (f *RedisFeed) run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := f.client.Subscribe(ctx, FeedChannel)
			defer pubsub.Close()

			log.Printf("✅ Feed Redis subscriber started (channel: %s)", FeedChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("Redis subscriber error: %v", err)
					select {
					case <-ctx.Done():
						return
					case <-time.After(backoff):
					}
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event FeedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal feed event: %v", err)
					continue
				}

				f.hub.FanOut(event)
			}
		}()
	}
}

func (f *RedisFeed) PublishFeedEvent(ctx context.Context, event FeedEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, FeedChannel, data).Err()
}
