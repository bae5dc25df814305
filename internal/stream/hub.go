package stream

import (
	"context"
	"encoding/json"
	"sync"

	"backend-socialfeed/internal/logger"
	"backend-socialfeed/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FeedChannel carries feed events between instances.
const FeedChannel = "feed:events"

const (
	PostCreated   = "post.created"
	PostCommented = "post.commented"
	PostLiked     = "post.liked"
	PostUnliked   = "post.unliked"
)

type Event struct {
	Type     string `json:"type"`
	PostID   string `json:"postId"`
	Username string `json:"username,omitempty"`
}

type Client struct {
	Send chan []byte
}

// Hub fans feed events out to connected websocket clients. With redis the
// event travels through FeedChannel so clients of every instance see it;
// without redis it is delivered in process.
type Hub struct {
	redis   *redis.Client
	log     logger.Logger
	metrics *metrics.Metrics
	clients map[*Client]struct{}
	mu      sync.RWMutex

	ready  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(redisClient *redis.Client, log logger.Logger, m *metrics.Metrics) *Hub {
	h := &Hub{
		redis:   redisClient,
		log:     log,
		metrics: m,
		clients: map[*Client]struct{}{},
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	if redisClient != nil {
		go h.subscribeRedis(ctx)
	} else {
		close(h.ready)
		close(h.done)
	}
	return h
}

func (h *Hub) Register() *Client {
	client := &Client{Send: make(chan []byte, 64)}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.metrics.StreamClientAdded()
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.mu.Unlock()
	h.metrics.StreamClientRemoved()
}

// Publish never fails the caller; the write it reports on has already been applied.
func (h *Hub) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("feed event not encoded", zap.Error(err))
		return
	}

	if h.redis == nil {
		h.deliver(payload)
		return
	}
	if err := h.redis.Publish(ctx, FeedChannel, payload).Err(); err != nil {
		h.log.Warn("redis publish error", zap.String("type", event.Type), zap.Error(err))
	}
}

// Close stops the redis subscription and waits for it to exit.
func (h *Hub) Close() {
	h.cancel()
	<-h.done
}

func (h *Hub) deliver(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	defer close(h.done)

	pubsub := h.redis.Subscribe(ctx, FeedChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Warn("redis subscribe failed", zap.Error(err))
		close(h.ready)
		return
	}
	close(h.ready)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.deliver([]byte(msg.Payload))
		}
	}
}
