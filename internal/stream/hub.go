package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ShaileshBisht/DecentraLink/internal/logging"

	"github.com/redis/go-redis/v9"
)

const feedChannel = "decentralink:feed:events"

// Event is a feed change pushed to live subscribers.
type Event struct {
	Type      string    `json:"type"`
	PostID    int64     `json:"post_id"`
	CommentID int64     `json:"comment_id,omitempty"`
	Wallet    string    `json:"wallet_address"`
	At        time.Time `json:"at"`
}

// Hub fans feed events out to websocket subscribers. With redis configured,
// events travel through a pub/sub channel so every replica sees them.
type Hub struct {
	redis   *redis.Client
	log     logging.Logger
	clients map[*Client]struct{}
	mu      sync.RWMutex
	cancel  context.CancelFunc
	done    chan struct{}
}

type Client struct {
	Send chan []byte
}

func NewHub(redisClient *redis.Client, log logging.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		redis:   redisClient,
		log:     log,
		clients: map[*Client]struct{}{},
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if redisClient != nil {
		pubsub := redisClient.Subscribe(ctx, feedChannel)
		go h.subscribeRedis(ctx, pubsub)
	} else {
		close(h.done)
	}
	return h
}

func (h *Hub) Register() *Client {
	client := &Client{Send: make(chan []byte, 64)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish delivers ev to every subscriber. Failures are logged, never returned:
// live updates are best-effort and must not fail the mutation that caused them.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error(ctx, "encode feed event", "error", err)
		return
	}

	if h.redis != nil {
		err := h.redis.Publish(ctx, feedChannel, payload).Err()
		if err == nil {
			return
		}
		h.log.Warn(ctx, "redis publish failed, delivering locally", "error", err)
	}
	h.deliver(payload)
}

// Close stops the redis subscription.
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

func (h *Hub) subscribeRedis(ctx context.Context, pubsub *redis.PubSub) {
	defer close(h.done)
	defer pubsub.Close()

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
