package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries envelopes between instances sharing one Redis.
const ClusterChannel = "offline_chat_status"

type Hub struct {
	// ClientID -> connections (one client may hold several tabs)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Optional. When set, every broadcast is mirrored to other instances.
	rdb    *redis.Client
	origin string

	logger logger.ILogger
}

var _ events.Publisher = (*Hub)(nil)

func NewHub(rdb *redis.Client, instanceID string, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		origin:     instanceID,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = append(h.clients[client.id], client)
			h.mu.Unlock()
			h.logger.Info("HUB", "Client registered", map[string]interface{}{"client_id": client.id})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.id]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.id] = append(clients[:i], clients[i+1:]...)
			close(client.send)
			break
		}
	}
	if len(h.clients[client.id]) == 0 {
		delete(h.clients, client.id)
		h.logger.Info("HUB", "Client unregistered", map[string]interface{}{"client_id": client.id})
	}
}

// ConnectedClients returns the number of distinct client ids with at least
// one open connection.
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts event to every connected client. It lets the hub stand
// in for the broker when NATS is not configured.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(events.ToEnvelope(event))
	if err != nil {
		return err
	}
	h.deliver(data)

	if h.rdb != nil {
		payload, err := json.Marshal(clusterMessage{Origin: h.origin, Message: data})
		if err != nil {
			return err
		}
		if err := h.rdb.Publish(ctx, ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("HUB", "Failed to mirror event to Redis", map[string]interface{}{
				"event": event.EventType(),
				"error": err.Error(),
			})
		}
	}
	return nil
}

// deliver never blocks; a client whose buffer is full is dropped.
func (h *Hub) deliver(data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.send <- data:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("HUB", "Client send buffer full, dropping connection", map[string]interface{}{
			"client_id": client.id,
		})
		h.remove(client)
	}
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("HUB", "Malformed cluster message", map[string]interface{}{"error": err.Error()})
			continue
		}
		// Our own broadcasts were already delivered locally.
		if payload.Origin == h.origin {
			continue
		}
		h.deliver(payload.Message)
	}
}
