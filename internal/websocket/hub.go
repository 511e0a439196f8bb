package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"regdesk-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ClusterChannel is the redis channel every instance publishes to and listens on
const ClusterChannel = "regdesk_cluster_events"

// Envelope is the frame written to admin sockets
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

// Hub fans messages out to every connected admin socket. With redis
// configured, broadcasts also reach sockets held by other instances; an
// instance ignores its own redis echo.
type Hub struct {
	// Registered clients: admin id -> connections (multi-tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb    *redis.Client
	origin string
	ready  chan struct{}
	done   chan struct{}

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, origin string, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		origin:     origin,
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Ready closes once the redis subscription is live, or immediately without redis
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	} else {
		close(h.ready)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.AdminID] = append(h.clients[client.AdminID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"admin_id": client.AdminID})

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
		}
	}
}

// removeLocked drops a client and closes its send channel exactly once.
// Caller holds h.mu for writing.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.AdminID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.AdminID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.AdminID]) == 0 {
		delete(h.clients, client.AdminID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"admin_id": client.AdminID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// deliverLocal writes to every local socket; slow consumers are dropped.
func (h *Hub) deliverLocal(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				slow = append(slow, client)
			}
		}
	}
	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"admin_id": client.AdminID})
		h.removeLocked(client)
	}
}

// Broadcast sends a typed frame to every admin on every instance.
func (h *Hub) encode(msgType string, payload interface{}) ([]byte, bool) {
	data, err := json.Marshal(Envelope{Type: msgType, Data: payload})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode broadcast", map[string]interface{}{"error": err.Error(), "type": msgType})
		return nil, false
	}
	return data, true
}

// Broadcast delivers to local sockets and fans out to every other instance.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	data, ok := h.encode(msgType, payload)
	if !ok {
		return
	}

	h.deliverLocal(data)

	if h.rdb != nil {
		msg, _ := json.Marshal(clusterMessage{Origin: h.origin, Message: data})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, msg).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

// BroadcastLocal reaches only sockets connected to this instance.
// Used for state each instance computes on its own, like expiry alerts.
func (h *Hub) BroadcastLocal(msgType string, payload interface{}) {
	if data, ok := h.encode(msgType, payload); ok {
		h.deliverLocal(data)
	}
}

// leave unregisters a client unless the hub has already stopped
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	// Receive blocks until the subscription is confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error("Hub", "Redis subscription failed, running local only", map[string]interface{}{"error": err.Error()})
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
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.origin {
				continue
			}
			h.deliverLocal(payload.Message)
		}
	}
}
