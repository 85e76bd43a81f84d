// Package gateway is the websocket chat transport: it delivers render
// instructions to connected clients and feeds their interactions into the
// session dispatcher.
package gateway

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/user/tonpilot/backend/internal/ticker"
)

// Client is a single authenticated websocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte // Buffered channel for outbound messages
}

type directMsg struct {
	userID  string
	payload []byte
}

// Hub manages clients and routes outbound frames: broadcasts for price
// updates, per-user delivery for renders (so every device of one user stays
// in sync).
type Hub struct {
	clients    map[*Client]bool
	byUser     map[string]map[*Client]bool
	broadcast  chan []byte
	direct     chan directMsg
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	log        *zap.Logger
}

// NewHub creates and initializes a new Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMsg, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's event loop and, when feed is non-nil, forwards its
// price updates to all clients.
func (h *Hub) Run(feed *ticker.Feed) {
	h.log.Info("starting chat hub")
	if feed != nil {
		go h.listenToPriceUpdates(feed)
	}

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			if h.byUser[client.UserID] == nil {
				h.byUser[client.UserID] = make(map[*Client]bool)
			}
			h.byUser[client.UserID][client] = true
			h.mu.Unlock()
			h.log.Info("client registered", zap.String("user", client.UserID))

		case client := <-h.Unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case msg := <-h.direct:
			h.mu.Lock()
			for client := range h.byUser[msg.userID] {
				h.deliver(client, msg.payload)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				h.deliver(client, message)
			}
			h.mu.Unlock()
		}
	}
}

// deliver sends to one client, dropping the client if its buffer is full.
// Callers must hold the write lock.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		h.log.Warn("client send buffer full, dropping connection", zap.String("user", client.UserID))
		h.drop(client)
	}
}

// drop removes a client. Callers must hold the write lock.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if peers := h.byUser[client.UserID]; peers != nil {
		delete(peers, client)
		if len(peers) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
	close(client.Send)
	h.log.Info("client unregistered", zap.String("user", client.UserID))
}

// SendToUser queues a frame for every connection of one user.
func (h *Hub) SendToUser(userID string, frame OutboundFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("error marshalling outbound frame", zap.Error(err))
		return
	}
	h.direct <- directMsg{userID: userID, payload: payload}
}

// listenToPriceUpdates forwards ticker updates to all connected clients.
func (h *Hub) listenToPriceUpdates(feed *ticker.Feed) {
	for update := range feed.Updates {
		u := update
		payload, err := json.Marshal(OutboundFrame{Type: "price", Price: &u})
		if err != nil {
			h.log.Error("error marshalling price update", zap.Error(err))
			continue
		}
		h.broadcast <- payload
	}
}
