// Package sse routes server-sent events to connected clients. The hub keys
// clients by user so preference and theme changes reach only the owning
// user's other sessions, while layout publishes fan out to everyone.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

type EventName string

const (
	EventPreferenceSaved EventName = "preference.saved"
	EventLayoutPublished EventName = "layout.published"
	EventBindingUpdated  EventName = "binding.updated"
)

type Message struct {
	Event EventName `json:"event"`
	Data  any       `json:"data,omitempty"`
}

// clientBufferSize bounds how far a slow consumer can fall behind before we
// start dropping messages for it. SSE clients refetch on reconnect, so a
// dropped message costs one reload, never correctness.
const clientBufferSize = 16

const heartbeatInterval = 15 * time.Second

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	out    chan Message
}

// Receive returns the client's message stream. The channel closes when the
// client is unregistered.
func (c *Client) Receive() <-chan Message { return c.out }

type Hub struct {
	mu      sync.RWMutex
	log     *logger.Logger
	byUser  map[uuid.UUID]map[*Client]struct{}
	clients map[*Client]struct{}
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:     log.With("component", "SSEHub"),
		byUser:  make(map[uuid.UUID]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// Register adds a connection for the user and returns its client handle.
// The caller must Unregister when the connection ends.
func (h *Hub) Register(userID uuid.UUID) *Client {
	c := &Client{
		ID:     uuid.New(),
		UserID: userID,
		out:    make(chan Message, clientBufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	set, ok := h.byUser[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.byUser[userID] = set
	}
	set[c] = struct{}{}

	h.log.Debug("sse client connected", "client_id", c.ID, "user_id", userID)
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if set, ok := h.byUser[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	close(c.out)

	h.log.Debug("sse client disconnected", "client_id", c.ID, "user_id", c.UserID)
}

// SendToUser delivers the message to every connection the user has open.
// Sends never block; a client whose buffer is full loses the message.
func (h *Hub) SendToUser(userID uuid.UUID, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		h.send(c, msg)
	}
}

// Broadcast delivers the message to every connected client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		h.send(c, msg)
	}
}

func (h *Hub) send(c *Client, msg Message) {
	select {
	case c.out <- msg:
	default:
		h.log.Debug("sse client buffer full, dropping message",
			"client_id", c.ID, "event", msg.Event)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unregisters every client, closing their streams.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.out)
	}
	h.clients = make(map[*Client]struct{})
	h.byUser = make(map[uuid.UUID]map[*Client]struct{})
}

// ServeHTTP streams the client's messages until the request context ends or
// the client is unregistered. The caller registers the client first and
// unregisters it after this returns.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.out:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("marshal sse message", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, data)
			flusher.Flush()
		}
	}
}
