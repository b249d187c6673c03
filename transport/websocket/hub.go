package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/boxpush/game/command"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
	"github.com/wricardo/mcp-training/boxpush/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Time allowed for one inbound command to run.
	commandTimeout = 5 * time.Second
)

// Outbound events.
const (
	EventOutcomes       = "outcomes"
	EventState          = "state"
	EventError          = "error"
	EventSessionDeleted = "session_deleted"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the outbound envelope.
type Message struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
}

// Inbound is a message sent by a client. Type "command" carries exactly one
// of Text (a voice transcript), Key or Direction. Type "state" asks for a
// fresh snapshot.
type Inbound struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Key       string `json:"key,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// Commander is the part of the game service clients can drive.
type Commander interface {
	Execute(ctx context.Context, sessionID string, cmd command.Command, source service.Source) (*service.CommandResult, error)
	Voice(ctx context.Context, sessionID, transcript string) (*service.CommandResult, error)
	Key(ctx context.Context, sessionID, key string) (*service.CommandResult, error)
	GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
}

// Client is one WebSocket connection bound to a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by lower-cased session ID
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	// Outbound messages queued by BroadcastEvent
	broadcast chan *Message

	commander Commander
	logger    *slog.Logger
}

// NewHub creates a hub. commander may be nil, in which case inbound
// commands are answered with an error event.
func NewHub(commander Commander, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sessions:  make(map[string]map[*Client]bool),
		broadcast: make(chan *Message, 64),
		commander: commander,
		logger:    logger.With("component", "websocket"),
	}
}

// Run delivers queued events and returns when ctx is done, closing every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID.
// The client receives the current snapshot first.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: strings.ToLower(sessionID),
	}

	h.registerClient(client)

	if h.commander != nil {
		if state, err := h.commander.GetState(r.Context(), sessionID); err == nil {
			client.deliver(&Message{SessionID: client.sessionID, Event: EventState, Data: state})
		}
	}

	go client.writePump()
	go client.readPump()
}

// Publish implements service.Publisher. It never blocks: clients whose
// buffers are full are dropped.
func (h *Hub) Publish(sessionID string, result *service.CommandResult) {
	h.broadcastMessage(&Message{
		SessionID: strings.ToLower(sessionID),
		Event:     EventOutcomes,
		Data:      result,
	})
}

// BroadcastEvent queues a custom event for all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.broadcast <- &Message{
		SessionID: strings.ToLower(sessionID),
		Event:     event,
		Data:      data,
	}
}

// CloseSession tells every client of a deleted session and disconnects
// them.
func (h *Hub) CloseSession(sessionID string) {
	id := strings.ToLower(sessionID)
	h.broadcastMessage(&Message{SessionID: id, Event: EventSessionDeleted})

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.sessions[id] {
		h.removeLocked(client)
	}
}

// ClientCount returns the number of clients attached to a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[strings.ToLower(sessionID)])
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.logger.Debug("client registered", "session", client.sessionID, "clients", len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	h.logger.Debug("client unregistered", "session", client.sessionID, "remaining", len(clients))
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "event", message.Event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client too slow, dropping", "session", message.SessionID)
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.sessions {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}
