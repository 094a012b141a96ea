package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/KevinHdezVaz/Lumorah-back/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Message is a typed event pushed to clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// PointsEvent reports a loyalty balance change.
type PointsEvent struct {
	SaldoPuntos int    `json:"saldo_puntos"`
	Motivo      string `json:"motivo"`
}

// Client is one connected websocket.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID
}

// Hub tracks connected clients per user and fans events out to them.
type Hub struct {
	userMap    map[uuid.UUID][]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage
	mu         sync.RWMutex
}

type userMessage struct {
	userID uuid.UUID
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		userMap:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *userMessage, 256),
	}
}

// Run starts the hub main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.userMap[client.userID] = append(h.userMap[client.userID], client)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.userMap[client.userID]
			for i, c := range clients {
				if c == client {
					h.userMap[client.userID] = append(clients[:i], clients[i+1:]...)
					close(client.send)
					break
				}
			}
			if len(h.userMap[client.userID]) == 0 {
				delete(h.userMap, client.userID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.userMap[msg.userID] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer, drop the event
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NotifyPoints pushes a balance change to every connection of one user.
func (h *Hub) NotifyPoints(userID uuid.UUID, balance int, reason string) {
	data, err := json.Marshal(Message{
		Type:    "points_updated",
		Payload: PointsEvent{SaldoPuntos: balance, Motivo: reason},
	})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- &userMessage{userID: userID, data: data}:
	default:
	}
}

// ServeWs upgrades an already-authenticated HTTP request.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 16),
		userID: userID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Clients only listen; any read error ends the connection.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
