package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/ballbattle/internal/arena"
	"github.com/playmatatu/ballbattle/internal/game"
	"github.com/vmihailenco/msgpack/v5"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by middleware.WebSocketCORSCheck on the route
	},
}

// Message is every server to client frame.
type Message struct {
	Type    string      `json:"type" msgpack:"type"`
	Data    interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
	Message string      `json:"message,omitempty" msgpack:"message,omitempty"`
}

// encode renders a message as a JSON text frame or a msgpack binary frame.
func encode(msg Message, binary bool) ([]byte, error) {
	if binary {
		return msgpack.Marshal(&msg)
	}
	return json.Marshal(msg)
}

// Client represents a connected WebSocket client
type Client struct {
	hub       *Hub
	gm        *game.GameManager
	conn      *websocket.Conn
	id        string
	gameToken string
	player    bool // holds a player token; spectators only watch
	binary    bool // wants msgpack frames
	send      chan []byte
}

// Hub maintains the set of active clients
type Hub struct {
	clients    map[string]*Client            // client id -> Client
	gameRooms  map[string]map[string]*Client // game token -> client id -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// GameHub is the single hub for all matches.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go GameHub.Run()
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		gameRooms:  make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.add(client)
			if client.gm != nil {
				if s, err := client.gm.GetSession(client.gameToken); err == nil {
					client.sendMessage(Message{Type: "snapshot", Data: s.Match.Snapshot()})
				}
			}
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.clients[client.id]; exists {
		log.Printf("[WS] Player for match %s reconnecting - closing old connection", client.gameToken)
		if err := old.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
			log.Printf("[WS] Error writing close control to old client %s: %v", old.id, err)
		}
		old.conn.Close()
		if room, ok := h.gameRooms[old.gameToken]; ok {
			delete(room, old.id)
		}
	}

	h.clients[client.id] = client
	if _, exists := h.gameRooms[client.gameToken]; !exists {
		h.gameRooms[client.gameToken] = make(map[string]*Client)
	}
	h.gameRooms[client.gameToken][client.id] = client
	log.Printf("[WS] Client %s connected to match %s (player=%v, room_size=%d)", client.id, client.gameToken, client.player, len(h.gameRooms[client.gameToken]))
}

// remove forgets a client whose read loop has exited and closes its send
// channel. A client already replaced by a reconnect is no longer in the maps.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[client.id]; ok && cur == client {
		delete(h.clients, client.id)
		if room, exists := h.gameRooms[client.gameToken]; exists {
			delete(room, client.id)
			if len(room) == 0 {
				delete(h.gameRooms, client.gameToken)
			}
		}
		log.Printf("[WS] Client %s disconnected from match %s", client.id, client.gameToken)
	}
	close(client.send)
}

// RoomSize is the number of clients watching a match.
func (h *Hub) RoomSize(gameToken string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameRooms[gameToken])
}

// BroadcastToGame sends a message to every client of a match, encoding it at
// most once per frame format.
func (h *Hub) BroadcastToGame(gameToken string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.gameRooms[gameToken]
	if !exists {
		return
	}

	var frames [2][]byte
	for _, client := range room {
		idx := 0
		if client.binary {
			idx = 1
		}
		if frames[idx] == nil {
			data, err := encode(msg, client.binary)
			if err != nil {
				log.Printf("[WS] Error encoding %s message: %v", msg.Type, err)
				return
			}
			frames[idx] = data
		}
		select {
		case client.send <- frames[idx]:
		default:
			// Client's buffer is full
			log.Printf("[WS] Send buffer full for client %s in match %s, dropping %s", client.id, gameToken, msg.Type)
		}
	}
}

// BroadcastSnapshot implements game.Broadcaster.
func (h *Hub) BroadcastSnapshot(gameToken string, snap arena.Snapshot) {
	h.BroadcastToGame(gameToken, Message{Type: "snapshot", Data: snap})
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.binary {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendMessage queues a message for this client only.
func (c *Client) sendMessage(msg Message) {
	data, err := encode(msg, c.binary)
	if err != nil {
		log.Printf("[WS] Error encoding %s message: %v", msg.Type, err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Dropped %s for client %s (buffer full)", msg.Type, c.id)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendMessage(Message{Type: "error", Message: message})
}
