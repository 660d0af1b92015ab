package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/ballbattle/internal/arena"
	"github.com/playmatatu/ballbattle/internal/auth"
	"github.com/playmatatu/ballbattle/internal/config"
	"github.com/playmatatu/ballbattle/internal/game"
	"github.com/vmihailenco/msgpack/v5"
)

// WSMessage is a client to server frame. Pointer messages carry field
// coordinates in Data.
type WSMessage struct {
	Type string     `json:"type" msgpack:"type"`
	Data *PointData `json:"data,omitempty" msgpack:"data,omitempty"`
}

type PointData struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

var spectatorSeq atomic.Int64

// HandleWebSocket upgrades a connection onto a match. A valid ?pt= player
// token grants control of the home side; without one the client spectates.
// ?enc=msgpack switches outgoing frames to binary msgpack.
func HandleWebSocket(h *Hub, gm *game.GameManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameToken := c.Param("token")
		if _, err := gm.GetSession(gameToken); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}

		player := false
		if pt := c.Query("pt"); pt != "" {
			bound, err := auth.ParsePlayerToken(cfg.JWTSecret, pt)
			if err != nil || bound != gameToken {
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid player token"})
				return
			}
			player = true
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		id := gameToken + ":player"
		if !player {
			id = fmt.Sprintf("%s:spectator:%d", gameToken, spectatorSeq.Add(1))
		}
		client := &Client{
			hub:       h,
			gm:        gm,
			conn:      conn,
			id:        id,
			gameToken: gameToken,
			player:    player,
			binary:    c.Query("enc") == "msgpack",
			send:      make(chan []byte, 256),
		}

		h.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads pointer and control messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		frameType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if frameType == websocket.BinaryMessage {
			err = msgpack.Unmarshal(raw, &msg)
		} else {
			err = json.Unmarshal(raw, &msg)
		}
		if err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage applies one client message to the match.
func (c *Client) handleMessage(msg WSMessage) {
	s, err := c.gm.GetSession(c.gameToken)
	if err != nil {
		c.sendError("Match not found")
		return
	}

	switch msg.Type {
	case "get_state":
		c.sendMessage(Message{Type: "snapshot", Data: s.Match.Snapshot()})
		return
	case "press_start", "press_move", "press_end", "restart":
	default:
		c.sendError("Unknown message type")
		return
	}

	if !c.player {
		c.sendError("Spectators cannot control the match")
		return
	}
	if msg.Type != "press_move" {
		c.gm.Touch(c.gameToken)
	}

	if msg.Type == "restart" {
		s.Match.Restart()
		c.hub.BroadcastSnapshot(c.gameToken, s.Match.Snapshot())
		return
	}

	if msg.Data == nil || !finite(msg.Data.X) || !finite(msg.Data.Y) {
		c.sendError("Invalid pointer data")
		return
	}
	p := arena.NewVec2(msg.Data.X, msg.Data.Y)

	switch msg.Type {
	case "press_start":
		c.sendMessage(Message{Type: "drag", Data: s.Match.OnPressStart(p)})
	case "press_move":
		c.sendMessage(Message{Type: "drag", Data: s.Match.OnPressMove(p)})
	case "press_end":
		if l := s.Match.OnPressEnd(p); l != nil {
			c.hub.BroadcastToGame(c.gameToken, Message{Type: "launch", Data: l})
			return
		}
		c.sendMessage(Message{Type: "drag", Data: arena.DragState{}})
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
