package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/anagrams/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope is the websocket framing of a Message
type Envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServeWebSocket upgrades the request and pushes the hub's events as JSON
// envelopes. The connection is receive-only; anything the peer sends is
// discarded.
func ServeWebSocket(w http.ResponseWriter, r *http.Request, hub *Hub, name string, logger *slog.Logger, initial ...Message) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(hub, name, transportWebSocket)
	if !hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"))
		_ = conn.Close()
		return
	}

	go client.readPump(conn)
	client.writePump(conn, initial)
}

// readPump drains the connection so control frames are handled, and
// unregisters the client once the peer goes away
func (c *Client) readPump(conn *websocket.Conn) {
	defer c.hub.Unregister(c)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump(conn *websocket.Conn, initial []Message) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for _, msg := range initial {
		if err := writeEnvelope(conn, msg); err != nil {
			return
		}
	}

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the channel
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := writeEnvelope(conn, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEnvelope(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(Envelope{Event: msg.Event, Data: msg.Data})
}
