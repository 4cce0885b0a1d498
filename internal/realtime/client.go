package realtime

import (
	"net/http"
	"time"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from a websocket peer
	pongWait = 60 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

const (
	transportSSE       = "sse"
	transportWebSocket = "websocket"
)

// Client represents one connected subscriber of a game
type Client struct {
	hub         *Hub
	name        string
	transport   string
	send        chan Message
	connectedAt time.Time
}

// NewClient creates a new client. The name is informational only; anyone
// may watch a game.
func NewClient(hub *Hub, name, transport string) *Client {
	return &Client{
		hub:         hub,
		name:        name,
		transport:   transport,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams the hub's events to w until the request ends or the hub
// closes. The initial messages are written before anything broadcast.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, name string, initial ...Message) {
	// Check if SSE is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Create and register client
	client := NewClient(hub, name, transportSSE)
	if !hub.Register(client) {
		http.Error(w, "Game closed", http.StatusGone)
		return
	}

	// Ensure cleanup on disconnect
	defer hub.Unregister(client)

	for _, msg := range initial {
		if _, err := w.Write(formatSSEMessage(string(msg.Event), string(msg.Data))); err != nil {
			return
		}
	}
	flusher.Flush()

	// Create ticker for keepalive
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// Handle client connection
	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(formatSSEMessage(string(message.Event), string(message.Data))); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// Send keepalive comment
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
