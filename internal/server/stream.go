package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
	streamBufferSize   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed is same-deployment monitoring, dashboards included.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans served predictions out to websocket subscribers. Slow
// subscribers are dropped rather than allowed to stall the feed.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Run keeps subscriber connections alive until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.pingAll()
		}
	}
}

// Publish broadcasts one event to every subscriber. Never blocks the
// prediction path: full subscriber buffers lose the event.
func (h *Hub) Publish(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal stream event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- data:
		default:
			log.Warn().Str("remote", conn.RemoteAddr().String()).Msg("dropping stream event for slow subscriber")
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to the
// prediction feed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ch := make(chan []byte, streamBufferSize)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("stream subscriber connected")

	go h.writePump(conn, ch)
	go h.readPump(conn)
}

// writePump is the sole writer for its connection. A nil payload on
// the channel is a keep-alive ping.
func (h *Hub) writePump(conn *websocket.Conn, ch chan []byte) {
	for data := range ch {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		msgType := websocket.TextMessage
		if data == nil {
			msgType = websocket.PingMessage
		}
		if err := conn.WriteMessage(msgType, data); err != nil {
			h.drop(conn)
			return
		}
	}
}

// readPump discards inbound frames; its job is to notice the peer
// going away and unsubscribe it.
func (h *Hub) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *Hub) pingAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- nil:
		default:
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()

	if ok {
		conn.Close()
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("stream subscriber disconnected")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		close(ch)
		conn.Close()
		delete(h.clients, conn)
	}
}
