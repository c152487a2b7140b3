package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/pkg/logger"
)

const sendBuffer = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans every saved record out to websocket subscribers
// ⭐ SSOT: 실시간 시그널 스트림은 여기서만
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *contracts.ChainMetricsRecord
	count      chan chan int
	done       chan struct{}
	logger     *logger.Logger
}

// NewHub creates a hub; call Run before serving clients
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *contracts.ChainMetricsRecord, 256),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run is the hub loop; it owns the clients map
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.WithFields(map[string]interface{}{
				"clients": len(h.clients),
				"symbol":  c.symbol,
			}).Debug("WebSocket client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case rec := <-h.broadcast:
			for c := range h.clients {
				if !c.wants(rec) {
					continue
				}
				select {
				case c.send <- rec:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("WebSocket client too slow, dropped")
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// Broadcast queues a record for every matching subscriber; never blocks the pipeline
func (h *Hub) Broadcast(rec *contracts.ChainMetricsRecord) {
	select {
	case h.broadcast <- rec:
	default:
		h.logger.WithChain(rec.Symbol, rec.ExpiryDate).Warn("Broadcast queue full, record not streamed")
	}
}

// Clients returns the number of connected subscribers
func (h *Hub) Clients(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	case <-ctx.Done():
		return 0
	}
}

// ServeWS upgrades the request; ?symbol= limits the stream to one symbol
// GET /ws/signals
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan *contracts.ChainMetricsRecord, sendBuffer),
		symbol: strings.ToUpper(r.URL.Query().Get("symbol")),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
