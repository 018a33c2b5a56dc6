package websocket

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/domain/model"
	"nftStatApp/internal/domain/service"
	"nftStatApp/internal/domain/useCases"
	"nftStatApp/internal/lib/logger/sl"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// Message types pushed to websocket clients.
const (
	MessageTransactions = "transactions_updated"
	MessageGlobalStats  = "global_stats_updated"
	MessagePriceHistory = "price_history_updated"
)

// Message is the frame envelope sent to clients.
type Message struct {
	Type    string `json:"type"`
	AssetID string `json:"asset_id,omitempty"`
	Data    any    `json:"data"`
}

// WebSocketBroadcaster pushes analytics store notifications to websocket clients.
// It is registered on the store as an Observer.
type WebSocketBroadcaster struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
	log      *slog.Logger
}

var (
	_ useCases.Broadcaster = (*WebSocketBroadcaster)(nil)
	_ service.Observer     = (*WebSocketBroadcaster)(nil)
)

func NewWebSocketBroadcaster(log *slog.Logger) *WebSocketBroadcaster {
	return &WebSocketBroadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log.With(slog.String("component", "websocket")),
	}
}

func (b *WebSocketBroadcaster) TransactionsUpdated(transactions []model.TransactionRecord) {
	b.BroadcastTransactions(transactions)
}

func (b *WebSocketBroadcaster) GlobalStatsUpdated(stats model.GlobalMarketStats) {
	b.BroadcastGlobalStats(stats)
}

func (b *WebSocketBroadcaster) AssetPriceHistoryUpdated(assetID string, history model.AssetPriceHistory) {
	b.BroadcastPriceHistory(assetID, history)
}

func (b *WebSocketBroadcaster) BroadcastTransactions(transactions []model.TransactionRecord) {
	b.broadcast(Message{Type: MessageTransactions, Data: dto.FromTransactions(transactions)})
}

func (b *WebSocketBroadcaster) BroadcastGlobalStats(stats model.GlobalMarketStats) {
	b.broadcast(Message{Type: MessageGlobalStats, Data: dto.FromGlobalStats(stats)})
}

func (b *WebSocketBroadcaster) BroadcastPriceHistory(assetID string, history model.AssetPriceHistory) {
	b.broadcast(Message{Type: MessagePriceHistory, AssetID: assetID, Data: dto.FromPriceHistory(history)})
}

// ClientCount returns the number of connected clients.
func (b *WebSocketBroadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *WebSocketBroadcaster) broadcast(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.clients) == 0 {
		return
	}

	msg, err := json.Marshal(m)
	if err != nil {
		b.log.Error("failed to marshal message", slog.String("type", m.Type), sl.Err(err))
		return
	}
	for c := range b.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.log.Warn("websocket write error, dropping client", sl.Err(err))
			c.Close()
			delete(b.clients, c)
		}
	}
}

// Handler returns an http.HandlerFunc to accept websocket connections.
func (b *WebSocketBroadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.log.Warn("websocket upgrade error", sl.Err(err))
			return
		}
		b.mu.Lock()
		b.clients[conn] = struct{}{}
		b.mu.Unlock()

		// Read loop detects closed connections
		go func() {
			defer func() {
				b.mu.Lock()
				delete(b.clients, conn)
				b.mu.Unlock()
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}
}
