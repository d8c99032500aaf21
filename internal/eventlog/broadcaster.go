package eventlog

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/fairbook/lobsim/internal/domain"
	"github.com/fairbook/lobsim/internal/snapshot"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsClient is one connected spectator. Its send channel is buffered;
// when it is full the record is dropped for that client rather than
// allowed to block the sink.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WSBroadcaster is an alternate Logger backing that fans every record
// out to connected spectator clients instead of a file, per spec.md
// §6's "implementation free to back with in-memory buffers or tabular
// export" — here the export is a live WebSocket feed. Grounded on the
// hub/client channel pattern of internal/api/stream.go.
type WSBroadcaster struct {
	mu      sync.RWMutex
	clients map[*wsClient]bool
	dropped uint64
}

// NewWSBroadcaster creates an empty broadcaster. Call ServeHTTP from
// an http.Server to accept spectator connections.
func NewWSBroadcaster() *WSBroadcaster {
	return &WSBroadcaster{clients: make(map[*wsClient]bool)}
}

// ServeHTTP upgrades the connection and registers the client until it
// disconnects.
func (b *WSBroadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &wsClient{conn: conn, send: make(chan []byte, 256)}

	b.mu.Lock()
	b.clients[client] = true
	b.mu.Unlock()

	go b.writePump(client)
}

func (b *WSBroadcaster) writePump(c *wsClient) {
	defer func() {
		b.mu.Lock()
		delete(b.clients, c)
		b.mu.Unlock()
		c.conn.Close()
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (b *WSBroadcaster) broadcast(rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		b.dropped++
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.send <- data:
		default:
			b.dropped++
		}
	}
}

func (b *WSBroadcaster) RecordTrade(trade domain.Trade) {
	b.broadcast(Record{Kind: RecordTrade, Time: trade.Timestamp, Trade: &trade})
}

func (b *WSBroadcaster) RecordL1(time float64, bestBid, bestAsk *domain.Price) {
	b.broadcast(Record{Kind: RecordL1, Time: time, BestBid: bestBid, BestAsk: bestAsk})
}

func (b *WSBroadcaster) RecordL2(time float64, bids, asks []snapshot.Level) {
	b.broadcast(Record{Kind: RecordL2, Time: time, Bids: bids, Asks: asks})
}

func (b *WSBroadcaster) RecordInventory(time float64, agentID string, inventory int64) {
	b.broadcast(Record{Kind: RecordInventory, Time: time, AgentID: agentID, Inventory: inventory})
}

// Dropped returns the number of records dropped because a client's
// send buffer was full or marshaling failed.
func (b *WSBroadcaster) Dropped() uint64 { return b.dropped }

// Close disconnects all clients.
func (b *WSBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		close(c.send)
		delete(b.clients, c)
	}
	return nil
}
