package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"stockflow/internal/pkg/logger"
	"stockflow/internal/pkg/metrics"
	"stockflow/internal/service/store/domain"
	"stockflow/internal/service/store/domain/port"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

// StockFeed broadcasts applied stock changes to websocket subscribers.
// Clients may pass ?productId= to receive a single product only.
type StockFeed struct {
	clients    map[*feedClient]struct{}
	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan domain.StockChange
	done       chan struct{}
	count      atomic.Int64
	upgrader   websocket.Upgrader
}

var _ port.StockNotifier = (*StockFeed)(nil)

type feedClient struct {
	id        string
	productID int64
	conn      *websocket.Conn
	send      chan []byte
}

func NewStockFeed() *StockFeed {
	return &StockFeed{
		clients:    make(map[*feedClient]struct{}),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan domain.StockChange, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (f *StockFeed) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/stock", f.ServeWS)
}

// Run owns the client set until ctx is cancelled.
func (f *StockFeed) Run(ctx context.Context) error {
	defer close(f.done)
	for {
		select {
		case <-ctx.Done():
			for c := range f.clients {
				f.drop(c)
			}
			return nil
		case c := <-f.register:
			f.clients[c] = struct{}{}
			f.count.Add(1)
			metrics.StockFeedClients.Inc()
			logger.Ctx(ctx).Info().Str("client_id", c.id).Int64("product_id", c.productID).Msg("stock feed client registered")
		case c := <-f.unregister:
			if _, ok := f.clients[c]; ok {
				f.drop(c)
				logger.Ctx(ctx).Info().Str("client_id", c.id).Msg("stock feed client unregistered")
			}
		case change := <-f.broadcast:
			payload, err := json.Marshal(change)
			if err != nil {
				continue
			}
			for c := range f.clients {
				if c.productID != 0 && c.productID != change.ProductID {
					continue
				}
				select {
				case c.send <- payload:
				default:
					logger.Ctx(ctx).Warn().Str("client_id", c.id).Msg("stock feed client too slow, disconnecting")
					f.drop(c)
				}
			}
		}
	}
}

func (f *StockFeed) drop(c *feedClient) {
	delete(f.clients, c)
	close(c.send)
	f.count.Add(-1)
	metrics.StockFeedClients.Dec()
}

// Clients returns the number of registered subscribers.
func (f *StockFeed) Clients() int {
	return int(f.count.Load())
}

// NotifyStockChanged never blocks the replica consumer; changes are dropped
// when the broadcast queue is full.
func (f *StockFeed) NotifyStockChanged(ctx context.Context, change domain.StockChange) {
	select {
	case f.broadcast <- change:
	default:
		logger.Ctx(ctx).Warn().Int64("product_id", change.ProductID).Msg("stock feed queue full, change dropped")
	}
}

func (f *StockFeed) ServeWS(w http.ResponseWriter, r *http.Request) {
	var productID int64
	if raw := r.URL.Query().Get("productId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "productId must be a positive integer", http.StatusBadRequest)
			return
		}
		productID = id
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &feedClient{id: uuid.NewString(), productID: productID, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case f.register <- c:
	case <-f.done:
		_ = conn.Close()
		return
	}
	go f.writePump(c)
	go f.readPump(c)
}

// readPump discards client frames and only tracks liveness.
func (f *StockFeed) readPump(c *feedClient) {
	defer func() {
		select {
		case f.unregister <- c:
		case <-f.done:
		}
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *StockFeed) writePump(c *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
