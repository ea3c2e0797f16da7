package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/conneroisu/formpulse/internal/form"
	"github.com/conneroisu/formpulse/internal/logging"
	"github.com/conneroisu/formpulse/internal/widgets"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer. Matches the JSON body limit.
	maxMessageSize = maxBodyBytes

	// Outbound frames buffered per client before it counts as stalled.
	sendBuffer = 256
)

// Client is one websocket connection and its session.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	session *Session
	logger  logging.Logger
}

// enqueue queues a frame. A client whose buffer is full is closed.
func (c *Client) enqueue(msg OutboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error(context.Background(), err, "Failed to marshal message", "type", msg.Type)
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn(context.Background(), nil, "Send buffer full, dropping client")
		c.close()
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub tracks live clients.
type Hub struct {
	clients    map[string]*Client
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	ctx        context.Context
	cancel     context.CancelFunc
	logger     logging.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger logging.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Run serves register and unregister requests until ctx is done, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(ctx, "Client connected", "session", c.id, "total", n)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				c.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(ctx, "Client disconnected", "session", c.id, "total", n)
		}
	}
}

// Stop ends Run and every session.
func (h *Hub) Stop() { h.cancel() }

func (h *Hub) closeAll() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Same-host origins are always accepted; AllowedOrigins adds more.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.config.Server.AllowedOrigins,
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "origin", r.Header.Get("Origin"))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(s.hub.ctx)
	defer cancel()

	ws, err := widgets.NewSession(ctx, s.store, s.tabIDs, s.faqItems)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load widget state")
		_ = conn.Close(websocket.StatusInternalError, "state unavailable")
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	client.logger = s.logger.With("session", client.id)
	client.session = NewSession(SessionOptions{
		ID:          client.id,
		Widgets:     ws,
		Catalog:     s.catalog(r),
		Scheduler:   form.NewTimerScheduler(ctx),
		SuccessHide: s.config.Form.SuccessHide,
		FailureCue:  s.config.Form.FailureCue,
		Logger:      s.logger,
		Emit:        client.enqueue,
	})

	if !s.hub.add(client) {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer s.hub.remove(client)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		client.writePump(ctx)
	}()

	client.session.SendState(false)
	client.readPump(ctx)

	client.close()
	wg.Wait()
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// readPump feeds frames to the session until the connection ends.
func (c *Client) readPump(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway &&
				!errors.Is(err, context.Canceled) {
				c.logger.Debug(ctx, "WebSocket read ended", "error", err.Error())
			}
			return
		}
		if typ != websocket.MessageText {
			c.enqueue(errorMessage(errBinaryFrame))
			continue
		}
		_ = c.session.Handle(ctx, data)
	}
}

// writePump drains the send buffer and keeps the connection alive.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case message := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.logger.Debug(ctx, "WebSocket write failed", "error", err.Error())
				c.close()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.close()
				return
			}
		}
	}
}
