// server/ws.go
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirhB/tickwatch/market"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   4096,
	WriteBufferSize:  4096,
	CheckOrigin:      func(r *http.Request) bool { return true }, // local SPA
}

type wsRequest struct {
	Action  string   `json:"action"` // "subscribe" | "unsubscribe"
	Symbols []string `json:"symbols"`
}

type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// wsClient bridges one websocket connection into the engine's
// subscription registry. Each subscribed symbol holds one engine
// subscription; disconnect releases them all, so a dead socket never
// leaves observers registered against the feed.
type wsClient struct {
	conn *websocket.Conn
	send chan wsMessage

	mu     sync.Mutex
	unsubs map[string]func()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("ws upgrade", zap.Error(err))
		return
	}

	c := &wsClient{
		conn:   conn,
		send:   make(chan wsMessage, 256),
		unsubs: make(map[string]func()),
	}
	go c.writePump()
	s.readPump(c)
}

func (s *Server) readPump(c *wsClient) {
	defer func() {
		c.unsubscribeAll()
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req wsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			c.enqueue(wsMessage{Type: "error", Data: "bad request: " + err.Error()})
			continue
		}

		switch req.Action {
		case "subscribe":
			s.wsSubscribe(c, req.Symbols)
		case "unsubscribe":
			c.unsubscribe(req.Symbols)
		default:
			c.enqueue(wsMessage{Type: "error", Data: "unknown action: " + req.Action})
		}
	}
}

func (s *Server) wsSubscribe(c *wsClient, symbols []string) {
	for _, sym := range symbols {
		c.mu.Lock()
		_, already := c.unsubs[sym]
		c.mu.Unlock()
		if already {
			continue
		}

		unsub, err := s.engine.Subscribe(sym, func(d market.Data) {
			c.enqueue(wsMessage{Type: "tick", Data: d})
		})
		if err != nil {
			c.enqueue(wsMessage{Type: "error", Data: "unknown symbol: " + sym})
			continue
		}

		c.mu.Lock()
		c.unsubs[sym] = unsub
		c.mu.Unlock()

		// Snapshot so a new subscriber doesn't wait a full tick.
		if q, err := s.engine.GetCurrentPrice(sym); err == nil {
			c.enqueue(wsMessage{Type: "tick", Data: q})
		}
	}
}

func (c *wsClient) unsubscribe(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sym := range symbols {
		if unsub, ok := c.unsubs[sym]; ok {
			unsub()
			delete(c.unsubs, sym)
		}
	}
}

func (c *wsClient) unsubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sym, unsub := range c.unsubs {
		unsub()
		delete(c.unsubs, sym)
	}
}

// enqueue drops the message if the client's buffer is full; a stalled
// reader must not back up into the engine.
func (c *wsClient) enqueue(m wsMessage) {
	defer func() {
		// send may be closed concurrently by readPump teardown.
		_ = recover()
	}()
	select {
	case c.send <- m:
	default:
	}
}

func (c *wsClient) writePump() {
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(m); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
