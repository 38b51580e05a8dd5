package inspect

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/tablenode/pkg/component"
)

// Batch is one render's patch ops as streamed to websocket clients.
type Batch struct {
	Component string  `json:"component"`
	Mutations int     `json:"mutations"`
	Duration  string  `json:"duration"`
	Error     string  `json:"error,omitempty"`
	Ops       []OpDTO `json:"ops"`
}

// OpDTO is the wire form of a patch op.
type OpDTO struct {
	Op         string `json:"op"`
	Path       string `json:"path"`
	ParentPath string `json:"parentPath,omitempty"`
	Key        string `json:"key,omitempty"`
	Index      int    `json:"index"`
	Type       string `json:"type,omitempty"`
}

// NewBatch converts a render report to its wire form.
func NewBatch(info component.RenderInfo) Batch {
	b := Batch{
		Component: info.Component.String(),
		Mutations: info.Mutations,
		Duration:  info.Duration.String(),
		Ops:       make([]OpDTO, 0, len(info.Ops)),
	}
	if info.Err != nil {
		b.Error = info.Err.Error()
	}
	for _, op := range info.Ops {
		dto := OpDTO{
			Op:         op.Op.String(),
			Path:       op.Path,
			ParentPath: op.ParentPath,
			Key:        op.Key,
			Index:      op.Index,
		}
		if op.Node != nil {
			dto.Type = string(op.Node.Type)
		}
		b.Ops = append(b.Ops, dto)
	}
	return b
}

// Publish queues a render's batch for every connected client.
// It never blocks; a client whose queue is full misses the batch.
func (s *Server) Publish(info component.RenderInfo) {
	data, err := json.Marshal(NewBatch(info))
	if err != nil {
		s.logger.Error("encode batch", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.dropped.Add(1)
			s.logger.Warn("dropped patch batch", "error", ErrSlowClient, "remote", c.remote())
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, s.clientBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writeLoop(c)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.remove(c)
}

func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
}

func (c *client) remote() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Dropped returns how many batches were dropped for slow clients.
func (s *Server) Dropped() int64 {
	return s.dropped.Load()
}

// Close disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}
