// Package inspect serves a debug view of a running component over HTTP.
//
// Routes:
//
//	GET /tree     JSON snapshot of the mounted tree
//	GET /pool     per-type view pool statistics
//	GET /metrics  Prometheus exposition
//	GET /ws       websocket stream of applied patch batches
//
// Tree and pool reads run on the component's loop. Publishing never blocks
// the loop: each websocket client has a bounded queue and batches that do
// not fit are dropped.
package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	tnerrors "github.com/vango-dev/tablenode/internal/errors"
	"github.com/vango-dev/tablenode/pkg/component"
	"github.com/vango-dev/tablenode/pkg/render"
)

// ErrSlowClient is logged when a client's queue is full and a batch is dropped.
var ErrSlowClient = tnerrors.New("E601")

const writeWait = 5 * time.Second

// Target is the component being inspected.
type Target interface {
	Tree() *render.Tree
	Applier() *render.Applier
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer sets the metrics source. Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithClientBuffer sets how many batches are queued per websocket client.
func WithClientBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.clientBuffer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server serves the inspector routes.
type Server struct {
	loop         *component.Loop
	target       Target
	gatherer     prometheus.Gatherer
	clientBuffer int
	logger       *slog.Logger
	upgrader     websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	dropped atomic.Int64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates an inspector for target, reading it on loop.
func New(loop *component.Loop, target Target, opts ...Option) *Server {
	s := &Server{
		loop:         loop,
		target:       target,
		gatherer:     prometheus.DefaultGatherer,
		clientBuffer: 16,
		logger:       slog.Default(),
		clients:      make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local debugging tool
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the inspector routes. Callers may mount more routes on it.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/tree", s.handleTree)
	r.Get("/pool", s.handlePool)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWebSocket)
	return r
}

// TreeResponse is the body of GET /tree.
type TreeResponse struct {
	Nodes        int              `json:"nodes"`
	PendingExits int              `json:"pendingExits"`
	Root         *render.Snapshot `json:"root"`
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	var resp TreeResponse
	err := s.OnLoop(r.Context(), func() {
		if tree := s.target.Tree(); tree != nil {
			resp.Root = tree.Snapshot()
			resp.Nodes = resp.Root.Count()
		}
		resp.PendingExits = s.target.Applier().PendingExits()
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.target.Applier().Pool().Stats())
}

// OnLoop runs fn on the loop and waits for it to finish or ctx to end.
func (s *Server) OnLoop(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !s.loop.Post(func() {
		defer close(done)
		fn()
	}) {
		return component.ErrDetached.WithDetail("loop closed")
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
