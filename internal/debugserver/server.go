// Package debugserver exposes a WebSocket + static-asset HTTP endpoint
// for the inspector: a mux/upgrader pair wired to the hub.Broadcaster
// built on engine.Controller, serving the minified asset from
// internal/assets.
package debugserver

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/soar/xidishim/internal/hub"
)

// Server serves the debug inspector's WebSocket stream and static asset.
type Server struct {
	log        hclog.Logger
	hub        *hub.Hub
	bcast      *hub.Broadcaster
	assetFS    fs.FS
	addr       string
	httpServer *http.Server
}

// New builds a Server bound to h/b, serving assetFS at "/" and the
// WebSocket stream at "/ws".
func New(log hclog.Logger, h *hub.Hub, b *hub.Broadcaster, assetFS fs.FS, addr string) *Server {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Server{log: log.Named("debugserver"), hub: h, bcast: b, assetFS: assetFS, addr: addr}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := hub.NewClient(s.hub, conn)
	s.hub.Register(client)
	s.bcast.SendInitialState(client)

	go client.WritePump()
	go client.ReadPump()
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/", http.FileServer(http.FS(s.assetFS)))

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}
	s.log.Info("listening", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("shutting down")
	return s.httpServer.Shutdown(ctx)
}
