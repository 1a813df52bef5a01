// Package server exposes a read-only spectator feed for one table: a
// WebSocket broadcaster that relays game events and public snapshots. The
// engine core stays transport-free; this layer only subscribes to the event
// bus and serializes through the protocol package.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/tomboybathwater/chaosBattleJack/internal/game"
	"github.com/tomboybathwater/chaosBattleJack/internal/protocol"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// Server broadcasts table events to connected spectators.
type Server struct {
	addr   string
	table  *game.Table
	logger *log.Logger
	clock  quartz.Clock

	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer creates a spectator feed for the given table and subscribes it to
// the table's event bus. The clock is injectable so tests can drive the ping
// loop.
func NewServer(addr string, table *game.Table, logger *log.Logger, clock quartz.Clock) *Server {
	if clock == nil {
		clock = quartz.NewReal()
	}
	s := &Server{
		addr:   addr,
		table:  table,
		logger: logger.WithPrefix("feed"),
		clock:  clock,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
	table.EventBus().Subscribe(s)
	return s
}

// OnEvent implements game.EventSubscriber: convert and broadcast.
func (s *Server) OnEvent(event game.GameEvent) {
	msg, err := protocol.FromEvent(event)
	if err != nil {
		s.logger.Error("encoding event", "type", event.EventType(), "error", err)
		return
	}
	if msg == nil {
		return
	}
	s.broadcast(msg)
}

func (s *Server) broadcast(msg *protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debug("dropping spectator", "error", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// handleWS upgrades a spectator connection and sends the public snapshots so
// late joiners can orient themselves. Only counts, seeds and the meter go
// out; undealt card contents never leave the host.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	shoeMsg, err := protocol.NewMessage(protocol.TypeShoe, protocol.SummarizeShoe(s.table.Shoe()))
	if err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = conn.WriteJSON(shoeMsg)
	}
	meterMsg, err := protocol.NewMessage(protocol.TypeChaosMeter, protocol.FromChaos(s.table.Chaos()))
	if err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = conn.WriteJSON(meterMsg)
	}

	s.mu.Lock()
	s.clients[conn] = true
	count := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("spectator connected", "remote", r.RemoteAddr, "spectators", count)

	// Drain reads so close frames and pongs are processed; spectators have
	// nothing to say.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Start runs the HTTP listener and the keepalive ping loop until the context
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{Addr: s.addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("spectator feed listening", "addr", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := s.clock.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.pingClients()
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) pingClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// SpectatorCount returns the number of connected spectators.
func (s *Server) SpectatorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
