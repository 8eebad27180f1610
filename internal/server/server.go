// Package server wires the chat hub to HTTP: WebSocket upgrades, health
// output, and the built-in chat page, plus tracking of live client pumps so
// shutdown can wait for them.
package server

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/chatroom/internal/chat"
)

// Server is the transport shell around one chat.Hub.
type Server struct {
	cfg      Config
	hub      *chat.Hub
	handler  chat.SessionHandler
	upgrader websocket.Upgrader

	mu      sync.Mutex
	closing bool
	clients sync.WaitGroup
}

// New creates a Server serving hub with cfg. A nil hub gets a fresh one.
func New(cfg Config, hub *chat.Hub) *Server {
	cfg = cfg.Sanitize()
	if hub == nil {
		hub = chat.NewHub(chat.NewRegistry())
	}

	policy := newOriginPolicy(cfg.AllowedOrigins)
	return &Server{
		cfg:     cfg,
		hub:     hub,
		handler: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.checkOrigin,
		},
	}
}

// Hub returns the hub the server feeds.
func (s *Server) Hub() *chat.Hub {
	return s.hub
}

// track registers client with its handler and starts serving it unless
// shutdown has begun. Registration happens under s.mu so a concurrent
// Shutdown either rejects the client or sees it in the hub's snapshot.
func (s *Server) track(client *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	client.handler.OnConnect(client)
	s.clients.Add(1)
	go func() {
		defer s.clients.Done()
		client.Run()
	}()
	return true
}

// Shutdown refuses new WebSocket clients, closes every connection registered
// with the hub, and waits for their pumps to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	log.Println("Shutting down all client connections...")
	s.hub.Shutdown()

	done := make(chan struct{})
	go func() {
		s.clients.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Client shutdown completed successfully")
		return nil
	case <-ctx.Done():
		log.Println("Client shutdown timeout reached, some connections may still be open")
		return ctx.Err()
	}
}
