// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in chat page.
package server

import (
	_ "embed"
	"fmt"
	"log"
	"net/http"
)

//go:embed chat.html
var chatPage []byte

// WebSocketHandler handles WebSocket upgrade requests and manages client connections.
// It validates that the request uses the GET method, upgrades the HTTP connection
// to WebSocket, and hands the new Client to the hub through its pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, s.handler, r.RemoteAddr, s.cfg)
	if !s.track(client) {
		log.Printf("Rejecting WebSocket connection from %s: server shutting down", r.RemoteAddr)
		_ = client.Close()
		return
	}
	log.Printf("WebSocket connection %s established from %s", client.ID(), r.RemoteAddr)
}

// HealthHandler reports liveness along with the connected and online counts.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	registry := s.hub.Registry()
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chatroom server is running! connected=%d online=%d",
		registry.Len(), registry.OnlineCount())
}

// ChatPageHandler serves the built-in chat client at the root path.
func ChatPageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(chatPage); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}
