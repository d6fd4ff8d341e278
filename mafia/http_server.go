package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/gosuda/portal-mafia/mafia/game"
)

const authHeader = "X-Mafia-Key"

// HTTPServer wires HTTP routes to the game hub.
type HTTPServer struct {
	hub      *game.Hub
	authKey  string
	rate     rate.Limit
	burst    int
	upgrader websocket.Upgrader
}

// NewHTTPServer builds the handler set. perSecond and burst bound how many
// frames one connection may send; frames beyond that are dropped.
func NewHTTPServer(hub *game.Hub, authKey string, perSecond float64, burst int) *HTTPServer {
	if burst < 1 {
		burst = 1
	}
	return &HTTPServer{
		hub:     hub,
		authKey: authKey,
		rate:    rate.Limit(perSecond),
		burst:   burst,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router exposes the HTTP mux used for both Portal relay and optional local serve.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/stats", s.handleStats)
	r.Get("/ws", s.handleWebSocket)
	return r
}

func (s *HTTPServer) authorized(r *http.Request) bool {
	if s.authKey == "" {
		return true
	}
	got := r.Header.Get(authHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.authKey)) == 1
}

func (s *HTTPServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("upgrade websocket")
		return
	}

	client := NewClient(uuid.NewString(), conn, s.hub, rate.NewLimiter(s.rate, s.burst))
	log.Debug().Str("conn", client.ID()).Str("remote", r.RemoteAddr).Msg("[mafia] websocket connected")
	s.hub.Connect(client)

	go client.writeLoop()
	client.readLoop()
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	stats, err := s.hub.Stats(ctx)
	if err != nil {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
