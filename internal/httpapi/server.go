// Package httpapi exposes the relay over HTTP: the per-client websocket
// endpoint plus the small JSON surface for agents, stats and health.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/antoniostano/switchboard/internal/agent"
	"github.com/antoniostano/switchboard/internal/config"
	"github.com/antoniostano/switchboard/internal/observability"
	"github.com/antoniostano/switchboard/internal/protocol"
	"github.com/antoniostano/switchboard/internal/relay"
	"github.com/antoniostano/switchboard/internal/session"
)

const (
	writeTimeout        = 10 * time.Second
	readTimeout         = 120 * time.Second
	defaultPingInterval = 54 * time.Second
)

type Server struct {
	cfg          config.Config
	agents       *agent.Registry
	sessions     *session.Manager
	relay        *relay.Relay
	metrics      *observability.Metrics
	pingInterval time.Duration
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, agents *agent.Registry, sessions *session.Manager, rly *relay.Relay, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:          cfg,
		agents:       agents,
		sessions:     sessions,
		relay:        rly,
		metrics:      metrics,
		pingInterval: defaultPingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other websites cannot drive the user's mic
				// session if the relay is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/agents", s.handleListAgents)
	r.Get("/ws/{clientID}", s.handleClientWS)
	r.Get("/v1/clients/{clientID}/stats", s.handleClientStats)
	r.Get("/v1/clients/{clientID}/history", s.handleClientHistory)

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "switchboard",
		"version": "1.0.0",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"active_clients": s.sessions.Count(),
	})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"agents": s.agents.List(),
	})
}

func (s *Server) handleClientStats(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	stats, err := s.sessions.Stats(clientID)
	if errors.Is(err, session.ErrNotFound) {
		respondError(w, http.StatusNotFound, "client_not_found", "no active session for client "+clientID)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClientHistory(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	history, err := s.sessions.History(clientID, limit)
	if errors.Is(err, session.ErrNotFound) {
		respondError(w, http.StatusNotFound, "client_not_found", "no active session for client "+clientID)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"client_id": clientID,
		"messages":  history,
	})
}

// handleClientWS owns one client connection end to end: a single writer
// goroutine drains outbound, a ping loop keeps NATs from reaping the
// connection, and the read loop feeds parsed commands to the relay.
func (s *Server) handleClientWS(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(chi.URLParam(r, "clientID"))
	if clientID == "" {
		respondError(w, http.StatusBadRequest, "missing_client_id", "client id path segment is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.relay.Register(clientID)
	defer s.relay.Disconnect(clientID)

	outbound := make(chan any, 256)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-outbound:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("[httpapi] write to client %s: %v", clientID, err)
					cancel()
					return
				}
				if t, ok := protocol.TypeOf(msg); ok {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// WriteControl is the one write API safe to call alongside
				// the writer goroutine's WriteJSON.
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(2 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			// Malformed and unknown commands are dropped without a reply so
			// a confused client cannot wedge the writer queue.
			log.Printf("[httpapi] client %s sent unusable message: %v", clientID, err)
			continue
		}
		if t, ok := protocol.TypeOf(parsed); ok {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}
		s.relay.HandleMessage(ctx, clientID, parsed, outbound)
	}

	cancel()
	<-writerDone
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
