package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-live/internal/gameid"
)

// Server exposes game creation over HTTP and the event transport over
// WebSocket. Per-game serialization lives in each game's hub; the server
// only routes connections and frames.
type Server struct {
	manager    *GameManager
	logger     *log.Logger
	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer creates a server around an existing game manager
func NewServer(manager *GameManager, logger *log.Logger) *Server {
	s := &Server{
		manager: manager,
		logger:  logger.With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		mux: http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /games", s.handleCreateGame)
	s.mux.HandleFunc("GET /games/{game_id}/state", s.handleGameState)
	s.mux.HandleFunc("GET /games/{game_id}/analysis", s.handleGameAnalysis)
	s.mux.HandleFunc("/ws/{game_id}", s.handleWebSocket)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s
}

// Start listens on addr and serves until shutdown
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve serves using an existing listener
func (s *Server) Serve(listener net.Listener) error {
	s.httpServer = &http.Server{Handler: s.mux}
	s.logger.Info("server starting", "addr", listener.Addr().String())
	err := s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the mux for httptest servers
func (s *Server) Handler() http.Handler {
	return s.mux
}

type createGameRequest struct {
	PlayerName string `json:"player_name"`
	AICount    int    `json:"ai_count"`
}

type createGameResponse struct {
	GameID string `json:"game_id"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := ValidateCreateRequest(req.PlayerName, req.AICount); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	hub, err := s.manager.CreateGame(req.PlayerName, req.AICount)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(createGameResponse{GameID: hub.ID}); err != nil {
		s.logger.Error("failed to encode create response", "error", err)
	}
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	hub, ok := s.lookupGame(w, r)
	if !ok {
		return
	}

	hub.mu.Lock()
	payload := serializeState(hub.engine, false)
	hub.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode state response", "error", err)
	}
}

func (s *Server) handleGameAnalysis(w http.ResponseWriter, r *http.Request) {
	hub, ok := s.lookupGame(w, r)
	if !ok {
		return
	}

	hub.mu.Lock()
	analysis := hub.engine.AnalyzeLastHand()
	hub.mu.Unlock()

	if analysis == nil {
		httpError(w, http.StatusNotFound, "no completed hand to analyze")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(analysis); err != nil {
		s.logger.Error("failed to encode analysis response", "error", err)
	}
}

func (s *Server) lookupGame(w http.ResponseWriter, r *http.Request) (*Hub, bool) {
	id := r.PathValue("game_id")
	if err := gameid.Validate(id); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	hub, ok := s.manager.GetGame(id)
	if !ok {
		httpError(w, http.StatusNotFound, "game not found")
		return nil, false
	}
	return hub, true
}

// handleWebSocket attaches an observer to a game and pumps its frames.
// Action and next_hand frames run on their own goroutine so the read
// loop stays free to deliver continue frames while the pipeline is
// paused inside a step-mode wait.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("game_id")
	hub, ok := s.manager.GetGame(id)
	if !ok {
		httpError(w, http.StatusNotFound, "game not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	o := hub.AddObserver(conn)
	s.logger.Debug("observer connected", "game_id", id)

	defer func() {
		s.manager.ReleaseObserver(hub, o)
		_ = conn.Close()
		s.logger.Debug("observer disconnected", "game_id", id)
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = o.send(Event{Type: TypeError, Data: ErrorData{Message: "invalid JSON frame"}})
			continue
		}

		switch msg.Type {
		case TypeContinue:
			hub.HandleContinue()
		case TypeAction:
			go hub.HandleAction(o, msg)
		case TypeNextHand:
			go hub.HandleNextHand(o, msg)
		default:
			_ = o.send(Event{Type: TypeError, Data: ErrorData{Message: fmt.Sprintf("unknown message type: %q", msg.Type)}})
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK\n")
}

func httpError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WaitForHealthy polls the /health endpoint until it returns 200 OK or
// the context is cancelled.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	healthURL := baseURL + "/health"
	client := &http.Client{Timeout: 1 * time.Second}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resp, err := client.Get(healthURL)
			if err == nil && resp.StatusCode == http.StatusOK {
				resp.Body.Close()
				return nil
			}
			if resp != nil {
				resp.Body.Close()
			}
		}
	}
}
