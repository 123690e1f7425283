// Package web serves the JSON API (catalog, saves, simulation stats) and
// the WebSocket gateway that bridges browsers to a TCP game server.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"lifedeck/internal/catalog"
	"lifedeck/internal/storage"
)

// Server is the lifedeck web API server.
type Server struct {
	store    *storage.Store
	cat      *catalog.Catalog
	gameAddr string // default TCP game server for /ws bridging
	logger   *zap.Logger
	mux      *http.ServeMux
}

// NewServer creates a web server. The store may be nil, in which case the
// save and stats endpoints report storage as unavailable.
func NewServer(store *storage.Store, cat *catalog.Catalog, gameAddr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:    store,
		cat:      cat,
		gameAddr: gameAddr,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/saves", s.handleSaves)
	s.mux.HandleFunc("DELETE /api/saves/{id}", s.handleDeleteSave)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)

	// WebSocket gateway to the TCP game server
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := []catalog.CardInfo{}
	if s.cat != nil {
		cards = s.cat.CardList()
	}
	s.writeJSON(w, cards)
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "storage not configured", http.StatusServiceUnavailable)
		return
	}
	saves, err := s.store.ListSaves(r.Context())
	if err != nil {
		s.logger.Error("list saves", zap.Error(err))
		http.Error(w, "could not list saves", http.StatusInternalServerError)
		return
	}
	if saves == nil {
		saves = []storage.Save{}
	}
	s.writeJSON(w, saves)
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "storage not configured", http.StatusServiceUnavailable)
		return
	}
	id := r.PathValue("id")
	if err := s.store.DeleteSave(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "save not found", http.StatusNotFound)
			return
		}
		s.logger.Error("delete save", zap.String("id", id), zap.Error(err))
		http.Error(w, "could not delete save", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "storage not configured", http.StatusServiceUnavailable)
		return
	}
	results, err := s.store.ListSimResults(r.Context())
	if err != nil {
		s.logger.Error("list sim results", zap.Error(err))
		http.Error(w, "could not list results", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []storage.SimResult{}
	}
	s.writeJSON(w, results)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()

	// Read initial connect message from browser
	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		s.logger.Warn("websocket read connect", zap.Error(err))
		return
	}

	var connectMsg struct {
		Type       string `json:"type"`
		Addr       string `json:"addr"`
		Difficulty string `json:"difficulty"`
		Seed       int64  `json:"seed"`
	}
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}
	addr := connectMsg.Addr
	if addr == "" {
		addr = s.gameAddr
	}

	// Open TCP connection to the game server
	tcpConn, err := net.Dial("tcp", addr)
	if err != nil {
		errMsg, _ := json.Marshal(map[string]string{
			"type":   "error",
			"result": fmt.Sprintf("Could not connect to game server at %s: %v", addr, err),
		})
		wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()

	// Send join message over TCP
	joinMsg, _ := json.Marshal(map[string]any{
		"type":       "join",
		"difficulty": connectMsg.Difficulty,
		"seed":       connectMsg.Seed,
	})
	joinMsg = append(joinMsg, '\n')
	if _, err := tcpConn.Write(joinMsg); err != nil {
		s.logger.Warn("tcp write join", zap.Error(err))
		return
	}

	done := make(chan struct{})

	// TCP → WebSocket (server messages to browser)
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if err != io.EOF {
					s.logger.Debug("tcp read", zap.Error(err))
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				s.logger.Debug("websocket write", zap.Error(err))
				return
			}
		}
	}()

	// WebSocket → TCP (browser responses to server)
	go func() {
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				s.logger.Debug("tcp write", zap.Error(err))
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
