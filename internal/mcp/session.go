// Package mcp exposes the game over the Model Context Protocol: one
// session at a time, driven by tool calls that answer pending decisions.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"lifedeck/internal/ai"
	"lifedeck/internal/catalog"
	"lifedeck/internal/game"
	"lifedeck/internal/log"
	"lifedeck/internal/net"
)

// DecisionType identifies what the game engine is waiting for.
type DecisionType string

const (
	DecisionChooseAction DecisionType = "choose_action"
	DecisionGameOver     DecisionType = "game_over"
)

// PendingDecision represents a decision the game engine is waiting for.
type PendingDecision struct {
	Type    DecisionType     `json:"type"`
	State   *net.StateView   `json:"state"`
	Actions []net.ActionView `json:"actions,omitempty"`
}

// ToolResponse is the JSON envelope returned by the session tools.
type ToolResponse struct {
	Events   []net.EventView `json:"events"`
	State    *net.StateView  `json:"state,omitempty"`
	Pending  *PendingView    `json:"pending,omitempty"`
	GameOver bool            `json:"game_over"`
	Result   string          `json:"result,omitempty"`
}

// PendingView is the pending decision as presented in the tool response.
type PendingView struct {
	Type    DecisionType     `json:"type"`
	Actions []net.ActionView `json:"actions,omitempty"`
}

// Session holds the state of a single MCP game session. The game runs in
// its own goroutine and parks on the pending channel whenever it needs a
// decision; tool handlers answer through the controller.
type Session struct {
	game *game.Game
	ctrl *sessionController
	svc  *ai.Service

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	mu       sync.Mutex
	actions  []game.Action // legal actions behind currentPending
	events   []net.EventView
	gameOver bool
	result   string
}

// NewSession deals a game from the card catalog and starts its runner.
// The first pending decision is ready once waitForPending returns.
func NewSession(cardsFile, difficulty string, seed int64) (*Session, error) {
	g, err := catalog.NewGame(cardsFile, difficulty, seed, log.NewMemoryLogger())
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	sess := &Session{
		game:      g,
		svc:       ai.NewService(ai.NewAdaptive()),
		pendingCh: make(chan *PendingDecision, 1),
	}
	sess.ctrl = newSessionController(sess)

	go func() {
		_, err := game.NewRunner(g, sess.ctrl).Run(context.Background())

		result := g.Result()
		if err != nil {
			result = fmt.Sprintf("error: %v", err)
		}

		sess.mu.Lock()
		sess.gameOver = true
		sess.result = result
		sess.mu.Unlock()

		sess.pendingCh <- &PendingDecision{
			Type:  DecisionGameOver,
			State: net.BuildStateView(g),
		}
	}()

	return sess, nil
}

// appendEvent adds an event to the session's event buffer. Thread-safe.
func (s *Session) appendEvent(ev net.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *Session) drainEvents() []net.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

func (s *Session) setActions(actions []game.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = actions
}

// pendingActions returns the legal actions behind the current pending
// decision.
func (s *Session) pendingActions() []game.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions
}

// waitForPending blocks until the next decision arrives from the game
// engine, then builds a ToolResponse with accumulated events plus the
// pending decision.
func (s *Session) waitForPending() *ToolResponse {
	pending := <-s.pendingCh
	s.currentPending = pending

	resp := &ToolResponse{
		Events: s.drainEvents(),
		State:  pending.State,
	}
	if resp.Events == nil {
		resp.Events = []net.EventView{}
	}

	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Result = s.result
		s.mu.Unlock()
		return resp
	}

	resp.Pending = &PendingView{Type: pending.Type, Actions: pending.Actions}
	return resp
}

// respondJSON marshals a tool response value to a JSON string.
func respondJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
