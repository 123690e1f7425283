package ai

import (
	"fmt"
	"sync"

	"lifedeck/internal/game"
)

// historyLimit caps the retained decision history; the oldest entries
// are evicted first.
const historyLimit = 100

// Decision is one recorded strategy decision, kept for statistics.
type Decision struct {
	Strategy StrategyType `json:"strategy"`
	Kind     string       `json:"kind"` // "challenge" or "cards"
	Turn     int          `json:"turn"`
	Choice   string       `json:"choice"`
	Reason   string       `json:"reason"`
	Resolved bool         `json:"resolved"`
	Success  bool         `json:"success"`
}

// Statistics is the aggregate view over recorded decisions.
type Statistics struct {
	Strategy    StrategyType         `json:"strategy"`
	Enabled     bool                 `json:"enabled"`
	Decisions   int                  `json:"decisions"`
	Outcomes    int                  `json:"outcomes"`
	Successes   int                  `json:"successes"`
	SuccessRate float64              `json:"successRate"`
	Usage       map[StrategyType]int `json:"usage"`
}

// Service wraps the active strategy behind game.Advisor, allows runtime
// strategy swaps, and records a capped decision history with aggregate
// success statistics.
type Service struct {
	mu        sync.Mutex
	strategy  Strategy
	recording bool

	history   []Decision
	usage     map[StrategyType]int
	decisions int
	outcomes  int
	successes int
}

// NewService wraps the given strategy with statistics recording enabled.
func NewService(s Strategy) *Service {
	return &Service{
		strategy:  s,
		recording: true,
		usage:     make(map[StrategyType]int),
	}
}

// SetStrategy swaps the active strategy at runtime.
func (s *Service) SetStrategy(strat Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategy = strat
}

// Strategy returns the active strategy.
func (s *Service) Strategy() Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

// SetStatisticsEnabled toggles decision recording. Disabling makes
// recording a no-op; the existing history stays until ClearHistory.
func (s *Service) SetStatisticsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = enabled
}

// StatisticsEnabled reports whether decisions are being recorded.
func (s *Service) StatisticsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// ClearHistory drops the decision history and resets every counter.
func (s *Service) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.usage = make(map[StrategyType]int)
	s.decisions = 0
	s.outcomes = 0
	s.successes = 0
}

// SelectChallenge asks the active strategy to pick a challenge and
// records the decision.
func (s *Service) SelectChallenge(g *game.Game, challenges []*game.Card) ChallengeDecision {
	strat := s.Strategy()
	dec := strat.SelectChallenge(g, challenges)
	s.record(Decision{
		Strategy: strat.Type(),
		Kind:     "challenge",
		Turn:     g.Turn(),
		Choice:   dec.Challenge.String(),
		Reason:   dec.Reason,
	})
	return dec
}

// SelectCards asks the active strategy to pick the cards to commit and
// records the decision.
func (s *Service) SelectCards(g *game.Game, challenge *game.Card, available []*game.Card) CardsDecision {
	strat := s.Strategy()
	dec := strat.SelectCards(g, challenge, available)
	s.record(Decision{
		Strategy: strat.Type(),
		Kind:     "cards",
		Turn:     g.Turn(),
		Choice:   fmt.Sprintf("%d cards, %d power", len(dec.Cards), dec.ExpectedPower),
		Reason:   dec.Reason,
	})
	return dec
}

// record appends a decision to the history, evicting the oldest entry
// past the cap. A no-op while statistics are disabled.
func (s *Service) record(d Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	s.decisions++
	s.usage[d.Strategy]++
	s.history = append(s.history, d)
	if len(s.history) > historyLimit {
		s.history = s.history[1:]
	}
}

// ReportOutcome resolves the most recent pending decision and feeds the
// aggregate success rate. A no-op while statistics are disabled.
func (s *Service) ReportOutcome(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	s.outcomes++
	if success {
		s.successes++
	}
	for i := len(s.history) - 1; i >= 0; i-- {
		if !s.history[i].Resolved {
			s.history[i].Resolved = true
			s.history[i].Success = success
			return
		}
	}
}

// Statistics returns the aggregate statistics view.
func (s *Service) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	rate := 0.0
	if s.outcomes > 0 {
		rate = float64(s.successes) / float64(s.outcomes)
	}
	usage := make(map[StrategyType]int, len(s.usage))
	for k, v := range s.usage {
		usage[k] = v
	}
	return Statistics{
		Strategy:    s.strategy.Type(),
		Enabled:     s.recording,
		Decisions:   s.decisions,
		Outcomes:    s.outcomes,
		Successes:   s.successes,
		SuccessRate: rate,
		Usage:       usage,
	}
}

// History returns a copy of the retained decisions, oldest first.
func (s *Service) History() []Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Decision, len(s.history))
	copy(out, s.history)
	return out
}

// ChooseChallenge implements game.Advisor.
func (s *Service) ChooseChallenge(g *game.Game, challenges []*game.Card) (*game.Card, string, float64, error) {
	dec := s.SelectChallenge(g, challenges)
	if dec.Challenge == nil {
		return nil, "", 0, fmt.Errorf("choose challenge: nothing offered")
	}
	return dec.Challenge, dec.Reason, dec.SuccessProbability, nil
}

// ChooseCards implements game.Advisor.
func (s *Service) ChooseCards(g *game.Game, challenge *game.Card, available []*game.Card) ([]*game.Card, string, int, error) {
	dec := s.SelectCards(g, challenge, available)
	return dec.Cards, dec.Reason, dec.ExpectedPower, nil
}
