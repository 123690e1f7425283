package ai

import (
	"fmt"

	"lifedeck/internal/game"
)

// Adaptive is the meta strategy: every decision re-evaluates the base
// strategies against the current game state and delegates to the best
// fit. Ties go to the earlier entry in the fixed conservative,
// aggressive, balanced order.
type Adaptive struct {
	candidates []Strategy
}

func NewAdaptive() *Adaptive {
	return &Adaptive{
		candidates: []Strategy{NewConservative(), NewAggressive(), NewBalanced()},
	}
}

func (*Adaptive) Name() string { return "Adaptive" }

func (*Adaptive) Type() StrategyType { return StrategyAdaptive }

// delegate returns the candidate with the highest fitness right now.
func (s *Adaptive) delegate(g *game.Game) Strategy {
	best := s.candidates[0]
	bestFit := best.EvaluateFitness(g)
	for _, c := range s.candidates[1:] {
		if fit := c.EvaluateFitness(g); fit > bestFit {
			best, bestFit = c, fit
		}
	}
	return best
}

func (s *Adaptive) SelectChallenge(g *game.Game, challenges []*game.Card) ChallengeDecision {
	d := s.delegate(g)
	dec := d.SelectChallenge(g, challenges)
	dec.Reason = fmt.Sprintf("%s (via %s)", dec.Reason, d.Name())
	return dec
}

func (s *Adaptive) SelectCards(g *game.Game, challenge *game.Card, available []*game.Card) CardsDecision {
	d := s.delegate(g)
	dec := d.SelectCards(g, challenge, available)
	dec.Reason = fmt.Sprintf("%s (via %s)", dec.Reason, d.Name())
	return dec
}

// EvaluateFitness is the maximum fitness across the candidates.
func (s *Adaptive) EvaluateFitness(g *game.Game) float64 {
	best := s.candidates[0].EvaluateFitness(g)
	for _, c := range s.candidates[1:] {
		if fit := c.EvaluateFitness(g); fit > best {
			best = fit
		}
	}
	return best
}
