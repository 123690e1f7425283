// Package ai implements the automated decision layer: four
// interchangeable play strategies, a service that wraps the active one
// and records decision statistics, and a controller that plays whole
// games unattended.
package ai

import (
	"fmt"
	"sort"
	"strings"

	"lifedeck/internal/game"
)

// StrategyType identifies one of the built-in strategies.
type StrategyType string

const (
	StrategyConservative StrategyType = "conservative"
	StrategyAggressive   StrategyType = "aggressive"
	StrategyBalanced     StrategyType = "balanced"
	StrategyAdaptive     StrategyType = "adaptive"
)

// ParseStrategyType maps a user-facing name to a StrategyType.
func ParseStrategyType(s string) (StrategyType, error) {
	t := StrategyType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case StrategyConservative, StrategyAggressive, StrategyBalanced, StrategyAdaptive:
		return t, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// ChallengeDecision reports which offered challenge a strategy would
// take on and why.
type ChallengeDecision struct {
	Challenge          *game.Card
	Reason             string
	SuccessProbability float64
}

// CardsDecision reports which hand cards a strategy would commit to the
// current challenge.
type CardsDecision struct {
	Cards         []*game.Card
	Reason        string
	ExpectedPower int
}

// Strategy is one automated play style. Implementations read game state
// but never mutate it; the caller applies the decisions.
type Strategy interface {
	Name() string
	Type() StrategyType

	// SelectChallenge picks one of the offered challenge cards.
	SelectChallenge(g *game.Game, challenges []*game.Card) ChallengeDecision

	// SelectCards picks the hand cards to commit against the challenge.
	SelectCards(g *game.Game, challenge *game.Card, available []*game.Card) CardsDecision

	// EvaluateFitness rates how well this strategy suits the current
	// game state, in [0, 1].
	EvaluateFitness(g *game.Game) float64
}

// New constructs the strategy for the given type.
func New(t StrategyType) (Strategy, error) {
	switch t {
	case StrategyConservative:
		return NewConservative(), nil
	case StrategyAggressive:
		return NewAggressive(), nil
	case StrategyBalanced:
		return NewBalanced(), nil
	case StrategyAdaptive:
		return NewAdaptive(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", t)
	}
}

func totalPower(cards []*game.Card) int {
	total := 0
	for _, c := range cards {
		total += c.EffectivePower()
	}
	return total
}

func challengePower(c *game.Card) int {
	if c == nil {
		return 0
	}
	return c.EffectivePower()
}

// successProbability estimates the chance of clearing a challenge: the
// ratio of available power to required power, capped at 1.
func successProbability(available, required int) float64 {
	if required <= 0 {
		return 1
	}
	return clamp01(float64(available) / float64(required))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func vitalityRatio(g *game.Game) float64 {
	if g.MaxVitality() <= 0 {
		return 0
	}
	return clamp01(float64(g.Vitality()) / float64(g.MaxVitality()))
}

// byPowerDesc returns a copy of cards ordered by descending effective
// power. The sort is stable so equal-power cards keep their hand order.
func byPowerDesc(cards []*game.Card) []*game.Card {
	out := make([]*game.Card, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectivePower() > out[j].EffectivePower()
	})
	return out
}

func minPowerCard(cards []*game.Card) *game.Card {
	if len(cards) == 0 {
		return nil
	}
	pick := cards[0]
	for _, c := range cards[1:] {
		if c.EffectivePower() < pick.EffectivePower() {
			pick = c
		}
	}
	return pick
}
