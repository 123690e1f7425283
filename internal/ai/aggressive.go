package ai

import (
	"fmt"

	"lifedeck/internal/game"
)

// Aggressive hunts the hardest challenge it still expects to win and
// commits no more power than the challenge requires.
type Aggressive struct{}

func NewAggressive() *Aggressive { return &Aggressive{} }

func (*Aggressive) Name() string { return "Aggressive" }

func (*Aggressive) Type() StrategyType { return StrategyAggressive }

// SelectChallenge keeps the challenges the hand covers at least half of
// and picks the hardest survivor. When nothing qualifies it falls back to
// the weakest challenge to cut losses.
func (*Aggressive) SelectChallenge(g *game.Game, challenges []*game.Card) ChallengeDecision {
	if len(challenges) == 0 {
		return ChallengeDecision{Reason: "no challenges offered"}
	}
	handTotal := totalPower(g.Manager().Hand())

	var pick *game.Card
	for _, c := range challenges {
		if float64(handTotal) < 0.5*float64(c.EffectivePower()) {
			continue
		}
		if pick == nil || c.EffectivePower() > pick.EffectivePower() {
			pick = c
		}
	}
	if pick == nil {
		pick = minPowerCard(challenges)
		return ChallengeDecision{
			Challenge:          pick,
			Reason:             fmt.Sprintf("nothing winnable with %d hand power, cutting losses on the weakest", handTotal),
			SuccessProbability: successProbability(handTotal, pick.EffectivePower()),
		}
	}
	return ChallengeDecision{
		Challenge:          pick,
		Reason:             fmt.Sprintf("hardest challenge still in reach (power %d)", pick.EffectivePower()),
		SuccessProbability: successProbability(handTotal, pick.EffectivePower()),
	}
}

// SelectCards commits cards strongest first until the total meets the
// challenge power exactly, with no margin.
func (*Aggressive) SelectCards(g *game.Game, challenge *game.Card, available []*game.Card) CardsDecision {
	target := challengePower(challenge)

	var picked []*game.Card
	total := 0
	for _, c := range byPowerDesc(available) {
		if total >= target {
			break
		}
		picked = append(picked, c)
		total += c.EffectivePower()
	}
	return CardsDecision{
		Cards:         picked,
		Reason:        fmt.Sprintf("%d power against %d, nothing wasted", total, target),
		ExpectedPower: total,
	}
}

// EvaluateFitness favors aggression when the player is healthy and the
// hand is strong: the mean of the vitality ratio and the average hand
// power normalized against a power-3 card.
func (*Aggressive) EvaluateFitness(g *game.Game) float64 {
	hand := g.Manager().Hand()
	avg := 0.0
	if len(hand) > 0 {
		avg = float64(totalPower(hand)) / float64(len(hand))
	}
	handScore := avg / 3
	if handScore > 1 {
		handScore = 1
	}
	return clamp01((vitalityRatio(g) + handScore) / 2)
}
