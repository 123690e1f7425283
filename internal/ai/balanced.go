package ai

import (
	"fmt"
	"math"
	"sort"

	"lifedeck/internal/game"
)

// Balanced weighs risk against reward: challenges are scored by expected
// value and cards are spent by power-per-cost efficiency.
type Balanced struct{}

func NewBalanced() *Balanced { return &Balanced{} }

func (*Balanced) Name() string { return "Balanced" }

func (*Balanced) Type() StrategyType { return StrategyBalanced }

// SelectChallenge picks the challenge with the best expected value,
// weighing a win at half the challenge power against a loss at three
// tenths of it.
func (*Balanced) SelectChallenge(g *game.Game, challenges []*game.Card) ChallengeDecision {
	if len(challenges) == 0 {
		return ChallengeDecision{Reason: "no challenges offered"}
	}
	handTotal := totalPower(g.Manager().Hand())

	pick := challenges[0]
	bestEV := math.Inf(-1)
	bestP := 0.0
	for _, c := range challenges {
		power := float64(c.EffectivePower())
		p := successProbability(handTotal, c.EffectivePower())
		ev := p*0.5*power - (1-p)*0.3*power
		if ev > bestEV {
			pick, bestEV, bestP = c, ev, p
		}
	}
	return ChallengeDecision{
		Challenge:          pick,
		Reason:             fmt.Sprintf("best expected value (%.1f) among %d offers", bestEV, len(challenges)),
		SuccessProbability: bestP,
	}
}

// SelectCards spends the most efficient cards first, ranked by effective
// power per estimated cost, until the total clears the challenge power
// with a 10% margin.
func (*Balanced) SelectCards(g *game.Game, challenge *game.Card, available []*game.Card) CardsDecision {
	target := challengePower(challenge)

	ordered := make([]*game.Card, len(available))
	copy(ordered, available)
	sort.SliceStable(ordered, func(i, j int) bool {
		return efficiency(ordered[i]) > efficiency(ordered[j])
	})

	goal := 1.1 * float64(target)
	var picked []*game.Card
	total := 0
	for _, c := range ordered {
		if float64(total) >= goal {
			break
		}
		picked = append(picked, c)
		total += c.EffectivePower()
	}
	return CardsDecision{
		Cards:         picked,
		Reason:        fmt.Sprintf("%d power against %d, most efficient cards first", total, target),
		ExpectedPower: total,
	}
}

// efficiency is effective power per estimated cost. Insurance cards are
// costed at power+1 so an equal-power life card always ranks ahead: a
// policy in hand is worth more bought than burned.
func efficiency(c *game.Card) float64 {
	cost := c.Cost
	if c.Type == game.TypeInsurance {
		cost = c.EffectivePower() + 1
	} else if cost < 1 {
		cost = 1
	}
	return float64(c.EffectivePower()) / float64(cost)
}

// EvaluateFitness is a constant: balanced play is always a reasonable
// middle ground.
func (*Balanced) EvaluateFitness(*game.Game) float64 { return 0.6 }
