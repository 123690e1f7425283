package ai

import (
	"fmt"

	"lifedeck/internal/game"
)

// Conservative plays for survival: it always faces the weakest challenge
// on offer and overcommits cards for a safety margin, spending insurance
// cards from hand before anything else.
type Conservative struct{}

func NewConservative() *Conservative { return &Conservative{} }

func (*Conservative) Name() string { return "Conservative" }

func (*Conservative) Type() StrategyType { return StrategyConservative }

// SelectChallenge picks the minimum-power challenge on offer.
func (*Conservative) SelectChallenge(g *game.Game, challenges []*game.Card) ChallengeDecision {
	pick := minPowerCard(challenges)
	if pick == nil {
		return ChallengeDecision{Reason: "no challenges offered"}
	}
	return ChallengeDecision{
		Challenge:          pick,
		Reason:             fmt.Sprintf("weakest challenge on offer (power %d)", pick.EffectivePower()),
		SuccessProbability: successProbability(totalPower(g.Manager().Hand()), pick.EffectivePower()),
	}
}

// SelectCards commits insurance cards first, then the rest, each group
// strongest first, until the total reaches 120% of the challenge power.
func (*Conservative) SelectCards(g *game.Game, challenge *game.Card, available []*game.Card) CardsDecision {
	target := challengePower(challenge)

	var insurance, others []*game.Card
	for _, c := range available {
		if c.Type == game.TypeInsurance {
			insurance = append(insurance, c)
		} else {
			others = append(others, c)
		}
	}
	ordered := append(byPowerDesc(insurance), byPowerDesc(others)...)

	goal := 1.2 * float64(target)
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
		Reason:        fmt.Sprintf("%d power against %d (20%% safety margin)", total, target),
		ExpectedPower: total,
	}
}

// EvaluateFitness rises as vitality falls: caution matters most when the
// player can least afford a loss.
func (*Conservative) EvaluateFitness(g *game.Game) float64 {
	return clamp01(1 - vitalityRatio(g))
}
