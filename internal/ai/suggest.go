package ai

import (
	"fmt"

	"lifedeck/internal/game"
)

// maxActivePolicies is how many insurance policies the automated player
// keeps in force before it stops buying.
const maxActivePolicies = 2

// Selector is the decision surface Suggest consults: a bare Strategy, or
// a Service when the decisions should land in its history.
type Selector interface {
	SelectChallenge(g *game.Game, challenges []*game.Card) ChallengeDecision
	SelectCards(g *game.Game, challenge *game.Card, available []*game.Card) CardsDecision
}

// Suggest maps the current phase and legal actions to the move the given
// selector would make. It inspects but never mutates game state.
func Suggest(sel Selector, g *game.Game, actions []game.Action) (game.Action, string, error) {
	if len(actions) == 0 {
		return game.Action{}, "", fmt.Errorf("suggest: no legal actions")
	}
	switch g.Phase() {
	case game.PhaseDreamSelection:
		return suggestDream(actions)
	case game.PhaseChallengeSelection:
		return suggestChallenge(sel, g, actions)
	case game.PhaseChallengeResolution:
		return suggestResolution(sel, g, actions)
	case game.PhaseInsuranceSelection:
		return suggestInsurance(g, actions)
	default:
		return actions[0], actions[0].Desc, nil
	}
}

// SuggestAction is Suggest backed by the service, so challenge and card
// picks are recorded.
func (s *Service) SuggestAction(g *game.Game, actions []game.Action) (game.Action, string, error) {
	return Suggest(s, g, actions)
}

// suggestDream picks the lowest-power dream: it needs the fewest
// completed challenges to be fulfilled.
func suggestDream(actions []game.Action) (game.Action, string, error) {
	pick := actions[0]
	for _, a := range actions[1:] {
		if a.Card == nil {
			continue
		}
		if pick.Card == nil || a.Card.EffectivePower() < pick.Card.EffectivePower() {
			pick = a
		}
	}
	if pick.Card == nil {
		return pick, "only dream on offer", nil
	}
	return pick, fmt.Sprintf("fulfilled after %d completed challenges, the cheapest dream offered", pick.Card.EffectivePower()), nil
}

func suggestChallenge(sel Selector, g *game.Game, actions []game.Action) (game.Action, string, error) {
	offers := make([]*game.Card, 0, len(actions))
	for _, a := range actions {
		if a.Type == game.ActionStartChallenge && a.Card != nil {
			offers = append(offers, a.Card)
		}
	}
	dec := sel.SelectChallenge(g, offers)
	if dec.Challenge != nil {
		for _, a := range actions {
			if a.Card != nil && a.Card.ID == dec.Challenge.ID {
				return a, dec.Reason, nil
			}
		}
	}
	return actions[0], dec.Reason, nil
}

// suggestResolution steers the selection toward the selector's card set
// one toggle at a time, then resolves.
func suggestResolution(sel Selector, g *game.Game, actions []game.Action) (game.Action, string, error) {
	m := g.Manager()
	dec := sel.SelectCards(g, g.CurrentChallenge(), m.Hand())
	want := make(map[string]bool, len(dec.Cards))
	for _, c := range dec.Cards {
		want[c.ID] = true
	}
	for _, a := range actions {
		if a.Type != game.ActionToggleCard || a.Card == nil {
			continue
		}
		if selected := m.IsSelected(a.Card.ID); want[a.Card.ID] != selected {
			verb := "commit"
			if selected {
				verb = "withdraw"
			}
			return a, fmt.Sprintf("%s %s toward %d power", verb, a.Card.Name, dec.ExpectedPower), nil
		}
	}
	for _, a := range actions {
		if a.Type == game.ActionResolveChallenge {
			return a, dec.Reason, nil
		}
	}
	return actions[0], dec.Reason, nil
}

// suggestInsurance buys the most power-efficient offer while fewer than
// maxActivePolicies policies are in force, otherwise skips.
func suggestInsurance(g *game.Game, actions []game.Action) (game.Action, string, error) {
	var skip, best *game.Action
	for i := range actions {
		a := &actions[i]
		switch a.Type {
		case game.ActionSkipInsurance:
			skip = a
		case game.ActionBuyInsurance:
			if a.Card == nil {
				continue
			}
			if best == nil || buyScore(a.Card) > buyScore(best.Card) {
				best = a
			}
		}
	}
	if best == nil {
		if skip != nil {
			return *skip, "no offers worth buying", nil
		}
		return actions[0], actions[0].Desc, nil
	}
	if len(g.Manager().ActiveInsurances()) >= maxActivePolicies && skip != nil {
		return *skip, "enough coverage in force", nil
	}
	return *best, fmt.Sprintf("best coverage per premium: %s", best.Card.Name), nil
}

// buyScore ranks a market offer by shield power per premium point.
func buyScore(c *game.Card) float64 {
	premium := 1
	if c.Insurance != nil && c.Insurance.Premium > premium {
		premium = c.Insurance.Premium
	}
	return float64(c.EffectivePower()) / float64(premium)
}
