package ai

import (
	"context"

	"lifedeck/internal/game"
	"lifedeck/internal/log"
)

// Controller plays a game unattended using the service's active
// strategy. Challenge and card picks go through the service so they are
// recorded, and challenge outcomes are reported back as they post to the
// game stats.
type Controller struct {
	svc  *Service
	g    *game.Game
	seen game.Stats

	plannedFor string          // challenge ID the current plan targets
	planned    map[string]bool // card IDs the plan commits
}

// NewController wraps a service for unattended play.
func NewController(svc *Service) *Controller {
	return &Controller{svc: svc}
}

// Service returns the backing service, for statistics inspection.
func (c *Controller) Service() *Service { return c.svc }

// ChooseAction implements game.Controller.
func (c *Controller) ChooseAction(ctx context.Context, g *game.Game, actions []game.Action) (game.Action, error) {
	c.g = g
	c.observe(g)

	switch g.Phase() {
	case game.PhaseChallengeSelection:
		return c.chooseChallenge(g, actions)
	case game.PhaseChallengeResolution:
		return c.chooseToggle(g, actions)
	default:
		a, _, err := c.svc.SuggestAction(g, actions)
		return a, err
	}
}

// chooseChallenge picks through the service wrapper so the decision is
// recorded once per challenge.
func (c *Controller) chooseChallenge(g *game.Game, actions []game.Action) (game.Action, error) {
	offers := make([]*game.Card, 0, len(actions))
	for _, a := range actions {
		if a.Type == game.ActionStartChallenge && a.Card != nil {
			offers = append(offers, a.Card)
		}
	}
	dec := c.svc.SelectChallenge(g, offers)
	if dec.Challenge != nil {
		for _, a := range actions {
			if a.Card != nil && a.Card.ID == dec.Challenge.ID {
				return a, nil
			}
		}
	}
	return actions[0], nil
}

// chooseToggle walks the selection toward the planned card set one
// toggle per call, then resolves. The plan is computed and recorded once
// per challenge.
func (c *Controller) chooseToggle(g *game.Game, actions []game.Action) (game.Action, error) {
	ch := g.CurrentChallenge()
	if ch == nil {
		return resolveAction(actions), nil
	}
	if c.plannedFor != ch.ID {
		dec := c.svc.SelectCards(g, ch, g.Manager().Hand())
		c.plannedFor = ch.ID
		c.planned = make(map[string]bool, len(dec.Cards))
		for _, card := range dec.Cards {
			c.planned[card.ID] = true
		}
	}
	m := g.Manager()
	for _, a := range actions {
		if a.Type != game.ActionToggleCard || a.Card == nil {
			continue
		}
		if c.planned[a.Card.ID] != m.IsSelected(a.Card.ID) {
			return a, nil
		}
	}
	return resolveAction(actions), nil
}

func resolveAction(actions []game.Action) game.Action {
	for _, a := range actions {
		if a.Type == game.ActionResolveChallenge {
			return a
		}
	}
	return actions[0]
}

// observe reports challenge outcomes that posted since the last call.
func (c *Controller) observe(g *game.Game) {
	stats := g.Stats()
	for c.seen.ChallengesCompleted < stats.ChallengesCompleted {
		c.seen.ChallengesCompleted++
		c.svc.ReportOutcome(true)
	}
	for c.seen.ChallengesFailed < stats.ChallengesFailed {
		c.seen.ChallengesFailed++
		c.svc.ReportOutcome(false)
	}
}

// Notify implements game.Controller. Terminal events trigger a final
// outcome sweep; everything else is ignored.
func (c *Controller) Notify(ctx context.Context, event log.GameEvent) error {
	if c.g != nil && (event.Type == log.EventGameOver || event.Type == log.EventGameClear) {
		c.observe(c.g)
	}
	return nil
}
