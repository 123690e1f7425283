package game

import (
	"context"
	"fmt"

	"lifedeck/internal/log"
)

// Controller is the interface that human (terminal, WebSocket) and
// automated (AI, MCP) players implement to drive a game.
type Controller interface {
	// ChooseAction presents the legal actions for the current phase and
	// waits for the player to pick one.
	ChooseAction(ctx context.Context, g *Game, actions []Action) (Action, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// Runner drives a game to completion by repeatedly consulting a
// controller with the legal actions of the current phase.
type Runner struct {
	game       *Game
	controller Controller
	sent       int
	maxSteps   int
}

func NewRunner(g *Game, c Controller) *Runner {
	return &Runner{game: g, controller: c, maxSteps: 10000}
}

// Run starts the game if necessary and loops until a terminal phase.
// It returns the terminal phase reached.
func (r *Runner) Run(ctx context.Context) (Phase, error) {
	g := r.game
	if g.Phase() == PhaseNone {
		if err := g.Start(); err != nil {
			return g.Phase(), err
		}
	}

	for steps := 0; !g.IsOver(); steps++ {
		if steps >= r.maxSteps {
			return g.Phase(), fmt.Errorf("no progress after %d steps in %s", r.maxSteps, g.Phase())
		}
		if err := ctx.Err(); err != nil {
			return g.Phase(), err
		}
		if err := r.flushEvents(ctx); err != nil {
			return g.Phase(), err
		}
		actions := AvailableActions(g)
		if len(actions) == 0 {
			return g.Phase(), fmt.Errorf("no legal actions in %s", g.Phase())
		}
		action, err := r.controller.ChooseAction(ctx, g, actions)
		if err != nil {
			return g.Phase(), err
		}
		if err := r.execute(action); err != nil {
			return g.Phase(), err
		}
	}

	if err := r.flushEvents(ctx); err != nil {
		return g.Phase(), err
	}
	return g.Phase(), nil
}

// flushEvents forwards events logged since the last flush.
func (r *Runner) flushEvents(ctx context.Context) error {
	events := r.game.Logger().Events()
	for ; r.sent < len(events); r.sent++ {
		if err := r.controller.Notify(ctx, events[r.sent]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) execute(a Action) error {
	g := r.game
	switch a.Type {
	case ActionSelectDream:
		return g.SelectDream(a.Card)
	case ActionDrawCards:
		_, err := g.DrawCards(a.Count)
		return err
	case ActionStartChallenge:
		return g.StartChallenge(a.Card)
	case ActionToggleCard:
		_, err := g.ToggleCardSelection(a.Card)
		return err
	case ActionResolveChallenge:
		_, err := g.ResolveChallenge()
		return err
	case ActionBuyInsurance:
		return g.BuyInsurance(a.Card)
	case ActionSkipInsurance:
		return g.SkipInsurance()
	case ActionEndTurn:
		return g.EndTurn()
	default:
		return fmt.Errorf("unknown action type %d", a.Type)
	}
}

// AvailableActions enumerates the legal actions in the current phase.
func AvailableActions(g *Game) []Action {
	m := g.Manager()
	var actions []Action
	switch g.Phase() {
	case PhaseDreamSelection:
		for _, c := range m.CardChoices() {
			actions = append(actions, Action{
				Type: ActionSelectDream,
				Card: c,
				Desc: fmt.Sprintf("Choose dream: %s", c.DisplayString()),
			})
		}
	case PhaseDraw:
		n := g.Config().CardsPerTurn
		actions = append(actions, Action{
			Type:  ActionDrawCards,
			Count: n,
			Desc:  fmt.Sprintf("Draw %d cards", n),
		})
	case PhaseChallengeSelection:
		for _, c := range m.CardChoices() {
			actions = append(actions, Action{
				Type: ActionStartChallenge,
				Card: c,
				Desc: fmt.Sprintf("Take on %s", c.DisplayString()),
			})
		}
	case PhaseChallengeResolution:
		for _, c := range m.Hand() {
			marker := ""
			if m.IsSelected(c.ID) {
				marker = " [selected]"
			}
			actions = append(actions, Action{
				Type: ActionToggleCard,
				Card: c,
				Desc: fmt.Sprintf("Toggle %s%s", c.DisplayString(), marker),
			})
		}
		target := 0
		if ch := g.CurrentChallenge(); ch != nil {
			target = ch.EffectivePower()
		}
		actions = append(actions, Action{
			Type: ActionResolveChallenge,
			Desc: fmt.Sprintf("Resolve challenge (committed %d vs %d)", g.CommittedPower(), target),
		})
	case PhaseInsuranceSelection:
		for _, c := range m.InsuranceMarket() {
			actions = append(actions, Action{
				Type: ActionBuyInsurance,
				Card: c,
				Desc: fmt.Sprintf("Buy %s", c.DisplayString()),
			})
		}
		actions = append(actions, Action{Type: ActionSkipInsurance, Desc: "Skip insurance"})
	case PhaseEndTurn:
		actions = append(actions, Action{Type: ActionEndTurn, Desc: "End turn"})
	}
	return actions
}
