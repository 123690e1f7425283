package mcp

import (
	"context"

	"lifedeck/internal/game"
	"lifedeck/internal/log"
	"lifedeck/internal/net"
)

// sessionController implements game.Controller by parking each decision
// on the session's pending channel and blocking until a tool call
// answers on the response channel.
type sessionController struct {
	session    *Session
	responseCh chan int
}

func newSessionController(s *Session) *sessionController {
	return &sessionController{session: s, responseCh: make(chan int)}
}

// ChooseAction implements game.Controller.
func (c *sessionController) ChooseAction(ctx context.Context, g *game.Game, actions []game.Action) (game.Action, error) {
	views := make([]net.ActionView, len(actions))
	for i, a := range actions {
		views[i] = net.ActionView{Index: i, Desc: a.String()}
	}

	c.session.setActions(actions)
	c.session.pendingCh <- &PendingDecision{
		Type:    DecisionChooseAction,
		State:   net.BuildStateView(g),
		Actions: views,
	}

	select {
	case idx := <-c.responseCh:
		if idx < 0 || idx >= len(actions) {
			return actions[0], nil // fallback to first action
		}
		return actions[idx], nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

// Notify implements game.Controller.
func (c *sessionController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(net.EventView{
		Turn:    event.Turn,
		Phase:   event.Phase,
		Stage:   event.Stage,
		Type:    event.Type.String(),
		Card:    event.Card,
		Details: event.Details,
	})
	return nil
}
