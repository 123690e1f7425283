package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"lifedeck/internal/game"
	"lifedeck/internal/log"
)

// RemoteController implements game.Controller over a TCP connection.
type RemoteController struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	mu   sync.Mutex
}

// NewRemoteController creates a controller for the given connection.
func NewRemoteController(conn net.Conn) *RemoteController {
	return &RemoteController{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

// cardView flattens one card for the wire.
func cardView(c *game.Card, selected bool) CardView {
	cv := CardView{
		Name:     c.Name,
		Type:     c.Type.String(),
		Power:    c.EffectivePower(),
		Cost:     c.Cost,
		Selected: selected,
	}
	if c.Insurance != nil {
		cv.Premium = c.Insurance.Premium
		cv.Duration = c.Insurance.Duration.String()
	}
	return cv
}

func cardViews(cards []*game.Card) []CardView {
	if len(cards) == 0 {
		return nil
	}
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, cardView(c, false))
	}
	return views
}

// BuildStateView snapshots the game for the client.
func BuildStateView(g *game.Game) *StateView {
	m := g.Manager()
	stats := g.Stats()

	sv := &StateView{
		Turn:        g.Turn(),
		Phase:       g.Phase().String(),
		Stage:       g.Stage().String(),
		Vitality:    g.Vitality(),
		MaxVitality: g.MaxVitality(),
		Stats: StatsView{
			Completed: stats.ChallengesCompleted,
			Failed:    stats.ChallengesFailed,
			Played:    stats.CardsPlayed,
			Insured:   stats.InsuranceCardsPurchased,
		},
		CommittedPower: g.CommittedPower(),
		DeckCount:      m.PlayerDeck().Size(),
		DiscardCount:   len(m.DiscardPile()),
		AgingCount:     m.AgingDeck().Size(),
		Market:         cardViews(m.InsuranceMarket()),
		Insurances:     cardViews(m.ActiveInsurances()),
		Choices:        cardViews(m.CardChoices()),
	}
	if d := g.Dream(); d != nil {
		dv := cardView(d, false)
		sv.Dream = &dv
	}
	if ch := g.CurrentChallenge(); ch != nil {
		cv := cardView(ch, false)
		sv.Challenge = &cv
	}
	for _, c := range m.Hand() {
		sv.Hand = append(sv.Hand, cardView(c, m.IsSelected(c.ID)))
	}
	return sv
}

// send sends a server message to the client. Must be called with mu held.
func (rc *RemoteController) send(msg ServerMessage) error {
	return rc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (rc *RemoteController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := rc.dec.Decode(&msg)
	return msg, err
}

// ChooseAction implements game.Controller.
func (rc *RemoteController) ChooseAction(ctx context.Context, g *game.Game, actions []game.Action) (game.Action, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	var views []ActionView
	for i, a := range actions {
		views = append(views, ActionView{Index: i, Desc: a.String()})
	}

	msg := ServerMessage{
		Type:    "choose_action",
		Actions: views,
		State:   BuildStateView(g),
	}
	if err := rc.send(msg); err != nil {
		return game.Action{}, fmt.Errorf("send choose_action: %w", err)
	}

	resp, err := rc.recv()
	if err != nil {
		return game.Action{}, fmt.Errorf("recv action: %w", err)
	}

	if resp.Index < 0 || resp.Index >= len(actions) {
		return actions[0], nil // fallback to first action
	}
	return actions[resp.Index], nil
}

// SendGameOver sends a game_over message to the client.
func (rc *RemoteController) SendGameOver(result string) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.send(ServerMessage{Type: "game_over", Result: result})
}

// Notify implements game.Controller.
func (rc *RemoteController) Notify(ctx context.Context, event log.GameEvent) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	msg := ServerMessage{
		Type: "notify",
		Event: &EventView{
			Turn:    event.Turn,
			Phase:   event.Phase,
			Stage:   event.Stage,
			Type:    event.Type.String(),
			Card:    event.Card,
			Details: event.Details,
		},
	}
	return rc.send(msg)
}
