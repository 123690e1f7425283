package game

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"lifedeck/internal/log"
)

// --- Test card helpers ---

func lifeCard(name string, power int) *Card {
	return &Card{ID: name, Name: name, Type: TypeLife, Power: power}
}

func troubleCard(name string, power int) *Card {
	return &Card{ID: name, Name: name, Type: TypeTrouble, Power: power}
}

func challengeCard(name string, power int) *Card {
	return &Card{ID: name, Name: name, Type: TypeChallenge, Power: power}
}

func dreamCard(name string, power int) *Card {
	return &Card{ID: name, Name: name, Type: TypeDream, Power: power}
}

func termPolicy(name string, power, premium, turns int) *Card {
	return &Card{ID: name, Name: name, Type: TypeInsurance, Power: power,
		Insurance: &InsuranceTerms{Duration: TermInsurance, TermTurns: turns, Premium: premium}}
}

func wholeLifePolicy(name string, power, premium int) *Card {
	return &Card{ID: name, Name: name, Type: TypeInsurance, Power: power,
		Insurance: &InsuranceTerms{Duration: WholeLifeInsurance, Premium: premium}}
}

// stackedDeck builds a deck where cards[0] is drawn first.
func stackedDeck(name string, cards ...*Card) *Deck {
	d := NewDeck(name)
	for i := len(cards) - 1; i >= 0; i-- {
		d.AddCard(cards[i])
	}
	return d
}

// lifeDeck builds a deck of n life cards named prefix-1..n, all with the
// same power, drawn in ascending order.
func lifeDeck(prefix string, n, power int) *Deck {
	cards := make([]*Card, n)
	for i := range cards {
		cards[i] = lifeCard(fmt.Sprintf("%s-%d", prefix, i+1), power)
	}
	return stackedDeck(prefix, cards...)
}

func challengeDeck(prefix string, n, power int) *Deck {
	cards := make([]*Card, n)
	for i := range cards {
		cards[i] = challengeCard(fmt.Sprintf("%s-%d", prefix, i+1), power)
	}
	return stackedDeck(prefix, cards...)
}

func agingDeck(n int) *Deck {
	cards := make([]*Card, n)
	for i := range cards {
		cards[i] = lifeCard(fmt.Sprintf("aging-%d", i+1), 0)
	}
	return stackedDeck("aging", cards...)
}

// testConfig is deterministic: fixed seed, no setup shuffle.
func testConfig() GameConfig {
	return GameConfig{Seed: 42, NoShuffle: true}
}

// newTestManager returns an initialized manager over the given decks.
func newTestManager(t *testing.T, cfg GameConfig, player, challenge, aging *Deck) *CardManager {
	t.Helper()
	c := cfg.Normalized()
	m := NewCardManager(rand.New(rand.NewSource(c.Seed)))
	if err := m.Initialize(player, challenge, aging, &c); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return m
}

// newTestGame builds an initialized (but not started) game with a memory
// logger.
func newTestGame(t *testing.T, cfg GameConfig, player, challenge, aging *Deck) (*Game, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	g := NewGame(cfg, logger)
	if err := g.Initialize(player, challenge, aging); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return g, logger
}

// --- ScriptedController: drives a game through a predefined action list ---

type ScriptedAction struct {
	// Match by ActionType — picks the first available action of this type
	Type ActionType
	// Optional: match by card name as well
	CardName string
}

type ScriptedController struct {
	t        *testing.T
	actions  []ScriptedAction
	pos      int
	notified []log.GameEvent
}

func NewScriptedController(t *testing.T) *ScriptedController {
	return &ScriptedController{t: t}
}

func (sc *ScriptedController) Add(actionType ActionType, cardName string) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: actionType, CardName: cardName})
	return sc
}

// defaultAction keeps an unscripted game moving: draw, resolve, decline
// insurance, end the turn, and take the first choice where one is forced.
func defaultAction(actions []Action) Action {
	for _, want := range []ActionType{ActionDrawCards, ActionResolveChallenge, ActionSkipInsurance, ActionEndTurn, ActionSelectDream, ActionStartChallenge} {
		for _, a := range actions {
			if a.Type == want {
				return a
			}
		}
	}
	return actions[0]
}

func (sc *ScriptedController) ChooseAction(ctx context.Context, g *Game, actions []Action) (Action, error) {
	if sc.pos >= len(sc.actions) {
		return defaultAction(actions), nil
	}

	// Peek at the next scripted action — only consume it if it matches an
	// available action, so scripts can span phases without listing every
	// housekeeping move.
	scripted := sc.actions[sc.pos]
	for _, a := range actions {
		if a.Type != scripted.Type {
			continue
		}
		if scripted.CardName != "" && (a.Card == nil || a.Card.Name != scripted.CardName) {
			continue
		}
		sc.pos++
		return a, nil
	}
	return defaultAction(actions), nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	sc.notified = append(sc.notified, event)
	return nil
}

// runGameToCompletion drives the game with the given controller and
// returns the logger for inspection.
func runGameToCompletion(t *testing.T, g *Game, sc *ScriptedController) *log.MemoryLogger {
	t.Helper()
	logger, ok := g.Logger().(*log.MemoryLogger)
	if !ok {
		t.Fatal("game logger is not a MemoryLogger")
	}

	runner := NewRunner(g, sc)
	final, err := runner.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("run error: %v", err)
	}

	t.Logf("Game result: %s (%s)", final, g.Result())
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
	return logger
}
