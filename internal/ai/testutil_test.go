package ai

import (
	"fmt"
	"testing"

	"lifedeck/internal/game"
)

// --- Test card helpers ---

func lifeCard(name string, power int) *game.Card {
	return &game.Card{ID: name, Name: name, Type: game.TypeLife, Power: power}
}

func costedCard(name string, power, cost int) *game.Card {
	return &game.Card{ID: name, Name: name, Type: game.TypeLife, Power: power, Cost: cost}
}

func troubleCard(name string, power int) *game.Card {
	return &game.Card{ID: name, Name: name, Type: game.TypeTrouble, Power: power}
}

func challengeCard(name string, power int) *game.Card {
	return &game.Card{ID: name, Name: name, Type: game.TypeChallenge, Power: power}
}

func dreamCard(name string, power int) *game.Card {
	return &game.Card{ID: name, Name: name, Type: game.TypeDream, Power: power}
}

func wholeLifePolicy(name string, power, premium int) *game.Card {
	return &game.Card{ID: name, Name: name, Type: game.TypeInsurance, Power: power,
		Insurance: &game.InsuranceTerms{Duration: game.WholeLifeInsurance, Premium: premium}}
}

// stackedDeck builds a deck where cards[0] is drawn first.
func stackedDeck(name string, cards ...*game.Card) *game.Deck {
	d := game.NewDeck(name)
	for i := len(cards) - 1; i >= 0; i-- {
		d.AddCard(cards[i])
	}
	return d
}

func agingCards(n int) []*game.Card {
	cards := make([]*game.Card, n)
	for i := range cards {
		cards[i] = lifeCard(fmt.Sprintf("aging-%d", i+1), 0)
	}
	return cards
}

// testGame builds and starts a game holding exactly the given cards in
// hand, with the given challenge deck. With no dreams in the challenge
// deck it lands in the draw phase.
func testGame(t *testing.T, challenges []*game.Card, hand ...*game.Card) *game.Game {
	t.Helper()
	cards := hand
	if len(cards) == 0 {
		// A zero-power trouble card is diverted on the opening draw,
		// leaving the hand empty.
		cards = []*game.Card{troubleCard("filler", 0)}
	}
	cfg := game.GameConfig{
		Seed:             42,
		NoShuffle:        true,
		StartingHandSize: len(cards),
		MaxHandSize:      len(cards) + 2,
	}
	g := game.NewGame(cfg, nil)
	if err := g.Initialize(stackedDeck("player", cards...), stackedDeck("challenges", challenges...), nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := g.Phase(); got != game.PhaseDraw {
		t.Fatalf("phase after start = %v, want %v", got, game.PhaseDraw)
	}
	return g
}

// handGame is testGame with a boilerplate challenge deck.
func handGame(t *testing.T, hand ...*game.Card) *game.Game {
	t.Helper()
	return testGame(t, []*game.Card{challengeCard("later-1", 3), challengeCard("later-2", 5)}, hand...)
}

// toResolution advances a draw-phase game into challenge resolution
// against the named challenge.
func toResolution(t *testing.T, g *game.Game, name string) {
	t.Helper()
	if _, err := g.DrawCards(0); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := g.Phase(); got != game.PhaseChallengeSelection {
		t.Fatalf("phase after draw = %v, want %v", got, game.PhaseChallengeSelection)
	}
	for _, c := range g.Manager().CardChoices() {
		if c.Name == name {
			if err := g.StartChallenge(c); err != nil {
				t.Fatalf("start challenge: %v", err)
			}
			return
		}
	}
	t.Fatalf("challenge %q not offered", name)
}

// damageTo lowers vitality to the given value.
func damageTo(t *testing.T, g *game.Game, vitality int) {
	t.Helper()
	if err := g.ApplyDamage(g.Vitality() - vitality); err != nil {
		t.Fatalf("apply damage: %v", err)
	}
	if got := g.Vitality(); got != vitality {
		t.Fatalf("vitality = %d, want %d", got, vitality)
	}
}

func cardNames(cards []*game.Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	return names
}
