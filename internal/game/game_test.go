package game

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lifedeck/internal/log"
)

// startedGame builds, initializes and starts a game in one call.
func startedGame(t *testing.T, cfg GameConfig, player, challenge, aging *Deck) (*Game, *log.MemoryLogger) {
	t.Helper()
	g, logger := newTestGame(t, cfg, player, challenge, aging)
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return g, logger
}

func TestStartLifecycle(t *testing.T) {
	g := NewGame(testConfig(), nil)
	if err := g.Start(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("start before initialize error = %v, want ErrNotInitialized", err)
	}

	cfg := testConfig()
	cfg.StartingHandSize = 3
	g, _ = startedGame(t, cfg, lifeDeck("life", 5, 2), challengeDeck("ch", 3, 5), nil)

	if g.Phase() != PhaseDraw {
		t.Errorf("phase = %s, want Draw (no dreams in challenge deck)", g.Phase())
	}
	if g.Turn() != 1 {
		t.Errorf("turn = %d, want 1", g.Turn())
	}
	if g.Vitality() != 20 {
		t.Errorf("vitality = %d, want 20", g.Vitality())
	}
	if g.Stage() != StageYouth {
		t.Errorf("stage = %s, want Youth", g.Stage())
	}
	if got := g.Manager().HandSize(); got != 3 {
		t.Errorf("starting hand = %d, want 3", got)
	}

	if err := g.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second start error = %v, want ErrAlreadyStarted", err)
	}
}

func TestDreamSelection(t *testing.T) {
	challenge := stackedDeck("challenge",
		dreamCard("artist", 2), challengeCard("exam", 4), dreamCard("traveler", 3))
	g, logger := startedGame(t, testConfig(), lifeDeck("life", 8, 2), challenge, nil)

	if g.Phase() != PhaseDreamSelection {
		t.Fatalf("phase = %s, want Dream Selection", g.Phase())
	}
	choices := g.Manager().CardChoices()
	if len(choices) != 2 {
		t.Fatalf("dream choices = %d, want 2", len(choices))
	}

	if err := g.SelectDream(choices[0]); err != nil {
		t.Fatalf("select dream: %v", err)
	}
	if g.Dream() == nil || g.Dream().ID != choices[0].ID {
		t.Errorf("dream = %v, want %s", g.Dream(), choices[0].Name)
	}
	if g.Phase() != PhaseDraw {
		t.Errorf("phase after dream = %s, want Draw", g.Phase())
	}

	// The unchosen dream goes back into the challenge deck.
	if !g.Manager().ChallengeDeck().Contains(choices[1].ID) {
		t.Error("unchosen dream not returned to challenge deck")
	}
	if got := logger.EventsOfType(log.EventDreamSelected); len(got) != 1 {
		t.Errorf("dream selected events = %d, want 1", len(got))
	}

	// Selecting again is a phase error now.
	var perr *PhaseError
	if err := g.SelectDream(choices[1]); !errors.As(err, &perr) {
		t.Errorf("second select error = %v, want PhaseError", err)
	}
}

func TestPhaseErrors(t *testing.T) {
	g, _ := startedGame(t, testConfig(), lifeDeck("life", 8, 2), challengeDeck("ch", 3, 5), nil)
	if g.Phase() != PhaseDraw {
		t.Fatalf("phase = %s, want Draw", g.Phase())
	}

	var perr *PhaseError
	check := func(op string, err error, want Phase) {
		t.Helper()
		if !errors.As(err, &perr) {
			t.Fatalf("%s error = %v, want PhaseError", op, err)
		}
		if perr.Expected != want || perr.Actual != PhaseDraw {
			t.Errorf("%s PhaseError = want %s in %s, got want %s in %s",
				op, want, PhaseDraw, perr.Expected, perr.Actual)
		}
	}

	check("select dream", g.SelectDream(dreamCard("d", 1)), PhaseDreamSelection)
	check("start challenge", g.StartChallenge(challengeCard("c", 1)), PhaseChallengeSelection)
	_, err := g.ResolveChallenge()
	check("resolve", err, PhaseChallengeResolution)
	_, err = g.ToggleCardSelection(lifeCard("l", 1))
	check("toggle", err, PhaseChallengeResolution)
	check("buy insurance", g.BuyInsurance(termPolicy("i", 1, 1, 1)), PhaseInsuranceSelection)
	check("skip insurance", g.SkipInsurance(), PhaseInsuranceSelection)
	check("end turn", g.EndTurn(), PhaseEndTurn)
}

func TestVitalityClampAndDeath(t *testing.T) {
	g, logger := startedGame(t, testConfig(), lifeDeck("life", 8, 2), challengeDeck("ch", 3, 5), nil)

	if err := g.ApplyDamage(5); err != nil {
		t.Fatalf("damage: %v", err)
	}
	if g.Vitality() != 15 {
		t.Errorf("vitality = %d, want 15", g.Vitality())
	}

	if err := g.Heal(100); err != nil {
		t.Fatalf("heal: %v", err)
	}
	if g.Vitality() != g.MaxVitality() {
		t.Errorf("vitality = %d, want clamped to max %d", g.Vitality(), g.MaxVitality())
	}

	// Negative amounts are ignored, not inverted.
	if err := g.ApplyDamage(-3); err != nil {
		t.Fatalf("negative damage: %v", err)
	}
	if g.Vitality() != g.MaxVitality() {
		t.Errorf("vitality = %d after negative damage, want unchanged", g.Vitality())
	}

	if err := g.ApplyDamage(999); err != nil {
		t.Fatalf("lethal damage: %v", err)
	}
	if g.Vitality() != 0 {
		t.Errorf("vitality = %d, want 0", g.Vitality())
	}
	if g.Phase() != PhaseGameOver || !g.IsOver() {
		t.Errorf("phase = %s, want Game Over", g.Phase())
	}
	if !strings.Contains(g.Result(), "vitality exhausted") {
		t.Errorf("result = %q, want vitality exhausted", g.Result())
	}
	if got := logger.EventsOfType(log.EventGameOver); len(got) != 1 {
		t.Errorf("game over events = %d, want 1", len(got))
	}

	// Terminal games reject further vitality changes.
	if err := g.ApplyDamage(1); !errors.Is(err, ErrGameOver) {
		t.Errorf("damage after game over = %v, want ErrGameOver", err)
	}
	if err := g.Heal(1); !errors.Is(err, ErrGameOver) {
		t.Errorf("heal after game over = %v, want ErrGameOver", err)
	}
}

// marketOf returns a supplier producing one fresh policy per turn.
func marketOf(power int) MarketSupplier {
	return func(stage Stage, turn int) []*Card {
		name := fmt.Sprintf("policy-t%d", turn)
		return []*Card{wholeLifePolicy(name, power, 1)}
	}
}

func TestChallengeSuccessFlow(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 3
	cfg.ChallengeChoices = 2

	logger := log.NewMemoryLogger()
	g := NewGame(cfg, logger)
	g.SetMarketSupplier(marketOf(2))
	if err := g.Initialize(lifeDeck("l", 5, 3), challengeDeck("ch", 3, 5), nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := g.DrawCards(0)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(res.Drawn) != 2 {
		t.Errorf("drew %d cards, want per-turn default 2", len(res.Drawn))
	}
	if g.Phase() != PhaseChallengeSelection {
		t.Fatalf("phase = %s, want Challenge Selection", g.Phase())
	}

	offers := g.Manager().CardChoices()
	if len(offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(offers))
	}
	if err := g.StartChallenge(offers[0]); err != nil {
		t.Fatalf("start challenge: %v", err)
	}
	if g.CurrentChallenge() == nil || g.CurrentChallenge().ID != offers[0].ID {
		t.Fatalf("current challenge = %v, want %s", g.CurrentChallenge(), offers[0].Name)
	}
	// The unchosen offer returns to the deck.
	if !g.Manager().ChallengeDeck().Contains(offers[1].ID) {
		t.Error("unchosen offer not returned to deck")
	}

	hand := g.Manager().Hand()
	for _, c := range hand[:2] {
		if _, err := g.ToggleCardSelection(c); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	if got := g.CommittedPower(); got != 6 {
		t.Fatalf("committed power = %d, want 6", got)
	}

	result, err := g.ResolveChallenge()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !result.Success || result.TotalPower != 6 || result.TargetPower != 5 {
		t.Errorf("result = %+v, want success 6 vs 5", result)
	}
	if len(result.CardsUsed) != 2 {
		t.Errorf("cards used = %d, want 2", len(result.CardsUsed))
	}

	stats := g.Stats()
	if stats.ChallengesCompleted != 1 || stats.CardsPlayed != 2 {
		t.Errorf("stats = %+v, want 1 completed, 2 played", stats)
	}
	if g.CurrentChallenge() != nil {
		t.Error("current challenge not cleared after resolution")
	}

	// Market is stocked, so success opens the insurance phase.
	if g.Phase() != PhaseInsuranceSelection {
		t.Fatalf("phase = %s, want Insurance Selection", g.Phase())
	}
	offer := g.Manager().InsuranceMarket()[0]
	if err := g.BuyInsurance(offer); err != nil {
		t.Fatalf("buy insurance: %v", err)
	}
	if g.Stats().InsuranceCardsPurchased != 1 {
		t.Errorf("insurance purchased = %d, want 1", g.Stats().InsuranceCardsPurchased)
	}
	if g.Phase() != PhaseEndTurn {
		t.Fatalf("phase = %s, want End Turn", g.Phase())
	}

	if err := g.EndTurn(); err != nil {
		t.Fatalf("end turn: %v", err)
	}
	if g.Turn() != 2 || g.Phase() != PhaseDraw {
		t.Errorf("turn %d phase %s, want turn 2 in Draw", g.Turn(), g.Phase())
	}

	resolved := logger.EventsOfType(log.EventChallengeResolved)
	if len(resolved) != 1 || !strings.Contains(resolved[0].Details, "succeeded") {
		t.Errorf("challenge resolved events = %v", resolved)
	}
	if got := logger.EventsOfType(log.EventInsurancePurchased); len(got) != 1 {
		t.Errorf("insurance purchased events = %d, want 1", len(got))
	}
}

func TestChallengeFailureDamage(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 3
	g, logger := startedGame(t, cfg, lifeDeck("l", 5, 3), challengeDeck("ch", 3, 5), nil)

	if _, err := g.DrawCards(0); err != nil {
		t.Fatalf("draw: %v", err)
	}
	offers := g.Manager().CardChoices()
	if err := g.StartChallenge(offers[0]); err != nil {
		t.Fatalf("start challenge: %v", err)
	}

	// Commit nothing: shortfall is the full challenge power.
	result, err := g.ResolveChallenge()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.Success {
		t.Fatal("challenge succeeded with no cards committed")
	}
	if result.Damage != 5 {
		t.Errorf("damage = %d, want 5", result.Damage)
	}
	if g.Vitality() != 15 {
		t.Errorf("vitality = %d, want 15", g.Vitality())
	}
	if g.Stats().ChallengesFailed != 1 {
		t.Errorf("failed count = %d, want 1", g.Stats().ChallengesFailed)
	}
	// No market: failure goes straight to end of turn.
	if g.Phase() != PhaseEndTurn {
		t.Errorf("phase = %s, want End Turn", g.Phase())
	}

	resolved := logger.EventsOfType(log.EventChallengeResolved)
	if len(resolved) != 1 || !strings.Contains(resolved[0].Details, "FAILED") {
		t.Errorf("challenge resolved events = %v", resolved)
	}
}

func TestInsuranceShieldSoftensFailure(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 3
	g, _ := startedGame(t, cfg, lifeDeck("l", 5, 3), challengeDeck("ch", 3, 5), nil)

	// Hold an active policy before failing a challenge.
	shield := wholeLifePolicy("shield", 2, 1)
	g.Manager().StockMarket([]*Card{shield})
	if err := g.Manager().BuyInsurance(shield, 1); err != nil {
		t.Fatalf("buy: %v", err)
	}

	if _, err := g.DrawCards(0); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if err := g.StartChallenge(g.Manager().CardChoices()[0]); err != nil {
		t.Fatalf("start challenge: %v", err)
	}
	result, err := g.ResolveChallenge()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.Damage != 3 {
		t.Errorf("damage = %d, want 5 target - 2 shield = 3", result.Damage)
	}
	if g.Vitality() != 17 {
		t.Errorf("vitality = %d, want 17", g.Vitality())
	}
}

func TestFailureDamageFloorsAtOne(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 3
	g, _ := startedGame(t, cfg, lifeDeck("l", 5, 3), challengeDeck("ch", 3, 5), nil)

	big := wholeLifePolicy("big", 10, 1)
	g.Manager().StockMarket([]*Card{big})
	if err := g.Manager().BuyInsurance(big, 1); err != nil {
		t.Fatalf("buy: %v", err)
	}

	if _, err := g.DrawCards(0); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if err := g.StartChallenge(g.Manager().CardChoices()[0]); err != nil {
		t.Fatalf("start challenge: %v", err)
	}
	result, err := g.ResolveChallenge()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.Damage != 1 {
		t.Errorf("damage = %d, want floor of 1", result.Damage)
	}
}

func TestCommittedPowerBurden(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 3
	g, _ := startedGame(t, cfg, lifeDeck("l", 5, 3), challengeDeck("ch", 3, 5), nil)

	policies := []*Card{
		wholeLifePolicy("p-1", 1, 1),
		wholeLifePolicy("p-2", 1, 1),
		wholeLifePolicy("p-3", 1, 1),
	}
	g.Manager().StockMarket(policies)
	for _, p := range policies {
		if err := g.Manager().BuyInsurance(p, 1); err != nil {
			t.Fatalf("buy %s: %v", p.Name, err)
		}
	}

	if _, err := g.DrawCards(0); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if err := g.StartChallenge(g.Manager().CardChoices()[0]); err != nil {
		t.Fatalf("start challenge: %v", err)
	}
	for _, c := range g.Manager().Hand()[:2] {
		if _, err := g.ToggleCardSelection(c); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	// 3+3 power selected, minus 1 burden for carrying three policies.
	if got := g.CommittedPower(); got != 5 {
		t.Errorf("committed power = %d, want 5", got)
	}
}

func TestStageProgression(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 3
	cfg.Balance.StageThresholds = [2]int{1, 2}
	// Power-0 challenges succeed with nothing committed.
	g, logger := startedGame(t, cfg, lifeDeck("l", 12, 2), challengeDeck("easy", 4, 0), nil)

	playTurn := func() {
		t.Helper()
		if _, err := g.DrawCards(0); err != nil {
			t.Fatalf("draw: %v", err)
		}
		if err := g.StartChallenge(g.Manager().CardChoices()[0]); err != nil {
			t.Fatalf("start challenge: %v", err)
		}
		if _, err := g.ResolveChallenge(); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if err := g.EndTurn(); err != nil {
			t.Fatalf("end turn: %v", err)
		}
	}

	if g.Stage() != StageYouth {
		t.Fatalf("stage = %s, want Youth", g.Stage())
	}
	playTurn()
	if g.Stage() != StageMiddle {
		t.Errorf("stage after 1 completion = %s, want Middle Age", g.Stage())
	}
	playTurn()
	if g.Stage() != StageFulfillment {
		t.Errorf("stage after 2 completions = %s, want Fulfillment", g.Stage())
	}
	if got := logger.EventsOfType(log.EventStageAdvance); len(got) != 2 {
		t.Errorf("stage advance events = %d, want 2", len(got))
	}
}

func TestTroubleResolvedOnDraw(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 3
	player := stackedDeck("player",
		troubleCard("layoff", 3), lifeCard("l-1", 2), lifeCard("l-2", 2), lifeCard("l-3", 2))
	g, logger := startedGame(t, cfg, player, challengeDeck("ch", 2, 5), nil)

	// The trouble card consumed one of the three starting draws.
	if got := g.Manager().HandSize(); got != 2 {
		t.Errorf("hand size = %d, want 2", got)
	}
	if g.Vitality() != 17 {
		t.Errorf("vitality = %d, want 17 after trouble damage", g.Vitality())
	}

	// Resolved trouble leaves the game entirely.
	for _, c := range g.Manager().DiscardPile() {
		if c.Name == "layoff" {
			t.Error("resolved trouble card still in discard pile")
		}
	}
	if got := g.Manager().CirculatingCount(); got != 3 {
		t.Errorf("circulating count = %d, want 3", got)
	}

	if got := logger.EventsOfType(log.EventTroubleDrawn); len(got) != 1 {
		t.Errorf("trouble events = %d, want 1", len(got))
	}
	if got := logger.EventsOfType(log.EventCardRemoved); len(got) != 1 {
		t.Errorf("card removed events = %d, want 1", len(got))
	}
}

func TestLethalTroubleAtStart(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 2
	player := stackedDeck("player",
		troubleCard("catastrophe", 25), lifeCard("l-1", 2), lifeCard("l-2", 2))
	g, _ := newTestGame(t, cfg, player, challengeDeck("ch", 2, 5), nil)

	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if g.Phase() != PhaseGameOver {
		t.Errorf("phase = %s, want Game Over", g.Phase())
	}
	if !strings.Contains(g.Result(), "vitality exhausted") {
		t.Errorf("result = %q", g.Result())
	}
}

func TestAgingExhaustionEndsGame(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 2
	g, logger := startedGame(t, cfg, lifeDeck("l", 2, 2), challengeDeck("ch", 1, 5), nil)

	// Empty the hand into the discard pile so the next draw reshuffles.
	for _, c := range g.Manager().Hand() {
		if _, err := g.Manager().ToggleCardSelection(c); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	if _, err := g.Manager().DiscardSelectedCards(); err != nil {
		t.Fatalf("discard: %v", err)
	}

	res, err := g.DrawCards(0)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !res.AgingExhausted {
		t.Fatal("AgingExhausted = false, want true")
	}
	if g.Phase() != PhaseGameOver {
		t.Errorf("phase = %s, want Game Over", g.Phase())
	}
	if !strings.Contains(g.Result(), "aging") {
		t.Errorf("result = %q, want aging exhaustion", g.Result())
	}
	if got := logger.EventsOfType(log.EventAgingExhausted); len(got) != 1 {
		t.Errorf("aging exhausted events = %d, want 1", len(got))
	}
}

func TestTurnLimitSettlement(t *testing.T) {
	baseCfg := func() GameConfig {
		cfg := testConfig()
		cfg.StartingHandSize = 2
		cfg.Balance.Progression.MaxTurns = 2
		cfg.Balance.Progression.Victory.MinTurns = 1
		cfg.Balance.Progression.Victory.MinVitality = 10
		return cfg
	}

	// playToLimit walks turns of draw → (empty offers) → end turn.
	playToLimit := func(t *testing.T, g *Game) {
		t.Helper()
		for !g.IsOver() {
			if _, err := g.DrawCards(0); err != nil {
				t.Fatalf("draw: %v", err)
			}
			if g.IsOver() {
				return
			}
			if g.Phase() != PhaseEndTurn {
				t.Fatalf("phase = %s, want End Turn (challenge deck should be out of offers)", g.Phase())
			}
			if err := g.EndTurn(); err != nil {
				t.Fatalf("end turn: %v", err)
			}
		}
	}

	t.Run("dream fulfilled", func(t *testing.T) {
		challenge := stackedDeck("challenge", dreamCard("quiet-life", 0))
		g, _ := startedGame(t, baseCfg(), lifeDeck("l", 10, 2), challenge, nil)
		if err := g.SelectDream(g.Manager().CardChoices()[0]); err != nil {
			t.Fatalf("select dream: %v", err)
		}
		playToLimit(t, g)

		if g.Phase() != PhaseGameClear {
			t.Fatalf("phase = %s, want Game Clear", g.Phase())
		}
		if !strings.Contains(g.Result(), "dream fulfilled") {
			t.Errorf("result = %q, want dream fulfilled", g.Result())
		}
	})

	t.Run("survived without dream", func(t *testing.T) {
		challenge := stackedDeck("challenge", dreamCard("grand-tour", 9))
		g, _ := startedGame(t, baseCfg(), lifeDeck("l", 10, 2), challenge, nil)
		if err := g.SelectDream(g.Manager().CardChoices()[0]); err != nil {
			t.Fatalf("select dream: %v", err)
		}
		playToLimit(t, g)

		if g.Phase() != PhaseGameClear {
			t.Fatalf("phase = %s, want Game Clear", g.Phase())
		}
		if !strings.Contains(g.Result(), "survived") {
			t.Errorf("result = %q, want survived", g.Result())
		}
	})

	t.Run("below minimum vitality", func(t *testing.T) {
		challenge := stackedDeck("challenge", dreamCard("quiet-life", 0))
		g, logger := startedGame(t, baseCfg(), lifeDeck("l", 10, 2), challenge, nil)
		if err := g.SelectDream(g.Manager().CardChoices()[0]); err != nil {
			t.Fatalf("select dream: %v", err)
		}
		if err := g.ApplyDamage(15); err != nil {
			t.Fatalf("damage: %v", err)
		}
		playToLimit(t, g)

		if g.Phase() != PhaseGameOver {
			t.Fatalf("phase = %s, want Game Over", g.Phase())
		}
		if got := logger.EventsOfType(log.EventGameOver); len(got) != 1 {
			t.Errorf("game over events = %d, want 1", len(got))
		}
	})
}

// --- AI delegation ---

type stubAdvisor struct{}

func (stubAdvisor) ChooseChallenge(g *Game, challenges []*Card) (*Card, string, float64, error) {
	return challenges[0], "first offer", 0.5, nil
}

func (stubAdvisor) ChooseCards(g *Game, challenge *Card, available []*Card) ([]*Card, string, int, error) {
	if len(available) == 0 {
		return nil, "empty hand", 0, nil
	}
	return available[:1], "first card", available[0].EffectivePower(), nil
}

func TestAISelectGating(t *testing.T) {
	cfg := testConfig()
	cfg.StartingHandSize = 3
	g, _ := startedGame(t, cfg, lifeDeck("l", 6, 3), challengeDeck("ch", 3, 5), nil)

	if _, _, _, err := g.AISelectChallenge(); !errors.Is(err, ErrAINotEnabled) {
		t.Errorf("no advisor error = %v, want ErrAINotEnabled", err)
	}
	g.SetAdvisor(stubAdvisor{})
	if _, _, _, err := g.AISelectChallenge(); !errors.Is(err, ErrAINotEnabled) {
		t.Errorf("disabled error = %v, want ErrAINotEnabled", err)
	}

	g.SetAIEnabled(true)
	var perr *PhaseError
	if _, _, _, err := g.AISelectChallenge(); !errors.As(err, &perr) {
		t.Errorf("wrong phase error = %v, want PhaseError", err)
	}

	if _, err := g.DrawCards(0); err != nil {
		t.Fatalf("draw: %v", err)
	}
	pick, reason, prob, err := g.AISelectChallenge()
	if err != nil {
		t.Fatalf("ai select challenge: %v", err)
	}
	if pick == nil || reason != "first offer" || prob != 0.5 {
		t.Errorf("ai pick = (%v, %q, %v)", pick, reason, prob)
	}
	// Advice is report-only: the offer set is untouched.
	if len(g.Manager().CardChoices()) == 0 {
		t.Error("advice consumed the offer set")
	}

	if err := g.StartChallenge(pick); err != nil {
		t.Fatalf("start challenge: %v", err)
	}
	handBefore := g.Manager().HandSize()
	cards, _, power, err := g.AISelectCards()
	if err != nil {
		t.Fatalf("ai select cards: %v", err)
	}
	if len(cards) != 1 || power != 3 {
		t.Errorf("ai cards = %v power %d, want 1 card power 3", cards, power)
	}
	if g.Manager().HandSize() != handBefore || len(g.Manager().SelectedCards()) != 0 {
		t.Error("advice mutated hand or selection")
	}
}
