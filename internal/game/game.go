package game

import (
	"fmt"
	"math/rand"
	"time"

	"lifedeck/internal/log"
)

// MarketSupplier provides the insurance offers for a stage and turn. It
// is consulted at game start and at the start of every new turn.
type MarketSupplier func(stage Stage, turn int) []*Card

// Advisor is a pluggable decision layer consulted for automated choices.
// It reads game state but never mutates it.
type Advisor interface {
	ChooseChallenge(g *Game, challenges []*Card) (challenge *Card, reason string, successProbability float64, err error)
	ChooseCards(g *Game, challenge *Card, available []*Card) (cards []*Card, reason string, expectedPower int, err error)
}

// Game is the top-level state machine of one life: phases, turn counter,
// vitality, life stage and stats. It owns one CardManager and delegates
// all card movement to it.
type Game struct {
	cfg      GameConfig
	phase    Phase
	turn     int
	vitality int
	stage    Stage
	stats    Stats

	currentChallenge *Card
	dream            *Card
	result           string

	manager *CardManager
	logger  log.EventLogger
	rng     *rand.Rand

	market    MarketSupplier
	advisor   Advisor
	aiEnabled bool
}

// NewGame builds a game from the given config. A nil logger defaults to
// an in-memory logger. Decks are supplied separately via Initialize.
func NewGame(cfg GameConfig, logger log.EventLogger) *Game {
	cfg = cfg.Normalized()
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Game{
		cfg:      cfg,
		phase:    PhaseNone,
		vitality: cfg.StartingVitality,
		stage:    StageYouth,
		manager:  NewCardManager(rng),
		logger:   logger,
		rng:      rng,
	}
}

// Initialize seeds the card manager with the three decks. Must be called
// before Start.
func (g *Game) Initialize(playerDeck, challengeDeck, agingDeck *Deck) error {
	return g.manager.Initialize(playerDeck, challengeDeck, agingDeck, &g.cfg)
}

// SetMarketSupplier installs the per-turn insurance market source.
func (g *Game) SetMarketSupplier(s MarketSupplier) { g.market = s }

func (g *Game) log(ev log.GameEvent) { g.logger.Log(ev) }

func (g *Game) setPhase(p Phase) {
	g.phase = p
	g.log(log.NewPhaseChangeEvent(g.turn, p.String()))
}

func (g *Game) requirePhase(op string, want Phase) error {
	if g.phase != want {
		return phaseErr(op, want, g.phase)
	}
	return nil
}

// Start begins the game: deals the starting hand, stocks the market, and
// enters dream selection when dream cards are available, otherwise the
// draw phase.
func (g *Game) Start() error {
	if g.phase != PhaseNone {
		return ErrAlreadyStarted
	}
	if !g.manager.Initialized() {
		return ErrNotInitialized
	}
	g.turn = 1
	g.log(log.NewGameStartEvent(g.cfg.Difficulty, g.vitality))
	g.log(log.NewTurnEvent(g.turn, g.stage.String()))

	if g.market != nil {
		g.manager.StockMarket(g.market(g.stage, g.turn))
	}

	res, err := g.manager.DrawCards(g.cfg.StartingHandSize)
	if err != nil {
		return fmt.Errorf("starting hand: %w", err)
	}
	if !g.settleDraw(res) {
		return nil
	}

	if choices := g.manager.DrawDreamChoices(g.cfg.DreamCardCount); len(choices) > 0 {
		g.setPhase(PhaseDreamSelection)
	} else {
		g.setPhase(PhaseDraw)
	}
	return nil
}

// SelectDream commits one of the offered dream cards as the life goal
// and returns the rest to the challenge deck.
func (g *Game) SelectDream(card *Card) error {
	if err := g.requirePhase("select dream", PhaseDreamSelection); err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("select dream: %w", ErrInvalidCard)
	}
	chosen, err := g.manager.TakeCardChoice(card.ID)
	if err != nil {
		return fmt.Errorf("select dream: %w", err)
	}
	g.manager.ReturnCardChoicesToDeck()
	g.dream = chosen
	g.log(log.NewDreamSelectedEvent(g.turn, chosen.Name))
	g.setPhase(PhaseDraw)
	return nil
}

// DrawCards draws n cards (the configured per-turn count when n <= 0),
// resolves any trouble cards drawn along the way, and advances to
// challenge selection, or straight to end of turn when the challenge
// deck has nothing to offer.
func (g *Game) DrawCards(n int) (*DrawResult, error) {
	if err := g.requirePhase("draw cards", PhaseDraw); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = g.cfg.CardsPerTurn
	}
	res, err := g.manager.DrawCards(n)
	if err != nil {
		return nil, err
	}
	if !g.settleDraw(res) {
		return res, nil
	}
	if offers := g.manager.DrawChallengeOffers(g.cfg.ChallengeChoices); len(offers) > 0 {
		g.setPhase(PhaseChallengeSelection)
	} else {
		g.setPhase(PhaseEndTurn)
	}
	return res, nil
}

// settleDraw logs a draw result and resolves its consequences: trouble
// card effects and aging exhaustion. It reports whether the game is
// still live afterwards.
func (g *Game) settleDraw(res *DrawResult) bool {
	phase := g.phase.String()
	for i := 0; i < res.Reshuffles; i++ {
		g.log(log.NewReshuffleEvent(g.turn, phase, g.manager.PlayerDeck().Size()))
	}
	for _, c := range res.AgingAdded {
		g.log(log.NewAgingEvent(g.turn, phase, c.Name))
	}
	for _, c := range res.Drawn {
		g.log(log.NewDrawEvent(g.turn, phase, c.Name))
	}
	for _, c := range res.Discarded {
		g.log(log.NewHandLimitEvent(g.turn, phase, c.Name, g.manager.MaxHandSize()))
	}
	for _, c := range res.Trouble {
		g.log(log.NewTroubleEvent(g.turn, phase, c.Name))
		g.resolveTrouble(c)
		if g.phase.Terminal() {
			return false
		}
	}
	if res.AgingExhausted {
		g.log(log.NewAgingExhaustedEvent(g.turn))
		g.gameOver("the aging deck is exhausted")
		return false
	}
	return !g.phase.Terminal()
}

// resolveTrouble applies a trouble card's immediate effect (vitality
// damage equal to its power) and removes it from circulation for good.
func (g *Game) resolveTrouble(c *Card) {
	if dmg := c.EffectivePower(); dmg > 0 {
		g.applyDamage(dmg, fmt.Sprintf("trouble: %s", c.Name))
	}
	if zone, err := g.manager.RemoveCardFromGame(c); err == nil {
		g.log(log.NewCardRemovedEvent(g.turn, g.phase.String(), c.Name, zone))
	}
}

// StartChallenge commits to one of the offered challenges; the unchosen
// offers return to the bottom of the challenge deck.
func (g *Game) StartChallenge(card *Card) error {
	if err := g.requirePhase("start challenge", PhaseChallengeSelection); err != nil {
		return err
	}
	if g.currentChallenge != nil {
		return ErrChallengeActive
	}
	if card == nil {
		return fmt.Errorf("start challenge: %w", ErrInvalidCard)
	}
	chosen, err := g.manager.TakeCardChoice(card.ID)
	if err != nil {
		return fmt.Errorf("start challenge: %w", err)
	}
	g.manager.ReturnCardChoicesToDeck()
	g.currentChallenge = chosen
	g.log(log.NewChallengeStartedEvent(g.turn, chosen.Name, chosen.EffectivePower()))
	g.setPhase(PhaseChallengeResolution)
	return nil
}

// ToggleCardSelection flips whether a hand card is committed to the
// current challenge.
func (g *Game) ToggleCardSelection(card *Card) (bool, error) {
	if err := g.requirePhase("toggle card", PhaseChallengeResolution); err != nil {
		return false, err
	}
	return g.manager.ToggleCardSelection(card)
}

// CommittedPower is the power total the current selection would resolve
// with: summed effective power minus the insurance burden.
func (g *Game) CommittedPower() int {
	total := 0
	for _, c := range g.manager.SelectedCards() {
		total += c.EffectivePower()
	}
	total -= g.manager.InsuranceBurden()
	if total < 0 {
		total = 0
	}
	return total
}

// ResolveChallenge compares the committed power against the challenge
// power. The selected cards are spent either way. On success the
// completion counters and stage progression advance and the insurance
// market opens; on failure vitality drops by the shortfall, softened by
// active policies but never below one.
func (g *Game) ResolveChallenge() (*ChallengeResult, error) {
	if err := g.requirePhase("resolve challenge", PhaseChallengeResolution); err != nil {
		return nil, err
	}
	ch := g.currentChallenge
	if ch == nil {
		return nil, fmt.Errorf("resolve challenge: no active challenge")
	}

	total := g.CommittedPower()
	target := ch.EffectivePower()

	played, err := g.manager.DiscardSelectedCards()
	if err != nil {
		return nil, err
	}
	if len(played) > 0 {
		names := make([]string, len(played))
		for i, c := range played {
			names[i] = c.Name
		}
		g.stats.CardsPlayed += len(played)
		g.log(log.NewCardsPlayedEvent(g.turn, g.phase.String(), names))
	}

	result := &ChallengeResult{
		Challenge:   ch,
		Success:     total >= target,
		TotalPower:  total,
		TargetPower: target,
		CardsUsed:   played,
	}
	g.log(log.NewChallengeResolvedEvent(g.turn, ch.Name, result.Success, total, target))
	g.currentChallenge = nil

	if result.Success {
		g.stats.ChallengesCompleted++
		g.CheckStageProgression()
		if len(g.manager.InsuranceMarket()) > 0 {
			g.setPhase(PhaseInsuranceSelection)
		} else {
			g.setPhase(PhaseEndTurn)
		}
		return result, nil
	}

	g.stats.ChallengesFailed++
	damage := target - total - g.manager.InsuranceShield()
	if damage < 1 {
		damage = 1
	}
	result.Damage = damage
	g.applyDamage(damage, fmt.Sprintf("failed %s", ch.Name))
	if !g.phase.Terminal() {
		g.setPhase(PhaseEndTurn)
	}
	return result, nil
}

// BuyInsurance purchases one market offer, activating the policy from
// the current turn. One purchase per turn.
func (g *Game) BuyInsurance(card *Card) error {
	if err := g.requirePhase("buy insurance", PhaseInsuranceSelection); err != nil {
		return err
	}
	if err := g.manager.BuyInsurance(card, g.turn); err != nil {
		return err
	}
	g.stats.InsuranceCardsPurchased++
	g.log(log.NewInsurancePurchasedEvent(g.turn, card.Name))
	g.setPhase(PhaseEndTurn)
	return nil
}

// SkipInsurance declines the market this turn.
func (g *Game) SkipInsurance() error {
	if err := g.requirePhase("skip insurance", PhaseInsuranceSelection); err != nil {
		return err
	}
	g.setPhase(PhaseEndTurn)
	return nil
}

// EndTurn expires lapsed term policies, advances the turn counter, and
// either starts the next turn or settles the game when the turn limit is
// reached.
func (g *Game) EndTurn() error {
	if err := g.requirePhase("end turn", PhaseEndTurn); err != nil {
		return err
	}
	for _, c := range g.manager.ExpireInsurances(g.turn) {
		g.log(log.NewInsuranceExpiredEvent(g.turn, c.Name))
	}
	g.CheckStageProgression()

	completed := g.turn
	if completed >= g.cfg.Balance.Progression.MaxTurns {
		g.settleVictory(completed)
		return nil
	}

	g.turn++
	g.log(log.NewTurnEvent(g.turn, g.stage.String()))
	if g.market != nil {
		g.manager.StockMarket(g.market(g.stage, g.turn))
	}
	g.setPhase(PhaseDraw)
	return nil
}

// settleVictory decides the terminal outcome once the final turn has
// been played.
func (g *Game) settleVictory(turnsPlayed int) {
	v := g.cfg.Balance.Progression.Victory
	if g.vitality >= v.MinVitality && turnsPlayed >= v.MinTurns {
		reason := "survived a full life"
		if g.dream != nil && g.stats.ChallengesCompleted >= g.dream.EffectivePower() {
			reason = fmt.Sprintf("dream fulfilled: %s", g.dream.Name)
		}
		g.gameClear(reason)
		return
	}
	g.gameOver(fmt.Sprintf("life ended with %d vitality, short of the %d needed", g.vitality, v.MinVitality))
}

func (g *Game) gameOver(reason string) {
	g.result = reason
	g.setPhase(PhaseGameOver)
	g.log(log.NewGameOverEvent(g.turn, reason))
}

func (g *Game) gameClear(reason string) {
	g.result = reason
	g.setPhase(PhaseGameClear)
	g.log(log.NewGameClearEvent(g.turn, g.vitality, reason))
}

// ApplyDamage lowers vitality by n, clamped to zero. Reaching zero ends
// the game.
func (g *Game) ApplyDamage(n int) error {
	if g.phase.Terminal() {
		return ErrGameOver
	}
	g.applyDamage(n, "damage")
	return nil
}

func (g *Game) applyDamage(n int, reason string) {
	if n < 0 {
		n = 0
	}
	old := g.vitality
	v := old - n
	if v < 0 {
		v = 0
	}
	if v != old {
		g.vitality = v
		g.log(log.NewVitalityChangeEvent(g.turn, g.phase.String(), old, v, reason))
	}
	if g.vitality == 0 {
		g.gameOver("vitality exhausted")
	}
}

// Heal raises vitality by n, clamped to the configured maximum.
func (g *Game) Heal(n int) error {
	if g.phase.Terminal() {
		return ErrGameOver
	}
	if n < 0 {
		n = 0
	}
	old := g.vitality
	v := old + n
	if v > g.cfg.MaxVitality {
		v = g.cfg.MaxVitality
	}
	if v != old {
		g.vitality = v
		g.log(log.NewVitalityChangeEvent(g.turn, g.phase.String(), old, v, "heal"))
	}
	return nil
}

// CheckStageProgression advances the life stage when the configured
// challenge-completion thresholds are met. It never regresses.
func (g *Game) CheckStageProgression() {
	th := g.cfg.Balance.StageThresholds
	next := StageYouth
	switch {
	case g.stats.ChallengesCompleted >= th[1]:
		next = StageFulfillment
	case g.stats.ChallengesCompleted >= th[0]:
		next = StageMiddle
	}
	if next > g.stage {
		g.stage = next
		g.log(log.NewStageAdvanceEvent(g.turn, next.String()))
	}
}

// --- AI delegation ---

// SetAdvisor installs the decision layer used by the AISelect methods.
func (g *Game) SetAdvisor(a Advisor) { g.advisor = a }

// SetAIEnabled toggles whether AISelect methods are allowed.
func (g *Game) SetAIEnabled(enabled bool) { g.aiEnabled = enabled }

func (g *Game) AIEnabled() bool { return g.aiEnabled }

// AISelectChallenge asks the advisor which offered challenge to take.
// It only reports the decision; the caller still calls StartChallenge.
func (g *Game) AISelectChallenge() (*Card, string, float64, error) {
	if !g.aiEnabled || g.advisor == nil {
		return nil, "", 0, ErrAINotEnabled
	}
	if err := g.requirePhase("ai select challenge", PhaseChallengeSelection); err != nil {
		return nil, "", 0, err
	}
	return g.advisor.ChooseChallenge(g, g.manager.CardChoices())
}

// AISelectCards asks the advisor which hand cards to commit to the
// current challenge. It only reports the decision.
func (g *Game) AISelectCards() ([]*Card, string, int, error) {
	if !g.aiEnabled || g.advisor == nil {
		return nil, "", 0, ErrAINotEnabled
	}
	if err := g.requirePhase("ai select cards", PhaseChallengeResolution); err != nil {
		return nil, "", 0, err
	}
	return g.advisor.ChooseCards(g, g.currentChallenge, g.manager.Hand())
}

// --- Accessors ---

func (g *Game) Phase() Phase { return g.phase }

func (g *Game) Turn() int { return g.turn }

func (g *Game) Vitality() int { return g.vitality }

func (g *Game) MaxVitality() int { return g.cfg.MaxVitality }

func (g *Game) Stage() Stage { return g.stage }

func (g *Game) Stats() Stats { return g.stats }

func (g *Game) Dream() *Card { return g.dream }

func (g *Game) CurrentChallenge() *Card { return g.currentChallenge }

func (g *Game) Config() GameConfig { return g.cfg }

func (g *Game) Manager() *CardManager { return g.manager }

func (g *Game) Logger() log.EventLogger { return g.logger }

// Result is the human-readable terminal outcome, empty while live.
func (g *Game) Result() string { return g.result }

func (g *Game) IsOver() bool { return g.phase.Terminal() }
