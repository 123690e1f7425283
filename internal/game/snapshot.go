package game

import "fmt"

// CardState is the JSON-representable form of one card, activation state
// and modifiers included.
type CardState struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          CardType        `json:"type"`
	Power         int             `json:"power"`
	Cost          int             `json:"cost,omitempty"`
	Insurance     *InsuranceTerms `json:"insurance,omitempty"`
	Modifiers     []PowerModifier `json:"modifiers,omitempty"`
	Active        bool            `json:"active,omitempty"`
	ActivatedTurn int             `json:"activatedTurn,omitempty"`
}

// ManagerState is a deep snapshot of every card zone. Mutating it never
// affects live state, and vice versa.
type ManagerState struct {
	Hand             []CardState `json:"hand"`
	DiscardPile      []CardState `json:"discardPile"`
	PlayerDeck       []CardState `json:"playerDeck"`
	ChallengeDeck    []CardState `json:"challengeDeck"`
	AgingDeck        []CardState `json:"agingDeck"`
	InsuranceMarket  []CardState `json:"insuranceMarket"`
	ActiveInsurances []CardState `json:"activeInsurances"`
	SelectedCards    []string    `json:"selectedCards"`
	CardChoices      []CardState `json:"cardChoices"`
	MaxHandSize      int         `json:"maxHandSize"`
}

// GameState is a full game snapshot for save slots and undo.
type GameState struct {
	Version          uint64       `json:"version"`
	Phase            Phase        `json:"phase"`
	Turn             int          `json:"turn"`
	Vitality         int          `json:"vitality"`
	Stage            Stage        `json:"stage"`
	Stats            Stats        `json:"stats"`
	CurrentChallenge *CardState   `json:"currentChallenge,omitempty"`
	Dream            *CardState   `json:"dream,omitempty"`
	Result           string       `json:"result,omitempty"`
	Config           GameConfig   `json:"config"`
	Manager          ManagerState `json:"manager"`
}

func cardToState(c *Card) CardState {
	return CardState{
		ID:            c.ID,
		Name:          c.Name,
		Type:          c.Type,
		Power:         c.Power,
		Cost:          c.Cost,
		Insurance:     cloneTerms(c.Insurance),
		Modifiers:     c.Modifiers(),
		Active:        c.active,
		ActivatedTurn: c.activatedTurn,
	}
}

func cloneTerms(t *InsuranceTerms) *InsuranceTerms {
	if t == nil {
		return nil
	}
	copy := *t
	return &copy
}

func cardsToState(cards []*Card) []CardState {
	out := make([]CardState, len(cards))
	for i, c := range cards {
		out[i] = cardToState(c)
	}
	return out
}

func stateToCard(s CardState) *Card {
	c := &Card{
		ID:            s.ID,
		Name:          s.Name,
		Type:          s.Type,
		Power:         s.Power,
		Cost:          s.Cost,
		Insurance:     cloneTerms(s.Insurance),
		active:        s.Active,
		activatedTurn: s.ActivatedTurn,
	}
	if len(s.Modifiers) > 0 {
		c.modifiers = make([]PowerModifier, len(s.Modifiers))
		copy(c.modifiers, s.Modifiers)
	}
	return c
}

func stateToCards(states []CardState) []*Card {
	if len(states) == 0 {
		return nil
	}
	out := make([]*Card, len(states))
	for i, s := range states {
		out[i] = stateToCard(s)
	}
	return out
}

// State produces a deep, independent snapshot of all zones.
func (m *CardManager) State() (*ManagerState, error) {
	if !m.initialized {
		return nil, ErrNotInitialized
	}
	var selected []string
	for _, c := range m.hand {
		if m.selected[c.ID] {
			selected = append(selected, c.ID)
		}
	}
	return &ManagerState{
		Hand:             cardsToState(m.hand),
		DiscardPile:      cardsToState(m.discardPile),
		PlayerDeck:       cardsToState(m.playerDeck.Cards()),
		ChallengeDeck:    cardsToState(m.challengeDeck.Cards()),
		AgingDeck:        cardsToState(m.agingDeck.Cards()),
		InsuranceMarket:  cardsToState(m.insuranceMarket),
		ActiveInsurances: cardsToState(m.activeInsurances),
		SelectedCards:    selected,
		CardChoices:      cardsToState(m.cardChoices),
		MaxHandSize:      m.maxHandSize,
	}, nil
}

// Restore replaces all zones with the snapshot contents. Selection
// entries not matching a restored hand card are dropped to keep the
// selection a subset of the hand.
func (m *CardManager) Restore(s *ManagerState) error {
	if s == nil {
		return fmt.Errorf("restore: nil state")
	}
	m.playerDeck = NewDeck("player", stateToCards(s.PlayerDeck)...)
	m.challengeDeck = NewDeck("challenge", stateToCards(s.ChallengeDeck)...)
	m.agingDeck = NewDeck("aging", stateToCards(s.AgingDeck)...)
	m.hand = stateToCards(s.Hand)
	m.discardPile = stateToCards(s.DiscardPile)
	m.insuranceMarket = stateToCards(s.InsuranceMarket)
	m.activeInsurances = stateToCards(s.ActiveInsurances)
	m.cardChoices = stateToCards(s.CardChoices)
	m.selected = make(map[string]bool)
	for _, id := range s.SelectedCards {
		if m.inHand(id) {
			m.selected[id] = true
		}
	}
	m.maxHandSize = s.MaxHandSize
	m.initialized = true
	m.bump()
	return nil
}

// Snapshot produces a deep, JSON-representable copy of the whole game.
func (g *Game) Snapshot() (*GameState, error) {
	ms, err := g.manager.State()
	if err != nil {
		return nil, err
	}
	s := &GameState{
		Version:  g.manager.Version(),
		Phase:    g.phase,
		Turn:     g.turn,
		Vitality: g.vitality,
		Stage:    g.stage,
		Stats:    g.stats,
		Result:   g.result,
		Config:   g.cfg,
		Manager:  *ms,
	}
	if g.currentChallenge != nil {
		cs := cardToState(g.currentChallenge)
		s.CurrentChallenge = &cs
	}
	if g.dream != nil {
		ds := cardToState(g.dream)
		s.Dream = &ds
	}
	return s, nil
}

// RestoreState rebuilds the game from a snapshot. The restored game
// behaves identically to the one the snapshot was taken from.
func (g *Game) RestoreState(s *GameState) error {
	if s == nil {
		return fmt.Errorf("restore: nil state")
	}
	if err := g.manager.Restore(&s.Manager); err != nil {
		return err
	}
	g.cfg = s.Config.Normalized()
	g.phase = s.Phase
	g.turn = s.Turn
	g.vitality = s.Vitality
	if g.vitality < 0 {
		g.vitality = 0
	}
	if g.vitality > g.cfg.MaxVitality {
		g.vitality = g.cfg.MaxVitality
	}
	g.stage = s.Stage
	g.stats = s.Stats
	g.result = s.Result
	g.currentChallenge = nil
	if s.CurrentChallenge != nil {
		g.currentChallenge = stateToCard(*s.CurrentChallenge)
	}
	g.dream = nil
	if s.Dream != nil {
		g.dream = stateToCard(*s.Dream)
	}
	return nil
}
