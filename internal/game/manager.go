package game

import (
	"fmt"
	"math/rand"
)

// DrawResult reports everything that happened during one DrawCards call.
type DrawResult struct {
	Drawn      []*Card // cards that reached the hand
	Discarded  []*Card // hand-limit overflow, oldest first
	Trouble    []*Card // trouble cards diverted to the discard pile
	AgingAdded []*Card // aging cards inserted on reshuffle
	Reshuffles int

	// AgingExhausted is set when a reshuffle needed an aging card and the
	// aging deck had none left. It is a terminal signal, not an error.
	AgingExhausted bool
}

// CardManager owns every card zone of one game: the player, challenge
// and aging decks, the hand, the discard pile, the insurance market and
// the active policies, plus the hand selection used to commit cards to a
// challenge. All movement between zones goes through its methods.
type CardManager struct {
	playerDeck    *Deck
	challengeDeck *Deck
	agingDeck     *Deck

	hand             []*Card
	discardPile      []*Card
	insuranceMarket  []*Card
	activeInsurances []*Card

	// selected tracks hand membership in the current challenge commitment,
	// keyed by card id. Owned per instance.
	selected map[string]bool

	// cardChoices holds a pending choice set (dream picks, challenge
	// offers) between phases.
	cardChoices []*Card

	maxHandSize int
	rng         *rand.Rand
	initialized bool
	version     uint64
}

// NewCardManager returns an empty manager. A nil rng means shuffles use
// the global random source.
func NewCardManager(rng *rand.Rand) *CardManager {
	return &CardManager{rng: rng}
}

func (m *CardManager) bump() { m.version++ }

// Version returns a counter incremented on every mutation, letting
// callers cheaply detect staleness of previously read state.
func (m *CardManager) Version() uint64 { return m.version }

func (m *CardManager) Initialized() bool { return m.initialized }

// Initialize seeds the decks and resets all derived state. It must be
// called before any other operation; every other method fails with
// ErrNotInitialized until then. The player and challenge decks are
// shuffled; the aging deck keeps its configured order and may be nil.
func (m *CardManager) Initialize(playerDeck, challengeDeck, agingDeck *Deck, cfg *GameConfig) error {
	if cfg == nil {
		return fmt.Errorf("initialize: nil config")
	}
	if playerDeck == nil || playerDeck.IsEmpty() {
		return fmt.Errorf("initialize: player deck: %w", ErrEmptyDeck)
	}
	if challengeDeck == nil || challengeDeck.IsEmpty() {
		return fmt.Errorf("initialize: challenge deck: %w", ErrEmptyDeck)
	}
	if agingDeck == nil {
		agingDeck = NewDeck("aging")
	}

	m.playerDeck = playerDeck
	m.challengeDeck = challengeDeck
	m.agingDeck = agingDeck
	m.hand = nil
	m.discardPile = nil
	m.insuranceMarket = nil
	m.activeInsurances = nil
	m.selected = make(map[string]bool)
	m.cardChoices = nil
	m.maxHandSize = cfg.MaxHandSize

	if !cfg.NoShuffle {
		m.playerDeck.Shuffle(m.rng)
		m.challengeDeck.Shuffle(m.rng)
	}

	m.initialized = true
	m.bump()
	return nil
}

// DrawCards draws up to count cards into the hand. When the player deck
// runs dry and the discard pile is not empty, the discard pile is
// reshuffled into the deck and one aging card is placed into the discard
// pile as a standing penalty. Trouble cards never reach the hand: they
// are diverted to the discard pile and reported separately. After
// drawing, the oldest hand cards beyond maxHandSize are discarded.
func (m *CardManager) DrawCards(count int) (*DrawResult, error) {
	if !m.initialized {
		return nil, ErrNotInitialized
	}
	res := &DrawResult{}
	for i := 0; i < count; i++ {
		if m.playerDeck.IsEmpty() && len(m.discardPile) > 0 {
			aging, ok := m.reshuffle(res)
			if !ok {
				// Stop drawing, but fall through so the hand limit is
				// enforced on this path too.
				res.AgingExhausted = true
				break
			}
			res.AgingAdded = append(res.AgingAdded, aging)
		}
		card := m.playerDeck.Draw()
		if card == nil {
			// Deck and discard both empty: fewer cards than requested.
			break
		}
		if card.Type == TypeTrouble {
			m.discardPile = append(m.discardPile, card)
			res.Trouble = append(res.Trouble, card)
			continue
		}
		m.hand = append(m.hand, card)
		res.Drawn = append(res.Drawn, card)
	}
	res.Discarded = m.enforceHandLimit()
	m.bump()
	return res, nil
}

// reshuffle moves the discard pile into the player deck, shuffles, and
// then draws one aging card into the discard pile. It reports false when
// the aging deck turns out exhausted.
func (m *CardManager) reshuffle(res *DrawResult) (*Card, bool) {
	m.playerDeck.AddCards(m.discardPile)
	m.discardPile = nil
	m.playerDeck.Shuffle(m.rng)
	res.Reshuffles++
	aging := m.agingDeck.Draw()
	if aging == nil {
		return nil, false
	}
	m.discardPile = append(m.discardPile, aging)
	return aging, true
}

// enforceHandLimit discards the oldest hand cards until the hand fits,
// returning them in discard order.
func (m *CardManager) enforceHandLimit() []*Card {
	var discarded []*Card
	for len(m.hand) > m.maxHandSize {
		oldest := m.hand[0]
		m.hand = m.hand[1:]
		delete(m.selected, oldest.ID)
		m.discardPile = append(m.discardPile, oldest)
		discarded = append(discarded, oldest)
	}
	return discarded
}

// ToggleCardSelection flips the selection state of a hand card and
// returns the new state (true = now selected). Referencing a card not in
// the hand is an ErrInvalidCard.
func (m *CardManager) ToggleCardSelection(card *Card) (bool, error) {
	if !m.initialized {
		return false, ErrNotInitialized
	}
	if card == nil || !m.inHand(card.ID) {
		return false, fmt.Errorf("toggle %s: %w", card, ErrInvalidCard)
	}
	if m.selected[card.ID] {
		delete(m.selected, card.ID)
		m.bump()
		return false, nil
	}
	m.selected[card.ID] = true
	m.bump()
	return true, nil
}

func (m *CardManager) inHand(id string) bool {
	for _, c := range m.hand {
		if c.ID == id {
			return true
		}
	}
	return false
}

// IsSelected reports whether the given card id is currently selected.
func (m *CardManager) IsSelected(id string) bool { return m.selected[id] }

// SelectedCards returns the selected cards in hand order.
func (m *CardManager) SelectedCards() []*Card {
	var out []*Card
	for _, c := range m.hand {
		if m.selected[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// ClearSelection deselects everything.
func (m *CardManager) ClearSelection() {
	if len(m.selected) == 0 {
		return
	}
	m.selected = make(map[string]bool)
	m.bump()
}

// DiscardSelectedCards moves all selected cards from the hand to the
// discard pile, clears the selection, and returns the moved cards in
// hand order.
func (m *CardManager) DiscardSelectedCards() ([]*Card, error) {
	if !m.initialized {
		return nil, ErrNotInitialized
	}
	var moved []*Card
	var kept []*Card
	for _, c := range m.hand {
		if m.selected[c.ID] {
			moved = append(moved, c)
			m.discardPile = append(m.discardPile, c)
		} else {
			kept = append(kept, c)
		}
	}
	m.hand = kept
	m.selected = make(map[string]bool)
	m.bump()
	return moved, nil
}

// BuyInsurance moves a card from the insurance market to the active
// policies, activating it at the given turn.
func (m *CardManager) BuyInsurance(card *Card, turn int) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if card == nil {
		return fmt.Errorf("buy insurance: %w", ErrInsuranceNotFound)
	}
	for _, active := range m.activeInsurances {
		if active.ID == card.ID {
			return fmt.Errorf("buy %s: %w", card, ErrDuplicateInsurance)
		}
	}
	idx := -1
	for i, offer := range m.insuranceMarket {
		if offer.ID == card.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("buy %s: %w", card, ErrInsuranceNotFound)
	}
	bought := m.insuranceMarket[idx]
	m.insuranceMarket = append(m.insuranceMarket[:idx], m.insuranceMarket[idx+1:]...)
	bought.Activate(turn)
	m.activeInsurances = append(m.activeInsurances, bought)
	m.bump()
	return nil
}

// ExpireInsurances removes term policies that have lapsed by the end of
// the given turn and returns them deactivated.
func (m *CardManager) ExpireInsurances(turn int) []*Card {
	var expired []*Card
	var kept []*Card
	for _, c := range m.activeInsurances {
		if c.IsExpired(turn) {
			c.Deactivate()
			expired = append(expired, c)
		} else {
			kept = append(kept, c)
		}
	}
	if len(expired) > 0 {
		m.activeInsurances = kept
		m.bump()
	}
	return expired
}

// InsuranceBurden is the power penalty from carrying many policies: one
// point per three active insurances.
func (m *CardManager) InsuranceBurden() int {
	return len(m.activeInsurances) / 3
}

// InsuranceShield is the total effective power of active policies,
// absorbed from challenge failure damage.
func (m *CardManager) InsuranceShield() int {
	total := 0
	for _, c := range m.activeInsurances {
		total += c.EffectivePower()
	}
	return total
}

// RemoveCardFromGame permanently deletes a card, searching the hand,
// then the discard pile, then the player deck. It returns the name of
// the zone the card was found in.
func (m *CardManager) RemoveCardFromGame(card *Card) (string, error) {
	if !m.initialized {
		return "", ErrNotInitialized
	}
	if card == nil {
		return "", fmt.Errorf("remove: %w", ErrInvalidCard)
	}
	for i, c := range m.hand {
		if c.ID == card.ID {
			m.hand = append(m.hand[:i], m.hand[i+1:]...)
			delete(m.selected, card.ID)
			m.bump()
			return "hand", nil
		}
	}
	for i, c := range m.discardPile {
		if c.ID == card.ID {
			m.discardPile = append(m.discardPile[:i], m.discardPile[i+1:]...)
			m.bump()
			return "discard pile", nil
		}
	}
	if m.playerDeck.RemoveCard(card.ID) {
		m.bump()
		return "player deck", nil
	}
	return "", fmt.Errorf("remove %s: %w", card, ErrInvalidCard)
}

// --- Pending choice sets ---

// DrawDreamChoices removes up to count dream cards from the challenge
// deck and stores them as the pending choice set.
func (m *CardManager) DrawDreamChoices(count int) []*Card {
	if !m.initialized {
		return nil
	}
	var dreams []*Card
	for _, c := range m.challengeDeck.Cards() {
		if c.Type == TypeDream {
			dreams = append(dreams, c)
			if len(dreams) == count {
				break
			}
		}
	}
	for _, c := range dreams {
		m.challengeDeck.RemoveCard(c.ID)
	}
	m.cardChoices = dreams
	m.bump()
	return m.CardChoices()
}

// DrawChallengeOffers draws up to count challenge cards from the top of
// the challenge deck into the pending choice set. Dream cards drawn
// along the way are recycled to the bottom of the deck.
func (m *CardManager) DrawChallengeOffers(count int) []*Card {
	if !m.initialized {
		return nil
	}
	var offers []*Card
	var recycled []*Card
	limit := m.challengeDeck.Size()
	for i := 0; i < limit && len(offers) < count; i++ {
		c := m.challengeDeck.Draw()
		if c == nil {
			break
		}
		if c.Type == TypeDream {
			recycled = append(recycled, c)
			continue
		}
		offers = append(offers, c)
	}
	for _, c := range recycled {
		m.challengeDeck.PushBottom(c)
	}
	m.cardChoices = offers
	m.bump()
	return m.CardChoices()
}

// CardChoices returns the pending choice set.
func (m *CardManager) CardChoices() []*Card {
	out := make([]*Card, len(m.cardChoices))
	copy(out, m.cardChoices)
	return out
}

// TakeCardChoice removes and returns the pending choice with the given
// id, leaving the rest in place.
func (m *CardManager) TakeCardChoice(id string) (*Card, error) {
	if !m.initialized {
		return nil, ErrNotInitialized
	}
	for i, c := range m.cardChoices {
		if c.ID == id {
			m.cardChoices = append(m.cardChoices[:i], m.cardChoices[i+1:]...)
			m.bump()
			return c, nil
		}
	}
	return nil, fmt.Errorf("choice %s: %w", id, ErrInvalidCard)
}

// ReturnCardChoicesToDeck pushes the remaining pending choices to the
// bottom of the challenge deck and clears the set.
func (m *CardManager) ReturnCardChoicesToDeck() {
	if !m.initialized {
		return
	}
	for _, c := range m.cardChoices {
		m.challengeDeck.PushBottom(c)
	}
	m.cardChoices = nil
	m.bump()
}

// ClearCardChoices drops the pending choices without returning them.
func (m *CardManager) ClearCardChoices() {
	if len(m.cardChoices) == 0 {
		return
	}
	m.cardChoices = nil
	m.bump()
}

// --- Insurance market ---

// StockMarket replaces the insurance market offers.
func (m *CardManager) StockMarket(cards []*Card) {
	m.insuranceMarket = nil
	for _, c := range cards {
		if c != nil {
			m.insuranceMarket = append(m.insuranceMarket, c)
		}
	}
	m.bump()
}

// AddMarketOffers appends offers to the insurance market.
func (m *CardManager) AddMarketOffers(cards []*Card) {
	for _, c := range cards {
		if c != nil {
			m.insuranceMarket = append(m.insuranceMarket, c)
		}
	}
	m.bump()
}

// --- Accessors ---

func (m *CardManager) Hand() []*Card {
	out := make([]*Card, len(m.hand))
	copy(out, m.hand)
	return out
}

func (m *CardManager) HandSize() int { return len(m.hand) }

func (m *CardManager) MaxHandSize() int { return m.maxHandSize }

func (m *CardManager) DiscardPile() []*Card {
	out := make([]*Card, len(m.discardPile))
	copy(out, m.discardPile)
	return out
}

func (m *CardManager) InsuranceMarket() []*Card {
	out := make([]*Card, len(m.insuranceMarket))
	copy(out, m.insuranceMarket)
	return out
}

func (m *CardManager) ActiveInsurances() []*Card {
	out := make([]*Card, len(m.activeInsurances))
	copy(out, m.activeInsurances)
	return out
}

func (m *CardManager) PlayerDeck() *Deck { return m.playerDeck }

func (m *CardManager) ChallengeDeck() *Deck { return m.challengeDeck }

func (m *CardManager) AgingDeck() *Deck { return m.agingDeck }

// CirculatingCount is the conservation ledger: the number of cards in
// the player deck, hand, discard pile and aging deck combined.
func (m *CardManager) CirculatingCount() int {
	if !m.initialized {
		return 0
	}
	return m.playerDeck.Size() + len(m.hand) + len(m.discardPile) + m.agingDeck.Size()
}
