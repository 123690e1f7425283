package game

import "math/rand"

// Deck is an ordered pile of cards. The top of the deck is the last
// element, so drawing pops from the end.
type Deck struct {
	name  string
	cards []*Card
}

func NewDeck(name string, cards ...*Card) *Deck {
	d := &Deck{name: name}
	d.AddCards(cards)
	return d
}

func (d *Deck) Name() string { return d.name }

func (d *Deck) AddCard(c *Card) {
	if c == nil {
		return
	}
	d.cards = append(d.cards, c)
}

func (d *Deck) AddCards(cards []*Card) {
	for _, c := range cards {
		d.AddCard(c)
	}
}

// PushBottom inserts a card under the deck, to be drawn last.
func (d *Deck) PushBottom(c *Card) {
	if c == nil {
		return
	}
	d.cards = append([]*Card{c}, d.cards...)
}

// Draw removes and returns the top card, or nil if the deck is empty.
func (d *Deck) Draw() *Card {
	if len(d.cards) == 0 {
		return nil
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c
}

func (d *Deck) IsEmpty() bool { return len(d.cards) == 0 }

func (d *Deck) Size() int { return len(d.cards) }

// Shuffle randomizes the deck order uniformly. A nil rng falls back to
// the global source.
func (d *Deck) Shuffle(rng *rand.Rand) {
	swap := func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] }
	if rng != nil {
		rng.Shuffle(len(d.cards), swap)
		return
	}
	rand.Shuffle(len(d.cards), swap)
}

// RemoveCard deletes the card with the given id, preserving order, and
// reports whether it was found.
func (d *Deck) RemoveCard(id string) bool {
	for i, c := range d.cards {
		if c.ID == id {
			d.cards = append(d.cards[:i], d.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether a card with the given id is in the deck.
func (d *Deck) Contains(id string) bool {
	for _, c := range d.cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Cards returns a copy of the deck contents, bottom first.
func (d *Deck) Cards() []*Card {
	out := make([]*Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Clone returns a structurally independent copy of the deck: mutating
// the clone or its cards never affects the original.
func (d *Deck) Clone() *Deck {
	clone := &Deck{name: d.name, cards: make([]*Card, len(d.cards))}
	for i, c := range d.cards {
		clone.cards[i] = c.Clone()
	}
	return clone
}
