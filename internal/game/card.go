package game

import "fmt"

type CardType int

const (
	TypeLife CardType = iota
	TypeInsurance
	TypeChallenge
	TypeDream
	TypeTrouble
)

func (t CardType) String() string {
	switch t {
	case TypeLife:
		return "Life"
	case TypeInsurance:
		return "Insurance"
	case TypeChallenge:
		return "Challenge"
	case TypeDream:
		return "Dream"
	case TypeTrouble:
		return "Trouble"
	default:
		return "Unknown"
	}
}

type InsuranceDuration int

const (
	TermInsurance InsuranceDuration = iota
	WholeLifeInsurance
)

func (d InsuranceDuration) String() string {
	if d == WholeLifeInsurance {
		return "Whole Life"
	}
	return "Term"
}

// InsuranceTerms describes the policy attached to an insurance card:
// either a term policy lasting TermTurns turns, or a whole-life policy
// that never lapses.
type InsuranceTerms struct {
	Duration  InsuranceDuration `json:"duration"`
	TermTurns int               `json:"termTurns,omitempty"`
	Premium   int               `json:"premium"`
}

// PowerModifier is a power adjustment attached to a card by an external
// effect, identified by its source.
type PowerModifier struct {
	Source string `json:"source"`
	Delta  int    `json:"delta"`
}

// Card is the basic unit of play. Identity, type, power, cost and
// insurance terms are fixed at creation; only the attached modifiers and
// the insurance activation state ever change.
type Card struct {
	ID        string
	Name      string
	Type      CardType
	Power     int // non-negative base power
	Cost      int
	Insurance *InsuranceTerms

	modifiers     []PowerModifier
	active        bool
	activatedTurn int
}

func (c *Card) String() string {
	if c == nil {
		return "(none)"
	}
	return c.Name
}

// EffectivePower returns the base power adjusted by all attached
// modifiers, floored at zero.
func (c *Card) EffectivePower() int {
	p := c.Power
	for _, m := range c.modifiers {
		p += m.Delta
	}
	if p < 0 {
		p = 0
	}
	return p
}

// AddModifier attaches a power modifier to this card.
func (c *Card) AddModifier(mod PowerModifier) {
	c.modifiers = append(c.modifiers, mod)
}

// RemoveModifiersBySource removes all modifiers from the given source.
func (c *Card) RemoveModifiersBySource(source string) {
	filtered := c.modifiers[:0]
	for _, m := range c.modifiers {
		if m.Source != source {
			filtered = append(filtered, m)
		}
	}
	c.modifiers = filtered
}

// Modifiers returns a copy of the attached modifiers.
func (c *Card) Modifiers() []PowerModifier {
	if len(c.modifiers) == 0 {
		return nil
	}
	out := make([]PowerModifier, len(c.modifiers))
	copy(out, c.modifiers)
	return out
}

// Activate marks an insurance card as in effect from the given turn.
func (c *Card) Activate(turn int) {
	c.active = true
	c.activatedTurn = turn
}

// Deactivate clears the activation state.
func (c *Card) Deactivate() {
	c.active = false
	c.activatedTurn = 0
}

func (c *Card) IsActive() bool { return c.active }

func (c *Card) ActivatedTurn() int { return c.activatedTurn }

// IsExpired reports whether an active term policy has lapsed by the end
// of the given turn. Whole-life policies never expire.
func (c *Card) IsExpired(turn int) bool {
	if !c.active || c.Insurance == nil {
		return false
	}
	if c.Insurance.Duration == WholeLifeInsurance {
		return false
	}
	return turn >= c.activatedTurn+c.Insurance.TermTurns
}

// Clone returns an independent copy of the card, modifiers and
// activation state included.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	clone := &Card{
		ID:            c.ID,
		Name:          c.Name,
		Type:          c.Type,
		Power:         c.Power,
		Cost:          c.Cost,
		active:        c.active,
		activatedTurn: c.activatedTurn,
	}
	if c.Insurance != nil {
		terms := *c.Insurance
		clone.Insurance = &terms
	}
	if len(c.modifiers) > 0 {
		clone.modifiers = make([]PowerModifier, len(c.modifiers))
		copy(clone.modifiers, c.modifiers)
	}
	return clone
}

// DisplayString returns a human-readable description for logs and views.
func (c *Card) DisplayString() string {
	if c == nil {
		return "(none)"
	}
	switch c.Type {
	case TypeInsurance:
		if c.Insurance != nil {
			return fmt.Sprintf("%s (%s, power %d, premium %d)", c.Name, c.Insurance.Duration, c.EffectivePower(), c.Insurance.Premium)
		}
		return fmt.Sprintf("%s (power %d)", c.Name, c.EffectivePower())
	case TypeChallenge, TypeDream:
		return fmt.Sprintf("%s (power %d)", c.Name, c.EffectivePower())
	default:
		return fmt.Sprintf("%s (power %d)", c.Name, c.EffectivePower())
	}
}
