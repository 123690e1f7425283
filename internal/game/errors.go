package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by CardManager methods called before
	// Initialize.
	ErrNotInitialized = errors.New("card manager not initialized")

	// ErrAlreadyStarted is returned by Start on a running game.
	ErrAlreadyStarted = errors.New("game already started")

	// ErrEmptyDeck is returned when a game is initialized with an empty
	// player or challenge deck.
	ErrEmptyDeck = errors.New("deck is empty")

	// ErrInvalidCard is returned when an operation references a card id
	// absent from the expected collection.
	ErrInvalidCard = errors.New("card not in expected collection")

	// ErrDuplicateInsurance is returned when buying a policy that is
	// already in effect.
	ErrDuplicateInsurance = errors.New("insurance already active")

	// ErrInsuranceNotFound is returned when buying a card absent from the
	// insurance market.
	ErrInsuranceNotFound = errors.New("insurance not offered in market")

	// ErrChallengeActive is returned when starting a challenge while
	// another one is unresolved.
	ErrChallengeActive = errors.New("a challenge is already in progress")

	// ErrAINotEnabled is returned by AI actions while the advisor is
	// disabled or not installed.
	ErrAINotEnabled = errors.New("ai advisor not enabled")

	// ErrGameOver is returned by actions attempted after a terminal phase
	// was reached.
	ErrGameOver = errors.New("game is over")
)

// PhaseError reports a game action attempted outside its required phase.
type PhaseError struct {
	Op       string
	Expected Phase
	Actual   Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: invalid phase: want %s, in %s", e.Op, e.Expected, e.Actual)
}

func phaseErr(op string, want, got Phase) error {
	return &PhaseError{Op: op, Expected: want, Actual: got}
}
