package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 22 chars for alignment
	for len(phase) < 22 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewGameStartEvent(difficulty string, vitality int) GameEvent {
	return GameEvent{
		Turn:    1,
		Type:    EventGameStart,
		Details: fmt.Sprintf("=== Game start (%s, vitality %d) ===", difficulty, vitality),
	}
}

func NewTurnEvent(turn int, stage string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Draw",
		Stage:   stage,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, stage),
	}
}

func NewDrawEvent(turn int, phase string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("draws %s", cardName),
	}
}

func NewTroubleEvent(turn int, phase string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventTroubleDrawn,
		Card:    cardName,
		Details: fmt.Sprintf("trouble! %s goes straight to the discard pile", cardName),
	}
}

func NewReshuffleEvent(turn int, phase string, deckSize int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventReshuffle,
		Details: fmt.Sprintf("discard pile reshuffled into deck (%d cards)", deckSize),
	}
}

func NewAgingEvent(turn int, phase string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventAgingAdded,
		Card:    cardName,
		Details: fmt.Sprintf("aging: %s joins the discard pile", cardName),
	}
}

func NewAgingExhaustedEvent(turn int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Type:    EventAgingExhausted,
		Details: "the aging deck is exhausted",
	}
}

func NewHandLimitEvent(turn int, phase string, cardName string, limit int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventHandLimitDiscard,
		Card:    cardName,
		Details: fmt.Sprintf("hand over %d cards: %s discarded", limit, cardName),
	}
}

func NewDreamSelectedEvent(turn int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Dream Selection",
		Type:    EventDreamSelected,
		Card:    cardName,
		Details: fmt.Sprintf("dream chosen: %s", cardName),
	}
}

func NewChallengeStartedEvent(turn int, cardName string, power int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Challenge Selection",
		Type:    EventChallengeStarted,
		Card:    cardName,
		Details: fmt.Sprintf("takes on %s (power %d)", cardName, power),
	}
}

func NewChallengeResolvedEvent(turn int, cardName string, success bool, total, target int) GameEvent {
	outcome := "FAILED"
	if success {
		outcome = "succeeded"
	}
	return GameEvent{
		Turn:    turn,
		Phase:   "Challenge Resolution",
		Type:    EventChallengeResolved,
		Card:    cardName,
		Details: fmt.Sprintf("%s %s (%d vs %d)", cardName, outcome, total, target),
	}
}

func NewCardsPlayedEvent(turn int, phase string, names []string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventCardsPlayed,
		Details: fmt.Sprintf("plays %s", strings.Join(names, ", ")),
	}
}

func NewVitalityChangeEvent(turn int, phase string, oldV, newV int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventVitalityChange,
		Details: fmt.Sprintf("vitality: %d → %d (%s)", oldV, newV, reason),
	}
}

func NewInsurancePurchasedEvent(turn int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Insurance Selection",
		Type:    EventInsurancePurchased,
		Card:    cardName,
		Details: fmt.Sprintf("buys insurance: %s", cardName),
	}
}

func NewInsuranceExpiredEvent(turn int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "End Turn",
		Type:    EventInsuranceExpired,
		Card:    cardName,
		Details: fmt.Sprintf("insurance expired: %s", cardName),
	}
}

func NewStageAdvanceEvent(turn int, stage string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Stage:   stage,
		Type:    EventStageAdvance,
		Details: fmt.Sprintf("*** life stage: %s ***", stage),
	}
}

func NewCardRemovedEvent(turn int, phase string, cardName string, zone string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventCardRemoved,
		Card:    cardName,
		Details: fmt.Sprintf("%s removed from the game (was in %s)", cardName, zone),
	}
}

func NewGameOverEvent(turn int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Type:    EventGameOver,
		Details: fmt.Sprintf("GAME OVER (%s)", reason),
	}
}

func NewGameClearEvent(turn int, vitality int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Type:    EventGameClear,
		Details: fmt.Sprintf("GAME CLEAR with %d vitality (%s)", vitality, reason),
	}
}
