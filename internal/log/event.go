package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventGameStart
	EventNewTurn
	EventDraw
	EventTroubleDrawn
	EventReshuffle
	EventAgingAdded
	EventAgingExhausted
	EventHandLimitDiscard
	EventDreamSelected
	EventChallengeStarted
	EventChallengeResolved
	EventCardsPlayed
	EventVitalityChange
	EventInsurancePurchased
	EventInsuranceExpired
	EventStageAdvance
	EventCardRemoved
	EventGameOver
	EventGameClear
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventGameStart:
		return "GameStart"
	case EventNewTurn:
		return "NewTurn"
	case EventDraw:
		return "Draw"
	case EventTroubleDrawn:
		return "TroubleDrawn"
	case EventReshuffle:
		return "Reshuffle"
	case EventAgingAdded:
		return "AgingAdded"
	case EventAgingExhausted:
		return "AgingExhausted"
	case EventHandLimitDiscard:
		return "HandLimitDiscard"
	case EventDreamSelected:
		return "DreamSelected"
	case EventChallengeStarted:
		return "ChallengeStarted"
	case EventChallengeResolved:
		return "ChallengeResolved"
	case EventCardsPlayed:
		return "CardsPlayed"
	case EventVitalityChange:
		return "VitalityChange"
	case EventInsurancePurchased:
		return "InsurancePurchased"
	case EventInsuranceExpired:
		return "InsuranceExpired"
	case EventStageAdvance:
		return "StageAdvance"
	case EventCardRemoved:
		return "CardRemoved"
	case EventGameOver:
		return "GameOver"
	case EventGameClear:
		return "GameClear"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // current phase name (e.g. "Challenge Resolution")
	Stage   string    // current life stage (e.g. "Youth")
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
