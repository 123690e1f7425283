package game

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseDreamSelection
	PhaseDraw
	PhaseChallengeSelection
	PhaseChallengeResolution
	PhaseInsuranceSelection
	PhaseEndTurn
	PhaseGameOver
	PhaseGameClear
)

func (p Phase) String() string {
	switch p {
	case PhaseDreamSelection:
		return "Dream Selection"
	case PhaseDraw:
		return "Draw"
	case PhaseChallengeSelection:
		return "Challenge Selection"
	case PhaseChallengeResolution:
		return "Challenge Resolution"
	case PhaseInsuranceSelection:
		return "Insurance Selection"
	case PhaseEndTurn:
		return "End Turn"
	case PhaseGameOver:
		return "Game Over"
	case PhaseGameClear:
		return "Game Clear"
	default:
		return "None"
	}
}

// Terminal reports whether the phase ends the game.
func (p Phase) Terminal() bool {
	return p == PhaseGameOver || p == PhaseGameClear
}

type Stage int

const (
	StageYouth Stage = iota
	StageMiddle
	StageFulfillment
)

func (s Stage) String() string {
	switch s {
	case StageYouth:
		return "Youth"
	case StageMiddle:
		return "Middle Age"
	case StageFulfillment:
		return "Fulfillment"
	default:
		return "Unknown"
	}
}

// --- Difficulty presets ---

const (
	DifficultyEasy   = "easy"
	DifficultyNormal = "normal"
	DifficultyHard   = "hard"
)

// --- Stats ---

// Stats tracks cumulative counters for one game. All counters are
// non-negative and only ever increase.
type Stats struct {
	ChallengesCompleted     int `json:"challengesCompleted"`
	ChallengesFailed        int `json:"challengesFailed"`
	CardsPlayed             int `json:"cardsPlayed"`
	InsuranceCardsPurchased int `json:"insuranceCardsPurchased"`
}

// --- Configuration ---

// GameConfig holds everything tunable about a game. It is plain data,
// JSON-serializable, and immutable once handed to NewGame.
type GameConfig struct {
	Difficulty       string        `json:"difficulty"`
	StartingVitality int           `json:"startingVitality"`
	MaxVitality      int           `json:"maxVitality"`
	StartingHandSize int           `json:"startingHandSize"`
	MaxHandSize      int           `json:"maxHandSize"`
	CardsPerTurn     int           `json:"cardsPerTurn"`
	DreamCardCount   int           `json:"dreamCardCount"`
	ChallengeChoices int           `json:"challengeChoices"`
	Seed             int64         `json:"seed,omitempty"`
	NoShuffle        bool          `json:"noShuffle,omitempty"` // skip setup shuffle (for deterministic tests)
	Balance          BalanceConfig `json:"balanceConfig"`
}

type BalanceConfig struct {
	StageThresholds [2]int              `json:"stageThresholds"`
	Progression     ProgressionSettings `json:"progressionSettings"`
}

type ProgressionSettings struct {
	MaxTurns int               `json:"maxTurns"`
	Victory  VictoryConditions `json:"victoryConditions"`
}

type VictoryConditions struct {
	MinTurns    int `json:"minTurns"`
	MinVitality int `json:"minVitality"`
}

// Normalized returns a copy with zero-valued fields replaced by defaults.
func (c GameConfig) Normalized() GameConfig {
	if c.Difficulty == "" {
		c.Difficulty = DifficultyNormal
	}
	if c.StartingVitality == 0 {
		c.StartingVitality = 20
	}
	if c.MaxVitality == 0 {
		c.MaxVitality = c.StartingVitality
	}
	if c.StartingHandSize == 0 {
		c.StartingHandSize = 5
	}
	if c.MaxHandSize == 0 {
		c.MaxHandSize = 7
	}
	if c.CardsPerTurn == 0 {
		c.CardsPerTurn = 2
	}
	if c.DreamCardCount == 0 {
		c.DreamCardCount = 3
	}
	if c.ChallengeChoices == 0 {
		c.ChallengeChoices = 3
	}
	if c.Balance.StageThresholds == [2]int{} {
		c.Balance.StageThresholds = [2]int{3, 7}
	}
	if c.Balance.Progression.MaxTurns == 0 {
		c.Balance.Progression.MaxTurns = 30
	}
	if c.Balance.Progression.Victory.MinTurns == 0 {
		c.Balance.Progression.Victory.MinTurns = 15
	}
	if c.Balance.Progression.Victory.MinVitality == 0 {
		c.Balance.Progression.Victory.MinVitality = 10
	}
	return c
}

// --- Challenge resolution ---

// ChallengeResult reports the outcome of resolving a challenge.
type ChallengeResult struct {
	Challenge   *Card
	Success     bool
	TotalPower  int
	TargetPower int
	Damage      int
	CardsUsed   []*Card
}

// --- Action types ---

type ActionType int

const (
	ActionSelectDream ActionType = iota
	ActionDrawCards
	ActionStartChallenge
	ActionToggleCard
	ActionResolveChallenge
	ActionBuyInsurance
	ActionSkipInsurance
	ActionEndTurn
)

func (a ActionType) String() string {
	switch a {
	case ActionSelectDream:
		return "Select Dream"
	case ActionDrawCards:
		return "Draw Cards"
	case ActionStartChallenge:
		return "Start Challenge"
	case ActionToggleCard:
		return "Toggle Card"
	case ActionResolveChallenge:
		return "Resolve Challenge"
	case ActionBuyInsurance:
		return "Buy Insurance"
	case ActionSkipInsurance:
		return "Skip Insurance"
	case ActionEndTurn:
		return "End Turn"
	default:
		return "Unknown"
	}
}

// Action represents one legal move offered to a controller.
type Action struct {
	Type  ActionType
	Card  *Card // card being chosen/toggled/bought (if applicable)
	Count int   // draw count for ActionDrawCards
	Desc  string
}

func (a Action) String() string {
	if a.Desc != "" {
		return a.Desc
	}
	return a.Type.String()
}
