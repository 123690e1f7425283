package net

// Message types for the JSON protocol over TCP.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "choose_action"
	Actions []ActionView `json:"actions,omitempty"`
	State   *StateView   `json:"state,omitempty"`

	// For "game_over"
	Result string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Stage   string `json:"stage,omitempty"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// ActionView is a numbered action choice.
type ActionView struct {
	Index int    `json:"index"`
	Desc  string `json:"desc"`
}

// CardView describes one card with whatever attributes apply to it.
type CardView struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Power    int    `json:"power"`
	Cost     int    `json:"cost,omitempty"`
	Premium  int    `json:"premium,omitempty"`
	Duration string `json:"duration,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// StatsView carries the cumulative game counters.
type StatsView struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Played    int `json:"played"`
	Insured   int `json:"insured"`
}

// StateView is the whole game from the player's perspective.
type StateView struct {
	Turn           int        `json:"turn"`
	Phase          string     `json:"phase"`
	Stage          string     `json:"stage"`
	Vitality       int        `json:"vitality"`
	MaxVitality    int        `json:"max_vitality"`
	Stats          StatsView  `json:"stats"`
	Dream          *CardView  `json:"dream,omitempty"`
	Challenge      *CardView  `json:"challenge,omitempty"`
	CommittedPower int        `json:"committed_power,omitempty"`
	Hand           []CardView `json:"hand,omitempty"`
	DeckCount      int        `json:"deck_count"`
	DiscardCount   int        `json:"discard_count"`
	AgingCount     int        `json:"aging_count"`
	Market         []CardView `json:"market,omitempty"`
	Insurances     []CardView `json:"insurances,omitempty"`
	Choices        []CardView `json:"choices,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "action"
	Index int `json:"index,omitempty"`

	// For "join" (initial handshake)
	Difficulty string `json:"difficulty,omitempty"`
	Seed       int64  `json:"seed,omitempty"`
}
