// Package catalog loads card sets from YAML and deals the decks a game
// starts from: the player deck, the stage-banded challenge deck, the
// aging deck and the rotating insurance market. A default set is
// embedded so every binary works without external files.
package catalog

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"lifedeck/internal/game"
	"lifedeck/internal/log"
)

//go:embed cards.yaml
var defaultCards []byte

// offersPerTurn is how many market offers are on display at once; the
// storefront rotates through the stage's full list turn by turn.
const offersPerTurn = 2

// cardSpec is one card template as written in the YAML file. Sections
// fix the card type except in the player deck, where it is declared.
type cardSpec struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type,omitempty"`
	Power     int    `yaml:"power"`
	Cost      int    `yaml:"cost,omitempty"`
	Count     int    `yaml:"count,omitempty"`
	Stage     string `yaml:"stage,omitempty"`
	Premium   int    `yaml:"premium,omitempty"`
	Duration  string `yaml:"duration,omitempty"`
	TermTurns int    `yaml:"term_turns,omitempty"`
}

type victorySettings struct {
	MinTurns    int `yaml:"min_turns"`
	MinVitality int `yaml:"min_vitality"`
}

type gameSettings struct {
	StartingVitality int             `yaml:"starting_vitality"`
	MaxVitality      int             `yaml:"max_vitality"`
	StartingHandSize int             `yaml:"starting_hand_size"`
	MaxHandSize      int             `yaml:"max_hand_size"`
	CardsPerTurn     int             `yaml:"cards_per_turn"`
	DreamCardCount   int             `yaml:"dream_card_count"`
	ChallengeChoices int             `yaml:"challenge_choices"`
	StageThresholds  [2]int          `yaml:"stage_thresholds"`
	MaxTurns         int             `yaml:"max_turns"`
	Victory          victorySettings `yaml:"victory"`
}

type file struct {
	Name       string       `yaml:"name"`
	Game       gameSettings `yaml:"game"`
	Player     []cardSpec   `yaml:"player"`
	Challenges []cardSpec   `yaml:"challenges"`
	Dreams     []cardSpec   `yaml:"dreams"`
	Aging      []cardSpec   `yaml:"aging"`
	Market     []cardSpec   `yaml:"market"`
}

// Catalog is a parsed and validated card set plus the game settings the
// set was balanced for.
type Catalog struct {
	name       string
	settings   gameSettings
	player     []cardSpec
	challenges []cardSpec
	dreams     []cardSpec
	aging      []cardSpec
	market     []cardSpec
}

// Default returns the embedded standard card set.
func Default() (*Catalog, error) {
	return Parse(defaultCards)
}

// Load reads and parses the card set at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Open loads the card set at path, or the embedded default when path is
// empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse parses a YAML card set and validates every template.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse cards YAML: %w", err)
	}
	if err := validate(&f); err != nil {
		return nil, err
	}
	return &Catalog{
		name:       f.Name,
		settings:   f.Game,
		player:     f.Player,
		challenges: f.Challenges,
		dreams:     f.Dreams,
		aging:      f.Aging,
		market:     f.Market,
	}, nil
}

func validate(f *file) error {
	if len(f.Player) == 0 {
		return fmt.Errorf("cards: player section is empty")
	}
	if len(f.Challenges) == 0 {
		return fmt.Errorf("cards: challenges section is empty")
	}
	for i, s := range f.Player {
		if err := validateSpec(s, "player", i); err != nil {
			return err
		}
		switch strings.ToLower(s.Type) {
		case "", "life", "trouble":
		case "insurance":
			if err := validateInsurance(s, "player", i); err != nil {
				return err
			}
		default:
			return fmt.Errorf("cards: player[%d] %q: unknown type %q", i, s.Name, s.Type)
		}
	}
	for i, s := range f.Challenges {
		if err := validateSpec(s, "challenges", i); err != nil {
			return err
		}
		if _, err := parseStage(s.Stage); err != nil {
			return fmt.Errorf("cards: challenges[%d] %q: %w", i, s.Name, err)
		}
	}
	for i, s := range f.Dreams {
		if err := validateSpec(s, "dreams", i); err != nil {
			return err
		}
	}
	for i, s := range f.Aging {
		if err := validateSpec(s, "aging", i); err != nil {
			return err
		}
	}
	for i, s := range f.Market {
		if err := validateSpec(s, "market", i); err != nil {
			return err
		}
		if err := validateInsurance(s, "market", i); err != nil {
			return err
		}
		if s.Stage != "" {
			if _, err := parseStage(s.Stage); err != nil {
				return fmt.Errorf("cards: market[%d] %q: %w", i, s.Name, err)
			}
		}
	}
	return nil
}

func validateSpec(s cardSpec, section string, i int) error {
	if s.Name == "" {
		return fmt.Errorf("cards: %s[%d]: missing name", section, i)
	}
	if s.Power < 0 {
		return fmt.Errorf("cards: %s[%d] %q: negative power", section, i, s.Name)
	}
	if s.Count < 0 {
		return fmt.Errorf("cards: %s[%d] %q: negative count", section, i, s.Name)
	}
	return nil
}

func validateInsurance(s cardSpec, section string, i int) error {
	switch strings.ToLower(s.Duration) {
	case "whole_life":
	case "term":
		if s.TermTurns < 1 {
			return fmt.Errorf("cards: %s[%d] %q: term policy needs term_turns >= 1", section, i, s.Name)
		}
	default:
		return fmt.Errorf("cards: %s[%d] %q: duration must be term or whole_life", section, i, s.Name)
	}
	if s.Premium < 0 {
		return fmt.Errorf("cards: %s[%d] %q: negative premium", section, i, s.Name)
	}
	return nil
}

func parseStage(s string) (game.Stage, error) {
	switch strings.ToLower(s) {
	case "youth":
		return game.StageYouth, nil
	case "middle":
		return game.StageMiddle, nil
	case "fulfillment":
		return game.StageFulfillment, nil
	}
	return 0, fmt.Errorf("unknown stage %q", s)
}

// NormalizeDifficulty maps a user-facing difficulty name to one of the
// three presets; empty means normal.
func NormalizeDifficulty(d string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "", game.DifficultyNormal:
		return game.DifficultyNormal, nil
	case game.DifficultyEasy:
		return game.DifficultyEasy, nil
	case game.DifficultyHard:
		return game.DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", d)
}

func (s cardSpec) playerType() game.CardType {
	switch strings.ToLower(s.Type) {
	case "insurance":
		return game.TypeInsurance
	case "trouble":
		return game.TypeTrouble
	default:
		return game.TypeLife
	}
}

// instantiate mints a fresh card instance from a template. Every
// instance gets its own id so two copies of one template never collide
// in selection or insurance tracking.
func instantiate(s cardSpec, typ game.CardType) *game.Card {
	card := &game.Card{
		ID:    uuid.NewString(),
		Name:  s.Name,
		Type:  typ,
		Power: s.Power,
		Cost:  s.Cost,
	}
	if typ == game.TypeInsurance {
		duration := game.WholeLifeInsurance
		if strings.ToLower(s.Duration) == "term" {
			duration = game.TermInsurance
		}
		card.Insurance = &game.InsuranceTerms{
			Duration:  duration,
			TermTurns: s.TermTurns,
			Premium:   s.Premium,
		}
	}
	return card
}

func copies(count int) int {
	if count <= 0 {
		return 1
	}
	return count
}

// troubleCount adjusts a trouble template's copy count for difficulty.
func troubleCount(base int, difficulty string) int {
	switch difficulty {
	case game.DifficultyEasy:
		base--
	case game.DifficultyHard:
		base++
	}
	if base < 0 {
		return 0
	}
	return base
}

func shuffleCards(cards []*game.Card, rng *rand.Rand) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if rng != nil {
		rng.Shuffle(len(cards), swap)
		return
	}
	rand.Shuffle(len(cards), swap)
}

// Name returns the card set's declared name.
func (c *Catalog) Name() string { return c.name }

// PlayerDeck deals the player deck: templates expanded by count, trouble
// copies adjusted for difficulty, the whole deck shuffled.
func (c *Catalog) PlayerDeck(difficulty string, rng *rand.Rand) *game.Deck {
	d := game.NewDeck("player")
	for _, s := range c.player {
		typ := s.playerType()
		n := copies(s.Count)
		if typ == game.TypeTrouble {
			n = troubleCount(n, difficulty)
		}
		for i := 0; i < n; i++ {
			d.AddCard(instantiate(s, typ))
		}
	}
	d.Shuffle(rng)
	return d
}

// ChallengeDeck deals the challenge deck: dreams at the very bottom,
// then the stage bands in life order with youth on top, each band
// shuffled internally so early turns always face early-life challenges.
func (c *Catalog) ChallengeDeck(rng *rand.Rand) *game.Deck {
	bands := make(map[game.Stage][]*game.Card)
	for _, s := range c.challenges {
		stage, err := parseStage(s.Stage)
		if err != nil {
			continue // unreachable after validate
		}
		for i := 0; i < copies(s.Count); i++ {
			bands[stage] = append(bands[stage], instantiate(s, game.TypeChallenge))
		}
	}

	d := game.NewDeck("challenges")
	for _, s := range c.dreams {
		d.AddCard(instantiate(s, game.TypeDream))
	}
	for _, stage := range []game.Stage{game.StageFulfillment, game.StageMiddle, game.StageYouth} {
		band := bands[stage]
		shuffleCards(band, rng)
		d.AddCards(band)
	}
	return d
}

// AgingDeck deals the aging deck in file order: the earlier entries are
// drawn first as the milder penalties of early reshuffles.
func (c *Catalog) AgingDeck() *game.Deck {
	var cards []*game.Card
	for _, s := range c.aging {
		for i := 0; i < copies(s.Count); i++ {
			cards = append(cards, instantiate(s, game.TypeLife))
		}
	}
	d := game.NewDeck("aging")
	for i := len(cards) - 1; i >= 0; i-- {
		d.AddCard(cards[i])
	}
	return d
}

// MarketSupplier returns a supplier that restocks the insurance market
// every turn with fresh instances of the offers matching the current
// stage, rotating through the list so the storefront changes.
func (c *Catalog) MarketSupplier() game.MarketSupplier {
	return func(stage game.Stage, turn int) []*game.Card {
		var specs []cardSpec
		for _, s := range c.market {
			if s.Stage != "" {
				st, err := parseStage(s.Stage)
				if err != nil || st != stage {
					continue
				}
			}
			specs = append(specs, s)
		}
		if len(specs) == 0 {
			return nil
		}
		n := offersPerTurn
		if n > len(specs) {
			n = len(specs)
		}
		start := (turn - 1) % len(specs)
		if start < 0 {
			start = 0
		}
		offers := make([]*game.Card, 0, n)
		for i := 0; i < n; i++ {
			offers = append(offers, instantiate(specs[(start+i)%len(specs)], game.TypeInsurance))
		}
		return offers
	}
}

// Config resolves the game configuration for a difficulty and seed. The
// decks are dealt pre-ordered, so the game's own setup shuffle is
// disabled.
func (c *Catalog) Config(difficulty string, seed int64) game.GameConfig {
	s := c.settings
	cfg := game.GameConfig{
		Difficulty:       difficulty,
		StartingVitality: s.StartingVitality,
		MaxVitality:      s.MaxVitality,
		StartingHandSize: s.StartingHandSize,
		MaxHandSize:      s.MaxHandSize,
		CardsPerTurn:     s.CardsPerTurn,
		DreamCardCount:   s.DreamCardCount,
		ChallengeChoices: s.ChallengeChoices,
		Seed:             seed,
		NoShuffle:        true,
		Balance: game.BalanceConfig{
			StageThresholds: s.StageThresholds,
			Progression: game.ProgressionSettings{
				MaxTurns: s.MaxTurns,
				Victory: game.VictoryConditions{
					MinTurns:    s.Victory.MinTurns,
					MinVitality: s.Victory.MinVitality,
				},
			},
		},
	}
	return cfg.Normalized()
}

// NewGame deals a ready-to-start game from this catalog: decks dealt,
// market wired, configuration resolved. A zero seed takes the current
// time.
func (c *Catalog) NewGame(difficulty string, seed int64, logger log.EventLogger) (*game.Game, error) {
	diff, err := NormalizeDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	g := game.NewGame(c.Config(diff, seed), logger)
	if err := g.Initialize(c.PlayerDeck(diff, rng), c.ChallengeDeck(rng), c.AgingDeck()); err != nil {
		return nil, err
	}
	g.SetMarketSupplier(c.MarketSupplier())
	return g, nil
}

// NewGame deals a game from the card set at path, or from the embedded
// default set when path is empty.
func NewGame(path, difficulty string, seed int64, logger log.EventLogger) (*game.Game, error) {
	c, err := Open(path)
	if err != nil {
		return nil, err
	}
	return c.NewGame(difficulty, seed, logger)
}

// CardInfo is one template row of the catalog listing served over the
// web API.
type CardInfo struct {
	Name      string `json:"name"`
	Section   string `json:"section"`
	Type      string `json:"type"`
	Power     int    `json:"power"`
	Cost      int    `json:"cost,omitempty"`
	Count     int    `json:"count,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Premium   int    `json:"premium,omitempty"`
	Duration  string `json:"duration,omitempty"`
	TermTurns int    `json:"termTurns,omitempty"`
}

// CardList flattens every template in the set into a listing.
func (c *Catalog) CardList() []CardInfo {
	out := make([]CardInfo, 0, len(c.player)+len(c.challenges)+len(c.dreams)+len(c.aging)+len(c.market))
	for _, s := range c.player {
		typ := strings.ToLower(s.Type)
		if typ == "" {
			typ = "life"
		}
		out = append(out, infoFrom("player", typ, s))
	}
	for _, s := range c.challenges {
		out = append(out, infoFrom("challenges", "challenge", s))
	}
	for _, s := range c.dreams {
		out = append(out, infoFrom("dreams", "dream", s))
	}
	for _, s := range c.aging {
		out = append(out, infoFrom("aging", "life", s))
	}
	for _, s := range c.market {
		out = append(out, infoFrom("market", "insurance", s))
	}
	return out
}

func infoFrom(section, typ string, s cardSpec) CardInfo {
	return CardInfo{
		Name:      s.Name,
		Section:   section,
		Type:      typ,
		Power:     s.Power,
		Cost:      s.Cost,
		Count:     copies(s.Count),
		Stage:     strings.ToLower(s.Stage),
		Premium:   s.Premium,
		Duration:  strings.ToLower(s.Duration),
		TermTurns: s.TermTurns,
	}
}
