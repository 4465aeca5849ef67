// Package config provides YAML-based game configuration loading for the
// hide-and-seek session engine: game sizes, the question catalog with
// per-category card costs, the hider's deck composition, and timer defaults.
package config

import "fmt"

// DeckSize is the fixed size of a full deck.
const DeckSize = 100

// GameSize selects the playable-area preset. It controls which questions are
// available, response-time lengths, and time-bonus values.
type GameSize string

const (
	SizeSmall  GameSize = "small"
	SizeMedium GameSize = "medium"
	SizeLarge  GameSize = "large"
)

// ParseGameSize validates a size string from flags or config.
func ParseGameSize(s string) (GameSize, error) {
	switch GameSize(s) {
	case SizeSmall, SizeMedium, SizeLarge:
		return GameSize(s), nil
	}
	return "", fmt.Errorf("config: unknown game size %q (want small, medium or large)", s)
}

// SizeMinutes holds a minute value per game size.
type SizeMinutes struct {
	Small  int `yaml:"small"`
	Medium int `yaml:"medium"`
	Large  int `yaml:"large"`
}

// For returns the minutes for the given size.
func (m SizeMinutes) For(size GameSize) int {
	switch size {
	case SizeSmall:
		return m.Small
	case SizeLarge:
		return m.Large
	default:
		return m.Medium
	}
}

// GameConfig contains all tunable rules for a session. Rule values the paper
// rules leave open (time-trap bonus, curse durations) live here rather than
// in code.
type GameConfig struct {
	Timers     TimerConfig      `yaml:"timers"`
	Hand       HandConfig       `yaml:"hand"`
	Categories []CategoryConfig `yaml:"categories"`
	Questions  []QuestionConfig `yaml:"questions"`
	Deck       DeckConfig       `yaml:"deck"`
}

// TimerConfig defines tick and phase timing defaults.
type TimerConfig struct {
	TickIntervalMs      int         `yaml:"tick_interval_ms"`
	HidingPeriodMinutes SizeMinutes `yaml:"hiding_period_minutes"`
}

// HandConfig defines the hider's hand parameters.
type HandConfig struct {
	InitialLimit int `yaml:"initial_limit"`
}

// CategoryConfig defines one question category and its card economy.
type CategoryConfig struct {
	ID                  string      `yaml:"id"`
	Name                string      `yaml:"name"`
	CardsDraw           int         `yaml:"cards_draw"`
	CardsKeep           int         `yaml:"cards_keep"`
	ResponseTimeMinutes SizeMinutes `yaml:"response_time_minutes"`
}

// QuestionConfig defines one askable question of the static catalog.
type QuestionConfig struct {
	ID       string     `yaml:"id"`
	Category string     `yaml:"category"`
	Text     string     `yaml:"text"`
	Sizes    []GameSize `yaml:"sizes"`
}

// AvailableIn reports whether the question is playable at the given size.
func (q QuestionConfig) AvailableIn(size GameSize) bool {
	for _, s := range q.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// DeckConfig defines the full deck composition.
type DeckConfig struct {
	TimeBonuses []TimeBonusConfig `yaml:"time_bonuses"`
	Powerups    []PowerupConfig   `yaml:"powerups"`
	Curses      []CurseConfig     `yaml:"curses"`
	TimeTraps   TimeTrapConfig    `yaml:"time_traps"`
}

// TimeBonusConfig defines one time-bonus tier.
type TimeBonusConfig struct {
	Tier         string      `yaml:"tier"`
	Name         string      `yaml:"name"`
	Count        int         `yaml:"count"`
	BonusMinutes SizeMinutes `yaml:"bonus_minutes"`
}

// PowerupConfig defines one powerup variant.
type PowerupConfig struct {
	Type  string `yaml:"type"`
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// CurseConfig defines one curse variant. A curse either runs on a per-size
// timer (duration_minutes) or stays active until the hider is found.
type CurseConfig struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Count           int         `yaml:"count"`
	BlocksQuestions bool        `yaml:"blocks_questions"`
	BlocksTransit   bool        `yaml:"blocks_transit"`
	UntilFound      bool        `yaml:"until_found"`
	DurationMinutes SizeMinutes `yaml:"duration_minutes"`
}

// TimeTrapConfig defines the time-trap cards.
type TimeTrapConfig struct {
	Count        int `yaml:"count"`
	BonusMinutes int `yaml:"bonus_minutes"`
}

// DeckTotal returns the total number of cards in the composition.
func (d DeckConfig) DeckTotal() int {
	total := d.TimeTraps.Count
	for _, tb := range d.TimeBonuses {
		total += tb.Count
	}
	for _, p := range d.Powerups {
		total += p.Count
	}
	for _, c := range d.Curses {
		total += c.Count
	}
	return total
}

// Category returns the category config by id.
func (c GameConfig) Category(id string) (CategoryConfig, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return CategoryConfig{}, false
}

// Question returns the question config by id.
func (c GameConfig) Question(id string) (QuestionConfig, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return QuestionConfig{}, false
}

// Validate checks internal consistency of the loaded configuration.
func (c GameConfig) Validate() error {
	if c.Timers.TickIntervalMs <= 0 {
		return fmt.Errorf("config: tick_interval_ms must be positive, got %d", c.Timers.TickIntervalMs)
	}
	if c.Hand.InitialLimit <= 0 {
		return fmt.Errorf("config: hand initial_limit must be positive, got %d", c.Hand.InitialLimit)
	}

	categories := make(map[string]int)
	for _, cat := range c.Categories {
		if cat.CardsDraw <= 0 || cat.CardsKeep <= 0 {
			return fmt.Errorf("config: category %q must have positive cards_draw and cards_keep", cat.ID)
		}
		if cat.CardsKeep > cat.CardsDraw {
			return fmt.Errorf("config: category %q keeps more cards than it draws", cat.ID)
		}
		if _, dup := categories[cat.ID]; dup {
			return fmt.Errorf("config: duplicate category id %q", cat.ID)
		}
		categories[cat.ID] = 0
	}

	questionIDs := make(map[string]bool)
	for _, q := range c.Questions {
		if questionIDs[q.ID] {
			return fmt.Errorf("config: duplicate question id %q", q.ID)
		}
		questionIDs[q.ID] = true
		if _, ok := categories[q.Category]; !ok {
			return fmt.Errorf("config: question %q references unknown category %q", q.ID, q.Category)
		}
		categories[q.Category]++
		if len(q.Sizes) == 0 {
			return fmt.Errorf("config: question %q is not available in any game size", q.ID)
		}
	}
	// Randomize swaps within a category, so each category needs at least a pair.
	for id, n := range categories {
		if n < 2 {
			return fmt.Errorf("config: category %q has %d question(s), need at least 2", id, n)
		}
	}

	if got := c.Deck.DeckTotal(); got != DeckSize {
		return fmt.Errorf("config: deck composition totals %d cards, want %d", got, DeckSize)
	}
	for _, curse := range c.Deck.Curses {
		if !curse.UntilFound && curse.DurationMinutes == (SizeMinutes{}) {
			return fmt.Errorf("config: curse %q needs either until_found or duration_minutes", curse.ID)
		}
	}
	if c.Deck.TimeTraps.Count > 0 && c.Deck.TimeTraps.BonusMinutes <= 0 {
		return fmt.Errorf("config: time_traps bonus_minutes must be positive, got %d", c.Deck.TimeTraps.BonusMinutes)
	}
	return nil
}
