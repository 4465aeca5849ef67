// Package cards owns the hider's deck: the remaining draw pool, the hand,
// the discard pile, active curses, and placed time traps. The deck is a
// fixed 100-card composition defined in config; every card is in exactly one
// of those places at all times.
package cards

import (
	"time"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/config"
)

// Type discriminates the card families.
type Type string

const (
	TypeTimeBonus Type = "time_bonus"
	TypePowerup   Type = "powerup"
	TypeCurse     Type = "curse"
	TypeTimeTrap  Type = "time_trap"
)

// Powerup variants, matching the deck configuration.
const (
	PowerupDuplicate     = "duplicate"
	PowerupMove          = "move"
	PowerupDiscard1Draw2 = "discard_1_draw_2"
	PowerupDiscard2Draw3 = "discard_2_draw_3"
	PowerupExpandHand    = "expand_hand"
)

// Card is one card definition. Type selects which of the variant fields are
// meaningful.
type Card struct {
	Type Type
	Name string

	// TimeBonus
	Tier         string
	BonusMinutes config.SizeMinutes

	// Powerup
	PowerupType string

	// Curse
	CurseID         string
	BlocksQuestions bool
	BlocksTransit   bool
	UntilFound      bool
	DurationMinutes config.SizeMinutes

	// TimeTrap
	TrapBonusMinutes int
}

// key identifies a card variant within the deck composition.
func (c Card) key() string {
	switch c.Type {
	case TypeTimeBonus:
		return "bonus:" + c.Tier
	case TypePowerup:
		return "powerup:" + c.PowerupType
	case TypeCurse:
		return "curse:" + c.CurseID
	default:
		return "trap"
	}
}

// Instance is a drawn card: the definition plus a unique instance id that
// distinguishes otherwise-identical cards in hand.
type Instance struct {
	ID string
	Card
}

// ActiveCurse is a curse card the hider has played against the seekers.
type ActiveCurse struct {
	Instance
	ActivatedAt time.Time
}

// Expired reports whether a timed curse has run out. Until-found curses
// never expire on the clock.
func (c ActiveCurse) Expired(size config.GameSize, now time.Time) bool {
	if c.UntilFound {
		return false
	}
	d := time.Duration(c.DurationMinutes.For(size)) * time.Minute
	return now.Sub(c.ActivatedAt) >= d
}

// PlacedTrap is a time-trap card placed at a station, waiting for the
// seekers to walk into it.
type PlacedTrap struct {
	Instance
	StationName string
	PlacedAt    time.Time
	Triggered   bool
	TriggeredAt time.Time
}
