package cards

import (
	"encoding/json"
	"time"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/config"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

const snapshotSchema = 1

type instanceSnapshot struct {
	ID               string             `json:"id"`
	Type             Type               `json:"type"`
	Name             string             `json:"name"`
	Tier             string             `json:"tier,omitempty"`
	BonusMinutes     config.SizeMinutes `json:"bonus_minutes,omitempty"`
	PowerupType      string             `json:"powerup_type,omitempty"`
	CurseID          string             `json:"curse_id,omitempty"`
	BlocksQuestions  bool               `json:"blocks_questions,omitempty"`
	BlocksTransit    bool               `json:"blocks_transit,omitempty"`
	UntilFound       bool               `json:"until_found,omitempty"`
	DurationMinutes  config.SizeMinutes `json:"duration_minutes,omitempty"`
	TrapBonusMinutes int                `json:"trap_bonus_minutes,omitempty"`
}

type curseSnapshot struct {
	instanceSnapshot
	ActivatedAt time.Time `json:"activated_at"`
}

type trapSnapshot struct {
	instanceSnapshot
	StationName string     `json:"station_name"`
	PlacedAt    time.Time  `json:"placed_at"`
	Triggered   bool       `json:"triggered"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

type snapshot struct {
	Schema    int                `json:"schema"`
	Remaining map[string]int     `json:"remaining"`
	Hand      []instanceSnapshot `json:"hand"`
	Discard   []instanceSnapshot `json:"discard"`
	HandLimit int                `json:"hand_limit"`
	Curses    []curseSnapshot    `json:"curses"`
	Traps     []trapSnapshot     `json:"traps"`
}

func encodeInstance(inst Instance) instanceSnapshot {
	return instanceSnapshot{
		ID:               inst.ID,
		Type:             inst.Type,
		Name:             inst.Name,
		Tier:             inst.Tier,
		BonusMinutes:     inst.BonusMinutes,
		PowerupType:      inst.PowerupType,
		CurseID:          inst.CurseID,
		BlocksQuestions:  inst.BlocksQuestions,
		BlocksTransit:    inst.BlocksTransit,
		UntilFound:       inst.UntilFound,
		DurationMinutes:  inst.DurationMinutes,
		TrapBonusMinutes: inst.TrapBonusMinutes,
	}
}

func decodeInstance(snap instanceSnapshot) Instance {
	return Instance{
		ID: snap.ID,
		Card: Card{
			Type:             snap.Type,
			Name:             snap.Name,
			Tier:             snap.Tier,
			BonusMinutes:     snap.BonusMinutes,
			PowerupType:      snap.PowerupType,
			CurseID:          snap.CurseID,
			BlocksQuestions:  snap.BlocksQuestions,
			BlocksTransit:    snap.BlocksTransit,
			UntilFound:       snap.UntilFound,
			DurationMinutes:  snap.DurationMinutes,
			TrapBonusMinutes: snap.TrapBonusMinutes,
		},
	}
}

// persist writes the deck state through the gateway. The pool is stored as
// per-variant remaining counts keyed by the composition entry. Save failures
// are logged, not surfaced. Callers hold the lock.
func (s *Store) persist() {
	if s.gateway == nil {
		return
	}
	snap := snapshot{
		Schema:    snapshotSchema,
		Remaining: make(map[string]int, len(s.variants)),
		HandLimit: s.handLimit,
	}
	for _, v := range s.variants {
		snap.Remaining[v.def.key()] = v.remaining
	}
	for _, inst := range s.hand {
		snap.Hand = append(snap.Hand, encodeInstance(inst))
	}
	for _, inst := range s.discard {
		snap.Discard = append(snap.Discard, encodeInstance(inst))
	}
	for _, c := range s.curses {
		snap.Curses = append(snap.Curses, curseSnapshot{
			instanceSnapshot: encodeInstance(c.Instance),
			ActivatedAt:      c.ActivatedAt,
		})
	}
	for _, trap := range s.traps {
		ts := trapSnapshot{
			instanceSnapshot: encodeInstance(trap.Instance),
			StationName:      trap.StationName,
			PlacedAt:         trap.PlacedAt,
			Triggered:        trap.Triggered,
		}
		if trap.Triggered {
			at := trap.TriggeredAt
			ts.TriggeredAt = &at
		}
		snap.Traps = append(snap.Traps, ts)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("cannot encode deck snapshot", "err", err)
		return
	}
	if err := s.gateway.Save(storage.KeyCards, data); err != nil {
		s.logger.Warn("cannot save deck snapshot", "err", err)
	}
}

// Rehydrate restores the deck from the gateway. Missing, unreadable, or
// unknown-schema snapshots leave the store at a full fresh deck. Variants
// missing from an otherwise valid snapshot keep their config counts.
func (s *Store) Rehydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gateway == nil {
		return nil
	}
	data, err := s.gateway.Load(storage.KeyCards)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("discarding unreadable deck snapshot", "err", err)
		return nil
	}
	if snap.Schema != snapshotSchema {
		s.logger.Warn("discarding deck snapshot with unknown schema", "schema", snap.Schema)
		return nil
	}

	s.rebuild()
	for i := range s.variants {
		if remaining, ok := snap.Remaining[s.variants[i].def.key()]; ok {
			s.variants[i].remaining = remaining
		}
	}
	if snap.HandLimit > 0 {
		s.handLimit = snap.HandLimit
	}
	for _, is := range snap.Hand {
		s.hand = append(s.hand, decodeInstance(is))
	}
	for _, is := range snap.Discard {
		s.discard = append(s.discard, decodeInstance(is))
	}
	for _, cs := range snap.Curses {
		s.curses = append(s.curses, ActiveCurse{
			Instance:    decodeInstance(cs.instanceSnapshot),
			ActivatedAt: cs.ActivatedAt,
		})
	}
	for _, ts := range snap.Traps {
		trap := PlacedTrap{
			Instance:    decodeInstance(ts.instanceSnapshot),
			StationName: ts.StationName,
			PlacedAt:    ts.PlacedAt,
			Triggered:   ts.Triggered,
		}
		if ts.TriggeredAt != nil {
			trap.TriggeredAt = *ts.TriggeredAt
		}
		s.traps = append(s.traps, trap)
	}
	return nil
}
