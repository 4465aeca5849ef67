package session

import (
	"encoding/json"
	"time"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

const snapshotSchema = 1

type playerSnapshot struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	HasBeenHider      bool   `json:"has_been_hider"`
	TotalHidingTimeMs int64  `json:"total_hiding_time_ms"`
}

type snapshot struct {
	Schema        int              `json:"schema"`
	Phase         Phase            `json:"phase"`
	Players       []playerSnapshot `json:"players"`
	CurrentHider  string           `json:"current_hider,omitempty"`
	Round         int              `json:"round"`
	Paused        bool             `json:"paused"`
	PausedAt      *time.Time       `json:"paused_at,omitempty"`
	HiderMoving   bool             `json:"hider_moving"`
	MoveStartedAt *time.Time       `json:"move_started_at,omitempty"`
}

// persist writes the current state through the gateway. Save failures are
// logged and otherwise ignored; a failed write must not fail the rules
// operation that triggered it. Callers hold the lock.
func (s *Store) persist() {
	if s.gateway == nil {
		return
	}
	snap := snapshot{
		Schema:       snapshotSchema,
		Phase:        s.phase,
		Round:        s.round,
		CurrentHider: s.currentHider,
		Paused:       s.paused,
		HiderMoving:  s.hiderMoving,
	}
	if !s.pausedAt.IsZero() {
		t := s.pausedAt
		snap.PausedAt = &t
	}
	if !s.moveStartedAt.IsZero() {
		t := s.moveStartedAt
		snap.MoveStartedAt = &t
	}
	for _, p := range s.players {
		snap.Players = append(snap.Players, playerSnapshot{
			ID:                p.ID,
			Name:              p.Name,
			HasBeenHider:      p.HasBeenHider,
			TotalHidingTimeMs: p.TotalHidingTime.Milliseconds(),
		})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("cannot encode session snapshot", "err", err)
		return
	}
	if err := s.gateway.Save(storage.KeyGame, data); err != nil {
		s.logger.Warn("cannot save session snapshot", "err", err)
	}
}

// Rehydrate restores state from the gateway. A missing key, an unreadable
// snapshot, or an unknown schema all leave the store at its defaults.
func (s *Store) Rehydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gateway == nil {
		return nil
	}
	data, err := s.gateway.Load(storage.KeyGame)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("discarding unreadable session snapshot", "err", err)
		return nil
	}
	if snap.Schema != snapshotSchema {
		s.logger.Warn("discarding session snapshot with unknown schema", "schema", snap.Schema)
		return nil
	}

	s.phase = snap.Phase
	s.round = snap.Round
	s.currentHider = snap.CurrentHider
	s.paused = snap.Paused
	s.hiderMoving = snap.HiderMoving
	s.pausedAt = time.Time{}
	s.moveStartedAt = time.Time{}
	if snap.PausedAt != nil {
		s.pausedAt = *snap.PausedAt
	}
	if snap.MoveStartedAt != nil {
		s.moveStartedAt = *snap.MoveStartedAt
	}
	s.players = nil
	for _, p := range snap.Players {
		s.players = append(s.players, Player{
			ID:              p.ID,
			Name:            p.Name,
			HasBeenHider:    p.HasBeenHider,
			TotalHidingTime: time.Duration(p.TotalHidingTimeMs) * time.Millisecond,
		})
	}
	return nil
}
