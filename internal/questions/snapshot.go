package questions

import (
	"encoding/json"
	"time"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

const snapshotSchema = 1

type pendingSnapshot struct {
	QuestionID string    `json:"question_id"`
	CategoryID string    `json:"category_id"`
	AskedAt    time.Time `json:"asked_at"`
}

type askedSnapshot struct {
	QuestionID string    `json:"question_id"`
	CategoryID string    `json:"category_id"`
	Answer     string    `json:"answer"`
	AskedAt    time.Time `json:"asked_at"`
	AnsweredAt time.Time `json:"answered_at"`
	Vetoed     bool      `json:"vetoed"`
}

type snapshot struct {
	Schema  int              `json:"schema"`
	Pending *pendingSnapshot `json:"pending,omitempty"`
	Asked   []askedSnapshot  `json:"asked"`
}

// persist writes the dynamic state through the gateway; the catalog itself is
// config and never saved. Save failures are logged, not surfaced. Callers
// hold the lock.
func (s *Store) persist() {
	if s.gateway == nil {
		return
	}
	snap := snapshot{Schema: snapshotSchema}
	if s.pending != nil {
		snap.Pending = &pendingSnapshot{
			QuestionID: s.pending.QuestionID,
			CategoryID: s.pending.CategoryID,
			AskedAt:    s.pending.AskedAt,
		}
	}
	for _, a := range s.asked {
		snap.Asked = append(snap.Asked, askedSnapshot(a))
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("cannot encode question snapshot", "err", err)
		return
	}
	if err := s.gateway.Save(storage.KeyQuestions, data); err != nil {
		s.logger.Warn("cannot save question snapshot", "err", err)
	}
}

// Rehydrate restores the pending slot and history from the gateway. Missing,
// unreadable, or unknown-schema snapshots leave the store empty.
func (s *Store) Rehydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gateway == nil {
		return nil
	}
	data, err := s.gateway.Load(storage.KeyQuestions)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("discarding unreadable question snapshot", "err", err)
		return nil
	}
	if snap.Schema != snapshotSchema {
		s.logger.Warn("discarding question snapshot with unknown schema", "schema", snap.Schema)
		return nil
	}

	s.pending = nil
	if snap.Pending != nil {
		s.pending = &Pending{
			QuestionID: snap.Pending.QuestionID,
			CategoryID: snap.Pending.CategoryID,
			AskedAt:    snap.Pending.AskedAt,
		}
	}
	s.asked = nil
	for _, a := range snap.Asked {
		s.asked = append(s.asked, Asked(a))
	}
	return nil
}
