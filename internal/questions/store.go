// Package questions owns the askable-question catalog, the single pending
// question slot, and the asked-question history. At most one question is in
// flight at a time; asking pays the hider in cards according to the
// question's category.
package questions

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/config"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/rng"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

var (
	ErrQuestionPending  = errors.New("a question is already pending")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAlreadyAsked     = errors.New("question has already been asked")
	ErrNoAlternatives   = errors.New("no other questions available in this category")
)

// CardCost is the hider's compensation for a question: draw this many cards,
// keep that many.
type CardCost struct {
	Draw int
	Keep int
}

// Pending is the single in-flight question awaiting resolution.
type Pending struct {
	QuestionID string
	CategoryID string
	AskedAt    time.Time
}

// Asked is one resolved history entry.
type Asked struct {
	QuestionID string
	CategoryID string
	Answer     string
	AskedAt    time.Time
	AnsweredAt time.Time
	Vetoed     bool
}

// CategoryStat summarizes one category's remaining supply for the UI.
// Available counts questions that are neither asked nor currently pending,
// so it matches what Available() would return for the category.
type CategoryStat struct {
	Category  config.CategoryConfig
	Total     int
	Asked     int
	Available int
}

// Store is the question protocol. The catalog is immutable reference data
// from config; only the pending slot and history mutate.
type Store struct {
	mu      sync.Mutex
	cfg     config.GameConfig
	gateway storage.Gateway
	clock   clockwork.Clock
	logger  *log.Logger
	random  rng.Source

	pending *Pending
	asked   []Asked
}

// New creates a question store over the given catalog. A nil clock falls
// back to the real clock; a nil logger discards.
func New(cfg config.GameConfig, gateway storage.Gateway, random rng.Source, clock clockwork.Clock, logger *log.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = log.New(nil)
	}
	return &Store{
		cfg:     cfg,
		gateway: gateway,
		clock:   clock,
		logger:  logger,
		random:  random,
	}
}

// Ask puts a question into the pending slot and returns its category's card
// cost. Fails if another question is pending, the id is unknown, or the
// question was already asked.
func (s *Store) Ask(id string) (CardCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return CardCost{}, ErrQuestionPending
	}
	q, ok := s.cfg.Question(id)
	if !ok {
		return CardCost{}, ErrQuestionNotFound
	}
	if s.isAsked(id) {
		return CardCost{}, ErrAlreadyAsked
	}
	cat, ok := s.cfg.Category(q.Category)
	if !ok {
		return CardCost{}, fmt.Errorf("questions: question %s references unknown category %s", id, q.Category)
	}

	s.pending = &Pending{
		QuestionID: id,
		CategoryID: cat.ID,
		AskedAt:    s.clock.Now(),
	}
	s.persist()
	return CardCost{Draw: cat.CardsDraw, Keep: cat.CardsKeep}, nil
}

// Answer resolves the pending question with the hider's answer and moves it
// into the asked history.
func (s *Store) Answer(id, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPending(id); err != nil {
		return err
	}
	s.asked = append(s.asked, Asked{
		QuestionID: s.pending.QuestionID,
		CategoryID: s.pending.CategoryID,
		Answer:     answer,
		AskedAt:    s.pending.AskedAt,
		AnsweredAt: s.clock.Now(),
	})
	s.pending = nil
	s.persist()
	return nil
}

// Veto clears the pending question without recording it, leaving it
// re-askable. The hider still collects the category's card cost.
func (s *Store) Veto(id string) (CardCost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPending(id); err != nil {
		return CardCost{}, err
	}
	cat, ok := s.cfg.Category(s.pending.CategoryID)
	if !ok {
		return CardCost{}, fmt.Errorf("questions: pending question references unknown category %s", s.pending.CategoryID)
	}
	s.pending = nil
	s.persist()
	return CardCost{Draw: cat.CardsDraw, Keep: cat.CardsKeep}, nil
}

// Randomize swaps the pending question for a uniformly random other unasked
// question in the same category. The original AskedAt is preserved so the
// response timer does not restart. Returns the replacement question.
func (s *Store) Randomize(id string) (config.QuestionConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPending(id); err != nil {
		return config.QuestionConfig{}, err
	}

	var candidates []config.QuestionConfig
	for _, q := range s.cfg.Questions {
		if q.Category != s.pending.CategoryID || q.ID == s.pending.QuestionID || s.isAsked(q.ID) {
			continue
		}
		candidates = append(candidates, q)
	}
	if len(candidates) == 0 {
		return config.QuestionConfig{}, ErrNoAlternatives
	}

	replacement := candidates[s.random.Intn(len(candidates))]
	s.pending.QuestionID = replacement.ID
	s.persist()
	return replacement, nil
}

// checkPending verifies id names the in-flight question. Callers hold the
// lock.
func (s *Store) checkPending(id string) error {
	if s.pending == nil {
		return fmt.Errorf("questions: no question is pending")
	}
	if s.pending.QuestionID != id {
		return fmt.Errorf("questions: question %s is not the pending question", id)
	}
	return nil
}

// isAsked reports whether id appears in the asked history. Callers hold the
// lock.
func (s *Store) isAsked(id string) bool {
	for _, a := range s.asked {
		if a.QuestionID == id {
			return true
		}
	}
	return false
}

// Pending returns the in-flight question, if any.
func (s *Store) Pending() (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Pending{}, false
	}
	return *s.pending, true
}

// AskedHistory returns a copy of the asked history in ask order.
func (s *Store) AskedHistory() []Asked {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Asked, len(s.asked))
	copy(out, s.asked)
	return out
}

// Available returns the catalog questions not yet asked and not pending,
// optionally filtered by category (empty means all).
func (s *Store) Available(categoryID string) []config.QuestionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available(categoryID, "")
}

// AvailableForSize is Available additionally filtered by the question's
// declared game-size availability.
func (s *Store) AvailableForSize(size config.GameSize, categoryID string) []config.QuestionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available(categoryID, size)
}

func (s *Store) available(categoryID string, size config.GameSize) []config.QuestionConfig {
	var out []config.QuestionConfig
	for _, q := range s.cfg.Questions {
		if categoryID != "" && q.Category != categoryID {
			continue
		}
		if size != "" && !q.AvailableIn(size) {
			continue
		}
		if s.isAsked(q.ID) {
			continue
		}
		if s.pending != nil && s.pending.QuestionID == q.ID {
			continue
		}
		out = append(out, q)
	}
	return out
}

// CategoryStats returns per-category supply counts in config order.
func (s *Store) CategoryStats() []CategoryStat {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make([]CategoryStat, 0, len(s.cfg.Categories))
	for _, cat := range s.cfg.Categories {
		stat := CategoryStat{Category: cat}
		for _, q := range s.cfg.Questions {
			if q.Category != cat.ID {
				continue
			}
			stat.Total++
			switch {
			case s.isAsked(q.ID):
				stat.Asked++
			case s.pending != nil && s.pending.QuestionID == q.ID:
				// Pending questions are neither asked nor available.
			default:
				stat.Available++
			}
		}
		stats = append(stats, stat)
	}
	return stats
}

// Reset clears the pending slot and the asked history.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.asked = nil
	s.persist()
}
