// Package session owns the live state of one hide-and-seek session: the
// player roster, the current phase, the current hider, round counting and
// scoring, plus the pause and hider-relocation sub-states.
//
// Phases advance along a fixed cycle:
//
//	Setup -> HidingPeriod -> Seeking -> EndGame -> RoundComplete -> Setup
//
// A transition attempted from any other phase fails and changes nothing.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

// Phase is the session's current stage in the round cycle.
type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseHidingPeriod  Phase = "hiding_period"
	PhaseSeeking       Phase = "seeking"
	PhaseEndGame       Phase = "end_game"
	PhaseRoundComplete Phase = "round_complete"
)

// Player is one roster entry. Hiding time accumulates across every round the
// player hides in.
type Player struct {
	ID              string
	Name            string
	HasBeenHider    bool
	TotalHidingTime time.Duration
}

// Store is the game phase machine. All mutation goes through its methods;
// every successful mutation writes through to the persistence gateway.
type Store struct {
	mu      sync.Mutex
	gateway storage.Gateway
	clock   clockwork.Clock
	logger  *log.Logger

	phase         Phase
	players       []Player
	currentHider  string
	round         int
	paused        bool
	pausedAt      time.Time
	hiderMoving   bool
	moveStartedAt time.Time
}

// New creates a session store in the Setup phase. A nil clock falls back to
// the real clock; a nil logger discards.
func New(gateway storage.Gateway, clock clockwork.Clock, logger *log.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = log.New(nil)
	}
	return &Store{
		gateway: gateway,
		clock:   clock,
		logger:  logger,
		phase:   PhaseSetup,
	}
}

// AddPlayer adds a named player to the roster. Only allowed during Setup.
func (s *Store) AddPlayer(name string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseSetup {
		return Player{}, fmt.Errorf("session: cannot add players during %s", s.phase)
	}
	if name == "" {
		return Player{}, fmt.Errorf("session: player name must not be empty")
	}

	p := Player{ID: uuid.NewString(), Name: name}
	s.players = append(s.players, p)
	s.persist()
	return p, nil
}

// RemovePlayer removes a player from the roster. Only allowed during Setup.
func (s *Store) RemovePlayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseSetup {
		return fmt.Errorf("session: cannot remove players during %s", s.phase)
	}
	for i, p := range s.players {
		if p.ID == id {
			s.players = append(s.players[:i], s.players[i+1:]...)
			s.persist()
			return nil
		}
	}
	return fmt.Errorf("session: player %s not found", id)
}

// StartRound transitions Setup -> HidingPeriod with the given player hiding.
// Requires at least two players and a valid hider id.
func (s *Store) StartRound(hiderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseSetup {
		return fmt.Errorf("session: cannot start a round from %s", s.phase)
	}
	if len(s.players) < 2 {
		return fmt.Errorf("session: need at least 2 players to start a round, have %d", len(s.players))
	}
	idx := s.playerIndex(hiderID)
	if idx < 0 {
		return fmt.Errorf("session: hider %s is not on the roster", hiderID)
	}

	s.players[idx].HasBeenHider = true
	s.currentHider = hiderID
	s.round++
	s.phase = PhaseHidingPeriod
	s.logger.Info("round started", "round", s.round, "hider", s.players[idx].Name)
	s.persist()
	return nil
}

// StartSeeking transitions HidingPeriod -> Seeking.
func (s *Store) StartSeeking() error {
	return s.transition(PhaseHidingPeriod, PhaseSeeking)
}

// EnterHidingZone transitions Seeking -> EndGame: the seekers reached the
// hider's declared zone.
func (s *Store) EnterHidingZone() error {
	return s.transition(PhaseSeeking, PhaseEndGame)
}

// HiderFound transitions EndGame -> RoundComplete. Pause and move sub-states
// are force-cleared; a round cannot complete while nominally paused.
func (s *Store) HiderFound() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseEndGame {
		return fmt.Errorf("session: cannot complete the round from %s", s.phase)
	}
	s.phase = PhaseRoundComplete
	s.clearSubStates()
	s.logger.Info("hider found", "round", s.round)
	s.persist()
	return nil
}

// EndRound transitions RoundComplete -> Setup, crediting hidingTime to the
// current hider's total and clearing the hider.
func (s *Store) EndRound(hidingTime time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRoundComplete {
		return fmt.Errorf("session: cannot end the round from %s", s.phase)
	}
	if idx := s.playerIndex(s.currentHider); idx >= 0 {
		s.players[idx].TotalHidingTime += hidingTime
	}
	s.currentHider = ""
	s.phase = PhaseSetup
	s.persist()
	return nil
}

// transition performs a simple phase move with no side effects.
func (s *Store) transition(from, to Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != from {
		return fmt.Errorf("session: cannot move to %s from %s", to, s.phase)
	}
	s.phase = to
	s.persist()
	return nil
}

// PauseGame pauses the whole session. Valid only during an active round
// (HidingPeriod, Seeking, EndGame) and only when not already paused.
func (s *Store) PauseGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseHidingPeriod, PhaseSeeking, PhaseEndGame:
	default:
		return fmt.Errorf("session: cannot pause during %s", s.phase)
	}
	if s.paused {
		return fmt.Errorf("session: game is already paused")
	}
	s.paused = true
	s.pausedAt = s.clock.Now()
	s.persist()
	return nil
}

// ResumeGame resumes a paused session.
func (s *Store) ResumeGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.paused {
		return fmt.Errorf("session: game is not paused")
	}
	s.paused = false
	s.pausedAt = time.Time{}
	s.persist()
	return nil
}

// StartMove marks the hider as relocating. Valid only during HidingPeriod or
// Seeking and only when not already moving.
func (s *Store) StartMove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseHidingPeriod && s.phase != PhaseSeeking {
		return fmt.Errorf("session: cannot start a move during %s", s.phase)
	}
	if s.hiderMoving {
		return fmt.Errorf("session: hider is already moving")
	}
	s.hiderMoving = true
	s.moveStartedAt = s.clock.Now()
	s.persist()
	return nil
}

// ConfirmNewZone finishes a relocation.
func (s *Store) ConfirmNewZone() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hiderMoving {
		return fmt.Errorf("session: hider is not moving")
	}
	s.hiderMoving = false
	s.moveStartedAt = time.Time{}
	s.persist()
	return nil
}

// ResetGame clears the roster and returns the session to its defaults.
// Used for "play again".
func (s *Store) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = nil
	s.phase = PhaseSetup
	s.round = 0
	s.currentHider = ""
	s.clearSubStates()
	s.persist()
}

// clearSubStates drops pause and move state. Callers hold the lock.
func (s *Store) clearSubStates() {
	s.paused = false
	s.pausedAt = time.Time{}
	s.hiderMoving = false
	s.moveStartedAt = time.Time{}
}

// playerIndex returns the roster index for id, or -1. Callers hold the lock.
func (s *Store) playerIndex(id string) int {
	for i, p := range s.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Phase returns the current phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Round returns the current round number (0 before the first round).
func (s *Store) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Players returns a copy of the roster in entry order.
func (s *Store) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Player, len(s.players))
	copy(out, s.players)
	return out
}

// CurrentHider returns the hiding player, if a round is in progress.
func (s *Store) CurrentHider() (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.playerIndex(s.currentHider); idx >= 0 {
		return s.players[idx], true
	}
	return Player{}, false
}

// IsPaused reports whether the session is paused.
func (s *Store) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// IsHiderMoving reports whether the hider is relocating.
func (s *Store) IsHiderMoving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hiderMoving
}

// AllPlayersHaveBeenHider reports whether the roster is non-empty and every
// player has hidden at least once. Drives the "offer end game" prompt.
func (s *Store) AllPlayersHaveBeenHider() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) == 0 {
		return false
	}
	for _, p := range s.players {
		if !p.HasBeenHider {
			return false
		}
	}
	return true
}

// PlayersRankedByTime returns players ordered by total hiding time,
// descending; ties keep roster order.
func (s *Store) PlayersRankedByTime() []Player {
	players := s.Players()
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TotalHidingTime > players[j].TotalHidingTime
	})
	return players
}

// PlayersWhoHaventBeenHider returns the roster entries still waiting for a
// turn to hide, in roster order.
func (s *Store) PlayersWhoHaventBeenHider() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Player
	for _, p := range s.players {
		if !p.HasBeenHider {
			out = append(out, p)
		}
	}
	return out
}
