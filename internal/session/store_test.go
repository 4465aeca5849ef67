package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	return New(mem, clockwork.NewFakeClock(), nil), mem
}

func addPlayers(t *testing.T, s *Store, names ...string) []Player {
	t.Helper()
	out := make([]Player, 0, len(names))
	for _, name := range names {
		p, err := s.AddPlayer(name)
		if err != nil {
			t.Fatalf("AddPlayer(%q): %v", name, err)
		}
		out = append(out, p)
	}
	return out
}

func TestFullRoundCycle(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin")

	if err := s.StartRound(players[0].ID); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if got := s.Phase(); got != PhaseHidingPeriod {
		t.Fatalf("phase = %s, want %s", got, PhaseHidingPeriod)
	}
	if s.Round() != 1 {
		t.Fatalf("round = %d, want 1", s.Round())
	}
	hider, ok := s.CurrentHider()
	if !ok || hider.ID != players[0].ID {
		t.Fatalf("CurrentHider = %+v, %v", hider, ok)
	}
	if !hider.HasBeenHider {
		t.Fatal("hider not marked as having hidden")
	}

	for _, step := range []struct {
		name string
		fn   func() error
		want Phase
	}{
		{"StartSeeking", s.StartSeeking, PhaseSeeking},
		{"EnterHidingZone", s.EnterHidingZone, PhaseEndGame},
		{"HiderFound", s.HiderFound, PhaseRoundComplete},
	} {
		if err := step.fn(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if got := s.Phase(); got != step.want {
			t.Fatalf("%s: phase = %s, want %s", step.name, got, step.want)
		}
	}

	if err := s.EndRound(45 * time.Minute); err != nil {
		t.Fatalf("EndRound: %v", err)
	}
	if got := s.Phase(); got != PhaseSetup {
		t.Fatalf("phase after EndRound = %s, want %s", got, PhaseSetup)
	}
	if _, ok := s.CurrentHider(); ok {
		t.Fatal("hider should be cleared after EndRound")
	}
	if got := s.Players()[0].TotalHidingTime; got != 45*time.Minute {
		t.Fatalf("hiding time = %v, want 45m", got)
	}
}

func TestInvalidTransitionsLeaveStateUnchanged(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin")

	if err := s.StartSeeking(); err == nil {
		t.Fatal("StartSeeking from setup should fail")
	}
	if err := s.HiderFound(); err == nil {
		t.Fatal("HiderFound from setup should fail")
	}
	if err := s.EndRound(time.Minute); err == nil {
		t.Fatal("EndRound from setup should fail")
	}
	if got := s.Phase(); got != PhaseSetup {
		t.Fatalf("phase = %s, want %s", got, PhaseSetup)
	}

	if err := s.StartRound(players[0].ID); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := s.StartRound(players[1].ID); err == nil {
		t.Fatal("StartRound mid-round should fail")
	}
	if hider, _ := s.CurrentHider(); hider.ID != players[0].ID {
		t.Fatal("failed StartRound must not change the hider")
	}
}

func TestStartRoundRequirements(t *testing.T) {
	s, _ := newTestStore(t)
	p := addPlayers(t, s, "Ada")

	if err := s.StartRound(p[0].ID); err == nil {
		t.Fatal("StartRound with one player should fail")
	}
	addPlayers(t, s, "Brin")
	if err := s.StartRound("nope"); err == nil {
		t.Fatal("StartRound with unknown hider should fail")
	}
}

func TestRosterEditsOnlyDuringSetup(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin")

	if err := s.RemovePlayer("nope"); err == nil {
		t.Fatal("removing an unknown player should fail")
	}
	if err := s.StartRound(players[0].ID); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := s.AddPlayer("Cleo"); err == nil {
		t.Fatal("AddPlayer mid-round should fail")
	}
	if err := s.RemovePlayer(players[1].ID); err == nil {
		t.Fatal("RemovePlayer mid-round should fail")
	}
}

func TestPauseRules(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin")

	if err := s.PauseGame(); err == nil {
		t.Fatal("pause during setup should fail")
	}
	if err := s.ResumeGame(); err == nil {
		t.Fatal("resume while not paused should fail")
	}

	if err := s.StartRound(players[0].ID); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := s.PauseGame(); err != nil {
		t.Fatalf("PauseGame: %v", err)
	}
	if err := s.PauseGame(); err == nil {
		t.Fatal("double pause should fail")
	}
	if err := s.ResumeGame(); err != nil {
		t.Fatalf("ResumeGame: %v", err)
	}
	if s.IsPaused() {
		t.Fatal("store should not be paused after resume")
	}
}

func TestPauseClearedWhenRoundCompletes(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin")

	if err := s.StartRound(players[0].ID); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := s.StartSeeking(); err != nil {
		t.Fatalf("StartSeeking: %v", err)
	}
	if err := s.EnterHidingZone(); err != nil {
		t.Fatalf("EnterHidingZone: %v", err)
	}
	if err := s.PauseGame(); err != nil {
		t.Fatalf("PauseGame: %v", err)
	}
	if err := s.HiderFound(); err != nil {
		t.Fatalf("HiderFound: %v", err)
	}
	if s.IsPaused() {
		t.Fatal("pause must be cleared when the round completes")
	}
}

func TestMoveRules(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin")

	if err := s.StartMove(); err == nil {
		t.Fatal("move during setup should fail")
	}
	if err := s.ConfirmNewZone(); err == nil {
		t.Fatal("confirming with no move in progress should fail")
	}

	if err := s.StartRound(players[0].ID); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := s.StartMove(); err != nil {
		t.Fatalf("StartMove: %v", err)
	}
	if err := s.StartMove(); err == nil {
		t.Fatal("double StartMove should fail")
	}
	if err := s.ConfirmNewZone(); err != nil {
		t.Fatalf("ConfirmNewZone: %v", err)
	}
	if s.IsHiderMoving() {
		t.Fatal("store should not be moving after confirmation")
	}
}

func TestHidingTimeAccumulatesAcrossRounds(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin")

	runRound := func(hiderID string, hid time.Duration) {
		t.Helper()
		if err := s.StartRound(hiderID); err != nil {
			t.Fatalf("StartRound: %v", err)
		}
		if err := s.StartSeeking(); err != nil {
			t.Fatalf("StartSeeking: %v", err)
		}
		if err := s.EnterHidingZone(); err != nil {
			t.Fatalf("EnterHidingZone: %v", err)
		}
		if err := s.HiderFound(); err != nil {
			t.Fatalf("HiderFound: %v", err)
		}
		if err := s.EndRound(hid); err != nil {
			t.Fatalf("EndRound: %v", err)
		}
	}

	runRound(players[0].ID, 3_600_000*time.Millisecond)
	runRound(players[0].ID, 1_800_000*time.Millisecond)

	got := s.Players()[0].TotalHidingTime
	if want := 5_400_000 * time.Millisecond; got != want {
		t.Fatalf("accumulated hiding time = %v, want %v", got, want)
	}
}

func TestRankingAndHiderTracking(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin", "Cleo")

	if s.AllPlayersHaveBeenHider() {
		t.Fatal("nobody has hidden yet")
	}

	runRound := func(hiderID string, hid time.Duration) {
		t.Helper()
		if err := s.StartRound(hiderID); err != nil {
			t.Fatalf("StartRound: %v", err)
		}
		if err := s.StartSeeking(); err != nil {
			t.Fatalf("StartSeeking: %v", err)
		}
		if err := s.EnterHidingZone(); err != nil {
			t.Fatalf("EnterHidingZone: %v", err)
		}
		if err := s.HiderFound(); err != nil {
			t.Fatalf("HiderFound: %v", err)
		}
		if err := s.EndRound(hid); err != nil {
			t.Fatalf("EndRound: %v", err)
		}
	}

	runRound(players[1].ID, 50*time.Minute)

	waiting := s.PlayersWhoHaventBeenHider()
	if len(waiting) != 2 || waiting[0].ID != players[0].ID || waiting[1].ID != players[2].ID {
		t.Fatalf("waiting = %+v", waiting)
	}

	runRound(players[0].ID, 20*time.Minute)
	runRound(players[2].ID, 20*time.Minute)

	if !s.AllPlayersHaveBeenHider() {
		t.Fatal("everyone has hidden once")
	}

	ranked := s.PlayersRankedByTime()
	if ranked[0].ID != players[1].ID {
		t.Fatalf("ranked[0] = %s, want Brin", ranked[0].Name)
	}
	// Ada and Cleo are tied; roster order breaks the tie.
	if ranked[1].ID != players[0].ID || ranked[2].ID != players[2].ID {
		t.Fatalf("tie order = %s, %s", ranked[1].Name, ranked[2].Name)
	}
}

func TestResetGame(t *testing.T) {
	s, _ := newTestStore(t)
	players := addPlayers(t, s, "Ada", "Brin")

	if err := s.StartRound(players[0].ID); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := s.PauseGame(); err != nil {
		t.Fatalf("PauseGame: %v", err)
	}
	s.ResetGame()

	if got := s.Phase(); got != PhaseSetup {
		t.Fatalf("phase = %s, want %s", got, PhaseSetup)
	}
	if len(s.Players()) != 0 {
		t.Fatal("roster should be empty after reset")
	}
	if s.Round() != 0 {
		t.Fatalf("round = %d, want 0", s.Round())
	}
	if s.IsPaused() {
		t.Fatal("pause should be cleared by reset")
	}
}

func TestRehydrateRoundTrip(t *testing.T) {
	mem := storage.NewMemory()
	s := New(mem, clockwork.NewFakeClock(), nil)
	players := addPlayers(t, s, "Ada", "Brin")

	if err := s.StartRound(players[0].ID); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := s.StartSeeking(); err != nil {
		t.Fatalf("StartSeeking: %v", err)
	}
	if err := s.PauseGame(); err != nil {
		t.Fatalf("PauseGame: %v", err)
	}

	restored := New(mem, clockwork.NewFakeClock(), nil)
	if err := restored.Rehydrate(); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}

	if got := restored.Phase(); got != PhaseSeeking {
		t.Fatalf("phase = %s, want %s", got, PhaseSeeking)
	}
	if restored.Round() != 1 {
		t.Fatalf("round = %d, want 1", restored.Round())
	}
	if !restored.IsPaused() {
		t.Fatal("pause state should survive a restart")
	}
	hider, ok := restored.CurrentHider()
	if !ok || hider.ID != players[0].ID {
		t.Fatalf("CurrentHider = %+v, %v", hider, ok)
	}
	if len(restored.Players()) != 2 {
		t.Fatalf("roster size = %d, want 2", len(restored.Players()))
	}
}

func TestRehydrateToleratesMissingAndCorruptData(t *testing.T) {
	mem := storage.NewMemory()

	s := New(mem, nil, nil)
	if err := s.Rehydrate(); err != nil {
		t.Fatalf("Rehydrate with no saved state: %v", err)
	}
	if got := s.Phase(); got != PhaseSetup {
		t.Fatalf("phase = %s, want %s", got, PhaseSetup)
	}

	if err := mem.Save(storage.KeyGame, []byte("{not json")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s = New(mem, nil, nil)
	if err := s.Rehydrate(); err != nil {
		t.Fatalf("Rehydrate with corrupt state: %v", err)
	}
	if got := s.Phase(); got != PhaseSetup {
		t.Fatalf("phase after corrupt snapshot = %s, want %s", got, PhaseSetup)
	}
}
