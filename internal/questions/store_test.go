package questions

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/config"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/rng"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	return New(config.Default(), storage.NewMemory(), rng.NewLCG(1), clock, nil), clock
}

func TestAskReturnsCategoryCost(t *testing.T) {
	s, _ := newTestStore(t)

	cost, err := s.Ask("match-transit-line")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if cost.Draw != 3 || cost.Keep != 1 {
		t.Fatalf("cost = %+v, want draw 3 keep 1", cost)
	}
	pending, ok := s.Pending()
	if !ok || pending.QuestionID != "match-transit-line" || pending.CategoryID != "matching" {
		t.Fatalf("pending = %+v, %v", pending, ok)
	}
	if pending.AskedAt.IsZero() {
		t.Fatal("AskedAt not stamped")
	}
}

func TestOnlyOneQuestionPending(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Ask("match-transit-line"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if _, err := s.Ask("radar-one-mile"); !errors.Is(err, ErrQuestionPending) {
		t.Fatalf("second Ask err = %v, want %v", err, ErrQuestionPending)
	}
	pending, _ := s.Pending()
	if pending.QuestionID != "match-transit-line" {
		t.Fatal("failed Ask must not touch the pending slot")
	}
}

func TestAskUnknownQuestion(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Ask("nope"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrQuestionNotFound)
	}
}

func TestAnswerMovesToHistory(t *testing.T) {
	s, clock := newTestStore(t)

	if _, err := s.Ask("radar-one-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	clock.Advance(2 * time.Minute)
	if err := s.Answer("radar-one-mile", "yes"); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if _, ok := s.Pending(); ok {
		t.Fatal("pending slot should be clear after answering")
	}
	history := s.AskedHistory()
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	got := history[0]
	if got.QuestionID != "radar-one-mile" || got.Answer != "yes" || got.Vetoed {
		t.Fatalf("history entry = %+v", got)
	}
	if !got.AnsweredAt.After(got.AskedAt) {
		t.Fatalf("AnsweredAt %v not after AskedAt %v", got.AnsweredAt, got.AskedAt)
	}

	if _, err := s.Ask("radar-one-mile"); !errors.Is(err, ErrAlreadyAsked) {
		t.Fatalf("re-ask err = %v, want %v", err, ErrAlreadyAsked)
	}
}

func TestAnswerRequiresMatchingPending(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Answer("radar-one-mile", "yes"); err == nil {
		t.Fatal("answering with nothing pending should fail")
	}
	if _, err := s.Ask("radar-one-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if err := s.Answer("match-zone", "yes"); err == nil {
		t.Fatal("answering the wrong question should fail")
	}
}

func TestVetoLeavesQuestionReaskable(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Ask("photo-skyline"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	cost, err := s.Veto("photo-skyline")
	if err != nil {
		t.Fatalf("Veto: %v", err)
	}
	if cost.Draw != 1 || cost.Keep != 1 {
		t.Fatalf("veto cost = %+v, want draw 1 keep 1", cost)
	}
	if len(s.AskedHistory()) != 0 {
		t.Fatal("vetoed question must not enter the history")
	}
	if _, err := s.Ask("photo-skyline"); err != nil {
		t.Fatalf("re-asking a vetoed question: %v", err)
	}
}

func TestRandomizePreservesAskedAt(t *testing.T) {
	s, clock := newTestStore(t)

	if _, err := s.Ask("thermo-quarter-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	before, _ := s.Pending()
	clock.Advance(90 * time.Second)

	replacement, err := s.Randomize("thermo-quarter-mile")
	if err != nil {
		t.Fatalf("Randomize: %v", err)
	}
	if replacement.Category != "thermometer" {
		t.Fatalf("replacement category = %s, want thermometer", replacement.Category)
	}
	if replacement.ID == "thermo-quarter-mile" {
		t.Fatal("randomize must pick a different question")
	}

	after, ok := s.Pending()
	if !ok || after.QuestionID != replacement.ID {
		t.Fatalf("pending = %+v, %v", after, ok)
	}
	if !after.AskedAt.Equal(before.AskedAt) {
		t.Fatalf("AskedAt changed: %v -> %v", before.AskedAt, after.AskedAt)
	}
}

func TestRandomizeExhaustsCategory(t *testing.T) {
	s, _ := newTestStore(t)

	// Burn two of the three thermometer questions, then pend the last one.
	for _, id := range []string{"thermo-half-mile", "thermo-three-miles"} {
		if _, err := s.Ask(id); err != nil {
			t.Fatalf("Ask(%s): %v", id, err)
		}
		if err := s.Answer(id, "hotter"); err != nil {
			t.Fatalf("Answer(%s): %v", id, err)
		}
	}
	if _, err := s.Ask("thermo-quarter-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if _, err := s.Randomize("thermo-quarter-mile"); !errors.Is(err, ErrNoAlternatives) {
		t.Fatalf("err = %v, want %v", err, ErrNoAlternatives)
	}
}

func TestAvailableFilters(t *testing.T) {
	s, _ := newTestStore(t)
	cfg := config.Default()

	if got := len(s.Available("")); got != len(cfg.Questions) {
		t.Fatalf("available = %d, want full catalog %d", got, len(cfg.Questions))
	}

	if _, err := s.Ask("radar-half-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	for _, q := range s.Available("radar") {
		if q.ID == "radar-half-mile" {
			t.Fatal("pending question must not be listed as available")
		}
	}
	if err := s.Answer("radar-half-mile", "yes"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got := len(s.Available("radar")); got != 3 {
		t.Fatalf("radar available = %d, want 3", got)
	}

	// radar-half-mile is asked; the only other small-size radar question
	// is radar-one-mile.
	small := s.AvailableForSize(config.SizeSmall, "radar")
	if len(small) != 1 || small[0].ID != "radar-one-mile" {
		t.Fatalf("small radar available = %+v", small)
	}
}

func TestCategoryStats(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Ask("radar-one-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if err := s.Answer("radar-one-mile", "no"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	// A pending question counts as neither asked nor available.
	if _, err := s.Ask("radar-half-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	for _, stat := range s.CategoryStats() {
		if stat.Category.ID != "radar" {
			continue
		}
		if stat.Total != 4 || stat.Asked != 1 || stat.Available != 2 {
			t.Fatalf("radar stats = %+v, want total 4 asked 1 available 2", stat)
		}
		if got := len(s.Available("radar")); got != stat.Available {
			t.Fatalf("Available(radar) = %d, stat says %d", got, stat.Available)
		}
		return
	}
	t.Fatal("radar category missing from stats")
}

func TestResetClearsEverything(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Ask("radar-one-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if err := s.Answer("radar-one-mile", "no"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if _, err := s.Ask("match-zone"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	s.Reset()

	if _, ok := s.Pending(); ok {
		t.Fatal("pending should be clear after reset")
	}
	if len(s.AskedHistory()) != 0 {
		t.Fatal("history should be empty after reset")
	}
	if _, err := s.Ask("radar-one-mile"); err != nil {
		t.Fatalf("re-ask after reset: %v", err)
	}
}

func TestRehydrateRoundTrip(t *testing.T) {
	mem := storage.NewMemory()
	clock := clockwork.NewFakeClock()
	s := New(config.Default(), mem, rng.NewLCG(1), clock, nil)

	if _, err := s.Ask("radar-one-mile"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if err := s.Answer("radar-one-mile", "no"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if _, err := s.Ask("match-zone"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	want, _ := s.Pending()

	restored := New(config.Default(), mem, rng.NewLCG(1), clock, nil)
	if err := restored.Rehydrate(); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}

	pending, ok := restored.Pending()
	if !ok || pending.QuestionID != want.QuestionID {
		t.Fatalf("pending = %+v, %v", pending, ok)
	}
	if !pending.AskedAt.Equal(want.AskedAt) {
		t.Fatalf("AskedAt = %v, want %v", pending.AskedAt, want.AskedAt)
	}
	history := restored.AskedHistory()
	if len(history) != 1 || history[0].QuestionID != "radar-one-mile" {
		t.Fatalf("history = %+v", history)
	}
	if _, err := restored.Ask("radar-one-mile"); !errors.Is(err, ErrAlreadyAsked) {
		t.Fatalf("re-ask after restore err = %v, want %v", err, ErrAlreadyAsked)
	}
}

func TestRehydrateToleratesCorruptData(t *testing.T) {
	mem := storage.NewMemory()
	if err := mem.Save(storage.KeyQuestions, []byte("###")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s := New(config.Default(), mem, rng.NewLCG(1), nil, nil)
	if err := s.Rehydrate(); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if _, ok := s.Pending(); ok {
		t.Fatal("corrupt snapshot must leave the store empty")
	}
}
