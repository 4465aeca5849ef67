package cards

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/config"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/rng"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

var (
	ErrDeckEmpty      = errors.New("deck is empty")
	ErrCardNotInHand  = errors.New("card not found in hand")
	ErrTrapNotFound   = errors.New("time trap not found")
	ErrTrapTriggered  = errors.New("time trap has already been triggered")
	ErrCurseNotActive = errors.New("curse is not active")
)

// variant is one composition entry: a card definition and how many copies
// remain in the draw pool.
type variant struct {
	def       Card
	remaining int
}

// Store is the card deck engine.
type Store struct {
	mu      sync.Mutex
	cfg     config.GameConfig
	gateway storage.Gateway
	clock   clockwork.Clock
	logger  *log.Logger
	random  rng.Source

	variants  []variant
	hand      []Instance
	discard   []Instance
	handLimit int
	curses    []ActiveCurse
	traps     []PlacedTrap
}

// New creates a deck store with the full composition in the draw pool.
// A nil clock falls back to the real clock; a nil logger discards.
func New(cfg config.GameConfig, gateway storage.Gateway, random rng.Source, clock clockwork.Clock, logger *log.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = log.New(nil)
	}
	s := &Store{
		cfg:     cfg,
		gateway: gateway,
		clock:   clock,
		logger:  logger,
		random:  random,
	}
	s.rebuild()
	return s
}

// rebuild restores the draw pool and hand parameters from config. Callers
// hold the lock (or own the store exclusively, as in New).
func (s *Store) rebuild() {
	s.variants = s.variants[:0]
	for _, tb := range s.cfg.Deck.TimeBonuses {
		s.variants = append(s.variants, variant{
			def: Card{
				Type:         TypeTimeBonus,
				Name:         tb.Name,
				Tier:         tb.Tier,
				BonusMinutes: tb.BonusMinutes,
			},
			remaining: tb.Count,
		})
	}
	for _, p := range s.cfg.Deck.Powerups {
		s.variants = append(s.variants, variant{
			def: Card{
				Type:        TypePowerup,
				Name:        p.Name,
				PowerupType: p.Type,
			},
			remaining: p.Count,
		})
	}
	for _, c := range s.cfg.Deck.Curses {
		s.variants = append(s.variants, variant{
			def: Card{
				Type:            TypeCurse,
				Name:            c.Name,
				CurseID:         c.ID,
				BlocksQuestions: c.BlocksQuestions,
				BlocksTransit:   c.BlocksTransit,
				UntilFound:      c.UntilFound,
				DurationMinutes: c.DurationMinutes,
			},
			remaining: c.Count,
		})
	}
	if s.cfg.Deck.TimeTraps.Count > 0 {
		s.variants = append(s.variants, variant{
			def: Card{
				Type:             TypeTimeTrap,
				Name:             "Time Trap",
				TrapBonusMinutes: s.cfg.Deck.TimeTraps.BonusMinutes,
			},
			remaining: s.cfg.Deck.TimeTraps.Count,
		})
	}
	s.hand = nil
	s.discard = nil
	s.curses = nil
	s.traps = nil
	s.handLimit = s.cfg.Hand.InitialLimit
}

// Draw pulls up to n cards from the pool into the hand, each chosen
// uniformly over the remaining individual cards. Drawing stops early at the
// hand limit or an exhausted pool; only a fully empty pool is an error.
func (s *Store) Draw(n int) ([]Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.deckRemaining()
	if remaining == 0 {
		return nil, ErrDeckEmpty
	}
	count := n
	if free := s.handLimit - len(s.hand); count > free {
		count = free
	}
	if count > remaining {
		count = remaining
	}

	drawn := make([]Instance, 0, count)
	for i := 0; i < count; i++ {
		inst := s.drawOne()
		s.hand = append(s.hand, inst)
		drawn = append(drawn, inst)
	}
	if len(drawn) > 0 {
		s.persist()
	}
	return drawn, nil
}

// drawOne removes one uniformly chosen card from the pool. Callers hold the
// lock and have verified the pool is non-empty.
func (s *Store) drawOne() Instance {
	pick := s.random.Intn(s.deckRemaining())
	for i := range s.variants {
		if pick < s.variants[i].remaining {
			s.variants[i].remaining--
			return Instance{ID: uuid.NewString(), Card: s.variants[i].def}
		}
		pick -= s.variants[i].remaining
	}
	// Unreachable while deckRemaining is in sync with variants.
	panic("cards: draw pool accounting is inconsistent")
}

// Play moves a card from the hand to the discard pile. Generic play is data
// movement only; typed effects go through the Play*Card methods.
func (s *Store) Play(instanceID string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveToDiscard(instanceID)
}

// Discard moves a card from the hand to the discard pile.
func (s *Store) Discard(instanceID string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveToDiscard(instanceID)
}

func (s *Store) moveToDiscard(instanceID string) (Instance, error) {
	inst, err := s.removeFromHand(instanceID)
	if err != nil {
		return Instance{}, err
	}
	s.discard = append(s.discard, inst)
	s.persist()
	return inst, nil
}

// removeFromHand takes a card out of the hand without filing it anywhere.
// Callers hold the lock and must place the card before returning.
func (s *Store) removeFromHand(instanceID string) (Instance, error) {
	for i, inst := range s.hand {
		if inst.ID == instanceID {
			s.hand = append(s.hand[:i], s.hand[i+1:]...)
			return inst, nil
		}
	}
	return Instance{}, ErrCardNotInHand
}

// ExpandHandLimit raises the hand limit. The limit never decreases.
func (s *Store) ExpandHandLimit(amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return fmt.Errorf("cards: hand limit can only grow, got %d", amount)
	}
	s.handLimit += amount
	s.persist()
	return nil
}

// DiscardAndDraw atomically discards the named cards and draws drawCount
// replacements. Fails without mutating anything if any id is missing from
// the hand or the pool cannot supply drawCount cards.
func (s *Store) DiscardAndDraw(instanceIDs []string, drawCount int) ([]Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range instanceIDs {
		found := false
		for _, inst := range s.hand {
			if inst.ID == id {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrCardNotInHand
		}
	}
	if s.deckRemaining() < drawCount {
		return nil, fmt.Errorf("cards: pool has %d cards, cannot draw %d", s.deckRemaining(), drawCount)
	}

	for _, id := range instanceIDs {
		inst, _ := s.removeFromHand(id)
		s.discard = append(s.discard, inst)
	}
	drawn := make([]Instance, 0, drawCount)
	for i := 0; i < drawCount && len(s.hand) < s.handLimit; i++ {
		inst := s.drawOne()
		s.hand = append(s.hand, inst)
		drawn = append(drawn, inst)
	}
	s.persist()
	return drawn, nil
}

// Duplicate consumes a Duplicate powerup to clone another card in hand. The
// clone gets a fresh instance id; cloned time bonuses are worth double.
func (s *Store) Duplicate(sourceID, duplicateCardID string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup, err := s.findInHand(duplicateCardID)
	if err != nil {
		return Instance{}, err
	}
	if dup.Type != TypePowerup || dup.PowerupType != PowerupDuplicate {
		return Instance{}, fmt.Errorf("cards: %s is not a duplicate powerup", dup.Name)
	}
	src, err := s.findInHand(sourceID)
	if err != nil {
		return Instance{}, err
	}
	if sourceID == duplicateCardID {
		return Instance{}, fmt.Errorf("cards: the duplicate powerup cannot copy itself")
	}

	used, _ := s.removeFromHand(duplicateCardID)
	s.discard = append(s.discard, used)

	clone := Instance{ID: uuid.NewString(), Card: src.Card}
	if clone.Type == TypeTimeBonus {
		clone.BonusMinutes = config.SizeMinutes{
			Small:  src.BonusMinutes.Small * 2,
			Medium: src.BonusMinutes.Medium * 2,
			Large:  src.BonusMinutes.Large * 2,
		}
		clone.Name = src.Name + " (Doubled)"
	}
	s.hand = append(s.hand, clone)
	s.persist()
	return clone, nil
}

// PlayMoveCard lets the hider relocate at the cost of the entire hand,
// the Move card included.
func (s *Store) PlayMoveCard(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.findInHand(instanceID)
	if err != nil {
		return err
	}
	if inst.Type != TypePowerup || inst.PowerupType != PowerupMove {
		return fmt.Errorf("cards: %s is not a move powerup", inst.Name)
	}
	s.discard = append(s.discard, s.hand...)
	s.hand = nil
	s.persist()
	return nil
}

// PlayCurseCard activates a curse from the hand against the seekers.
func (s *Store) PlayCurseCard(instanceID string) (ActiveCurse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.findInHand(instanceID)
	if err != nil {
		return ActiveCurse{}, err
	}
	if inst.Type != TypeCurse {
		return ActiveCurse{}, fmt.Errorf("cards: %s is not a curse", inst.Name)
	}
	inst, _ = s.removeFromHand(instanceID)
	curse := ActiveCurse{Instance: inst, ActivatedAt: s.clock.Now()}
	s.curses = append(s.curses, curse)
	s.persist()
	return curse, nil
}

// ClearCurse retires an active curse to the discard pile.
func (s *Store) ClearCurse(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.curses {
		if c.ID == instanceID {
			s.curses = append(s.curses[:i], s.curses[i+1:]...)
			s.discard = append(s.discard, c.Instance)
			s.persist()
			return nil
		}
	}
	return ErrCurseNotActive
}

// ExpiredCurses returns the active curses whose timers have run out at the
// given game size. Until-found curses are never included.
func (s *Store) ExpiredCurses(size config.GameSize) []ActiveCurse {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var out []ActiveCurse
	for _, c := range s.curses {
		if c.Expired(size, now) {
			out = append(out, c)
		}
	}
	return out
}

// PlayTimeTrapCard places a time trap from the hand at a named station.
func (s *Store) PlayTimeTrapCard(instanceID, stationName string) (PlacedTrap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(stationName) == "" {
		return PlacedTrap{}, fmt.Errorf("cards: a time trap needs a station name")
	}
	inst, err := s.findInHand(instanceID)
	if err != nil {
		return PlacedTrap{}, err
	}
	if inst.Type != TypeTimeTrap {
		return PlacedTrap{}, fmt.Errorf("cards: %s is not a time trap", inst.Name)
	}
	inst, _ = s.removeFromHand(instanceID)
	trap := PlacedTrap{Instance: inst, StationName: stationName, PlacedAt: s.clock.Now()}
	s.traps = append(s.traps, trap)
	s.persist()
	return trap, nil
}

// TriggerTimeTrap fires a placed trap once and returns its bonus minutes.
func (s *Store) TriggerTimeTrap(instanceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.traps {
		if s.traps[i].ID != instanceID {
			continue
		}
		if s.traps[i].Triggered {
			return 0, ErrTrapTriggered
		}
		s.traps[i].Triggered = true
		s.traps[i].TriggeredAt = s.clock.Now()
		s.persist()
		return s.traps[i].TrapBonusMinutes, nil
	}
	return 0, ErrTrapNotFound
}

// TotalTimeTrapBonus sums the bonus minutes of triggered traps only.
func (s *Store) TotalTimeTrapBonus() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, trap := range s.traps {
		if trap.Triggered {
			total += trap.TrapBonusMinutes
		}
	}
	return total
}

// TotalTimeBonus sums the hiding-time bonus minutes of the time-bonus cards
// currently in hand, at the given game size.
func (s *Store) TotalTimeBonus(size config.GameSize) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, inst := range s.hand {
		if inst.Type == TypeTimeBonus {
			total += inst.BonusMinutes.For(size)
		}
	}
	return total
}

// Reset returns the full composition to the draw pool and clears the hand,
// discard pile, curses, traps, and hand limit.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuild()
	s.persist()
}

// findInHand looks a card up without removing it. Callers hold the lock.
func (s *Store) findInHand(instanceID string) (Instance, error) {
	for _, inst := range s.hand {
		if inst.ID == instanceID {
			return inst, nil
		}
	}
	return Instance{}, ErrCardNotInHand
}

// deckRemaining counts the cards left in the draw pool. Callers hold the
// lock.
func (s *Store) deckRemaining() int {
	total := 0
	for _, v := range s.variants {
		total += v.remaining
	}
	return total
}

// DeckRemaining returns the number of cards left in the draw pool.
func (s *Store) DeckRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deckRemaining()
}

// Hand returns a copy of the hand in draw order.
func (s *Store) Hand() []Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Instance, len(s.hand))
	copy(out, s.hand)
	return out
}

// DiscardPile returns a copy of the discard pile.
func (s *Store) DiscardPile() []Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Instance, len(s.discard))
	copy(out, s.discard)
	return out
}

// HandLimit returns the current hand limit.
func (s *Store) HandLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handLimit
}

// ActiveCurses returns a copy of the active curses in play order.
func (s *Store) ActiveCurses() []ActiveCurse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ActiveCurse, len(s.curses))
	copy(out, s.curses)
	return out
}

// Traps returns a copy of the placed traps in placement order.
func (s *Store) Traps() []PlacedTrap {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PlacedTrap, len(s.traps))
	copy(out, s.traps)
	return out
}
