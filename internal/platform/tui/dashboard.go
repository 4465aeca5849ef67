package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/cards"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/config"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/questions"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/session"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/timer"
)

// mode selects what the keyboard currently controls.
type mode int

const (
	modeDashboard mode = iota
	modeAddPlayer
	modePickQuestion
	modeAnswer
	modeStation
	modePickDiscards
)

// Options configures a dashboard instance.
type Options struct {
	Config   config.GameConfig
	Size     config.GameSize
	ReadOnly bool
}

// Dashboard is the Bubble Tea model for one session view. The local terminal
// gets a mutating dashboard; SSH viewers get a read-only one over the same
// stores.
type Dashboard struct {
	opts      Options
	session   *session.Store
	questions *questions.Store
	deck      *cards.Store

	keys    KeyMap
	help    help.Model
	input   textinput.Model
	history table.Model

	hidingTimer   *timer.Timer
	hideClock     *timer.Timer
	responseTimer *timer.Timer

	mode            mode
	rosterCursor    int
	handCursor      int
	questionCursor  int
	questionChoices []config.QuestionConfig
	pickTargets     []cards.Instance
	picked          map[string]bool
	pickWant        int
	pickDraw        int
	pendingTrapID   string
	roundDuration   time.Duration
	status          string
	width           int
	quitting        bool
}

// New creates a dashboard over the given stores.
func New(opts Options, sess *session.Store, qs *questions.Store, deck *cards.Store) *Dashboard {
	tick := time.Duration(opts.Config.Timers.TickIntervalMs) * time.Millisecond

	hidingMinutes := opts.Config.Timers.HidingPeriodMinutes.For(opts.Size)
	d := &Dashboard{
		opts:      opts,
		session:   sess,
		questions: qs,
		deck:      deck,
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
	d.hidingTimer = timer.New(timer.Options{
		TickInterval: tick,
		Countdown:    true,
		InitialTime:  time.Duration(hidingMinutes) * time.Minute,
	})
	d.hideClock = timer.New(timer.Options{TickInterval: tick})
	d.responseTimer = timer.New(timer.Options{TickInterval: tick, Countdown: true})

	d.input = textinput.New()
	d.input.CharLimit = 64

	d.history = table.New(
		table.WithColumns([]table.Column{
			{Title: "Question", Width: 42},
			{Title: "Category", Width: 12},
			{Title: "Answer", Width: 20},
		}),
		table.WithHeight(6),
	)
	d.refreshHistory()
	return d
}

func (d *Dashboard) tickInterval() time.Duration {
	return time.Duration(d.opts.Config.Timers.TickIntervalMs) * time.Millisecond
}

// Init starts the tick loop.
func (d *Dashboard) Init() tea.Cmd {
	return tickCmd(d.tickInterval())
}

// Update handles messages.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.help.Width = msg.Width
		return d, nil
	case TickMsg:
		d.handleTick()
		return d, tickCmd(d.tickInterval())
	case tea.FocusMsg:
		d.syncTimers(true)
		return d, nil
	case tea.BlurMsg:
		d.syncTimers(false)
		return d, nil
	case tea.KeyMsg:
		return d.handleKey(msg)
	}
	return d, nil
}

// syncTimers applies wall-clock drift correction when the terminal regains
// focus, covering ticks lost while the process was suspended.
func (d *Dashboard) syncTimers(visible bool) {
	d.hidingTimer.HandleVisibilityChange(visible)
	d.hideClock.HandleVisibilityChange(visible)
	d.responseTimer.HandleVisibilityChange(visible)
}

// handleTick advances the timers and applies due transitions.
func (d *Dashboard) handleTick() {
	d.hidingTimer.Tick()
	d.hideClock.Tick()
	d.responseTimer.Tick()

	// The hiding period running out starts the seeking phase on its own;
	// a completed countdown freezes with elapsed at the boundary.
	if d.session.Phase() == session.PhaseHidingPeriod &&
		!d.hidingTimer.IsRunning() && d.hidingTimer.Elapsed() > 0 {
		d.startSeeking()
	}
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch d.mode {
	case modeAddPlayer, modeAnswer, modeStation:
		return d.handleInputKey(msg)
	case modePickQuestion:
		return d.handlePickQuestionKey(msg)
	case modePickDiscards:
		return d.handlePickDiscardsKey(msg)
	}
	return d.handleDashboardKey(msg)
}

func (d *Dashboard) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Quit):
		d.quitting = true
		return d, tea.Quit
	case key.Matches(msg, d.keys.Help):
		d.help.ShowAll = !d.help.ShowAll
		return d, nil
	case key.Matches(msg, d.keys.Up):
		d.moveCursor(-1)
		return d, nil
	case key.Matches(msg, d.keys.Down):
		d.moveCursor(1)
		return d, nil
	}

	if d.opts.ReadOnly {
		return d, nil
	}

	switch {
	case key.Matches(msg, d.keys.AddPlayer):
		if d.session.Phase() == session.PhaseSetup {
			d.mode = modeAddPlayer
			d.input.Placeholder = "player name"
			d.input.SetValue("")
			d.input.Focus()
		}
	case key.Matches(msg, d.keys.Remove):
		d.removeSelectedPlayer()
	case key.Matches(msg, d.keys.Confirm):
		d.confirm()
	case key.Matches(msg, d.keys.Seek):
		d.startSeeking()
	case key.Matches(msg, d.keys.Zone):
		d.report(d.session.EnterHidingZone())
	case key.Matches(msg, d.keys.Found):
		d.hiderFound()
	case key.Matches(msg, d.keys.Pause):
		d.togglePause()
	case key.Matches(msg, d.keys.Move):
		d.toggleMove()
	case key.Matches(msg, d.keys.Ask):
		d.openQuestionPicker()
	case key.Matches(msg, d.keys.Answer):
		d.openAnswerPrompt()
	case key.Matches(msg, d.keys.Veto):
		d.vetoPending()
	case key.Matches(msg, d.keys.Randomize):
		d.randomizePending()
	case key.Matches(msg, d.keys.Draw):
		d.drawCards(1)
	case key.Matches(msg, d.keys.Play):
		d.playSelectedCard()
	case key.Matches(msg, d.keys.Discard):
		d.discardSelectedCard()
	case key.Matches(msg, d.keys.Trigger):
		d.triggerTrap()
	}
	return d, nil
}

func (d *Dashboard) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		d.mode = modeDashboard
		d.input.Blur()
		return d, nil
	case "enter":
		value := strings.TrimSpace(d.input.Value())
		switch d.mode {
		case modeAddPlayer:
			if _, err := d.session.AddPlayer(value); err != nil {
				d.report(err)
			} else {
				d.status = fmt.Sprintf("added %s", value)
			}
		case modeAnswer:
			d.answerPending(value)
		case modeStation:
			d.placeTrap(value)
		}
		d.mode = modeDashboard
		d.input.Blur()
		return d, nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d *Dashboard) handlePickQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Back):
		d.mode = modeDashboard
	case key.Matches(msg, d.keys.Up):
		if d.questionCursor > 0 {
			d.questionCursor--
		}
	case key.Matches(msg, d.keys.Down):
		if d.questionCursor < len(d.questionChoices)-1 {
			d.questionCursor++
		}
	case key.Matches(msg, d.keys.Confirm):
		if len(d.questionChoices) > 0 {
			d.askQuestion(d.questionChoices[d.questionCursor])
		}
		d.mode = modeDashboard
	}
	return d, nil
}

func (d *Dashboard) handlePickDiscardsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Back):
		d.mode = modeDashboard
	case key.Matches(msg, d.keys.Up):
		if d.handCursor > 0 {
			d.handCursor--
		}
	case key.Matches(msg, d.keys.Down):
		if d.handCursor < len(d.pickTargets)-1 {
			d.handCursor++
		}
	case msg.String() == " ":
		if len(d.pickTargets) > 0 {
			id := d.pickTargets[d.handCursor].ID
			d.picked[id] = !d.picked[id]
		}
	case key.Matches(msg, d.keys.Confirm):
		var ids []string
		for id, on := range d.picked {
			if on {
				ids = append(ids, id)
			}
		}
		if len(ids) != d.pickWant {
			d.status = fmt.Sprintf("pick exactly %d card(s) to discard", d.pickWant)
			return d, nil
		}
		drawn, err := d.deck.DiscardAndDraw(ids, d.pickDraw)
		if err != nil {
			d.report(err)
		} else {
			d.status = fmt.Sprintf("discarded %d, drew %d", len(ids), len(drawn))
		}
		d.mode = modeDashboard
		d.handCursor = 0
	}
	return d, nil
}

func (d *Dashboard) moveCursor(delta int) {
	if d.session.Phase() == session.PhaseSetup {
		roster := d.session.Players()
		d.rosterCursor = clamp(d.rosterCursor+delta, len(roster))
		return
	}
	d.handCursor = clamp(d.handCursor+delta, len(d.deck.Hand()))
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// confirm is the phase-dependent enter action: start a round during Setup,
// close the round during RoundComplete.
func (d *Dashboard) confirm() {
	switch d.session.Phase() {
	case session.PhaseSetup:
		roster := d.session.Players()
		if len(roster) == 0 {
			d.status = "add players first"
			return
		}
		hider := roster[clamp(d.rosterCursor, len(roster))]
		if err := d.session.StartRound(hider.ID); err != nil {
			d.report(err)
			return
		}
		d.questions.Reset()
		d.deck.Reset()
		d.refreshHistory()
		d.hidingTimer.Reset()
		d.hidingTimer.Start()
		d.hideClock.Reset()
		d.responseTimer.Reset()
		d.status = fmt.Sprintf("%s is hiding", hider.Name)
	case session.PhaseRoundComplete:
		bonus := time.Duration(d.deck.TotalTimeBonus(d.opts.Size)+d.deck.TotalTimeTrapBonus()) * time.Minute
		total := d.roundDuration + bonus
		if err := d.session.EndRound(total); err != nil {
			d.report(err)
			return
		}
		d.status = fmt.Sprintf("round scored: %s (%s bonus)", formatDuration(total), formatDuration(bonus))
	}
}

func (d *Dashboard) startSeeking() {
	if err := d.session.StartSeeking(); err != nil {
		d.report(err)
		return
	}
	d.hidingTimer.Stop()
	d.hideClock.Reset()
	d.hideClock.Start()
	d.status = "seekers are loose"
}

func (d *Dashboard) hiderFound() {
	if err := d.session.HiderFound(); err != nil {
		d.report(err)
		return
	}
	d.roundDuration = d.hideClock.Elapsed()
	d.hideClock.Stop()
	d.responseTimer.Reset()
	// The round ending lifts every curse, the until-found ones included.
	for _, curse := range d.deck.ActiveCurses() {
		if err := d.deck.ClearCurse(curse.ID); err != nil {
			d.report(err)
		}
	}
	d.status = fmt.Sprintf("found after %s, press enter to score the round", formatDuration(d.roundDuration))
}

func (d *Dashboard) togglePause() {
	if d.session.IsPaused() {
		if err := d.session.ResumeGame(); err != nil {
			d.report(err)
			return
		}
		d.hidingTimer.Resume()
		d.hideClock.Resume()
		d.responseTimer.Resume()
		d.status = "resumed"
		return
	}
	if err := d.session.PauseGame(); err != nil {
		d.report(err)
		return
	}
	d.hidingTimer.Pause()
	d.hideClock.Pause()
	d.responseTimer.Pause()
	d.status = "paused"
}

func (d *Dashboard) toggleMove() {
	if d.session.IsHiderMoving() {
		if err := d.session.ConfirmNewZone(); err != nil {
			d.report(err)
			return
		}
		d.status = "new hiding zone confirmed"
		return
	}
	if err := d.session.StartMove(); err != nil {
		d.report(err)
		return
	}
	d.status = "hider is relocating"
}

func (d *Dashboard) openQuestionPicker() {
	if _, pending := d.questions.Pending(); pending {
		d.status = "resolve the pending question first"
		return
	}
	for _, curse := range d.deck.ActiveCurses() {
		if curse.BlocksQuestions {
			d.status = fmt.Sprintf("%s blocks questions", curse.Name)
			return
		}
	}
	d.questionChoices = d.questions.AvailableForSize(d.opts.Size, "")
	if len(d.questionChoices) == 0 {
		d.status = "no questions left to ask"
		return
	}
	d.questionCursor = 0
	d.mode = modePickQuestion
}

func (d *Dashboard) askQuestion(q config.QuestionConfig) {
	cost, err := d.questions.Ask(q.ID)
	if err != nil {
		d.report(err)
		return
	}
	if cat, ok := d.opts.Config.Category(q.Category); ok {
		d.responseTimer = timer.New(timer.Options{
			TickInterval: d.tickInterval(),
			Countdown:    true,
			InitialTime:  time.Duration(cat.ResponseTimeMinutes.For(d.opts.Size)) * time.Minute,
		})
		d.responseTimer.Start()
	}
	d.status = fmt.Sprintf("asked: hider draws %d, keeps %d", cost.Draw, cost.Keep)
}

func (d *Dashboard) openAnswerPrompt() {
	if _, ok := d.questions.Pending(); !ok {
		d.status = "nothing to answer"
		return
	}
	d.mode = modeAnswer
	d.input.Placeholder = "hider's answer"
	d.input.SetValue("")
	d.input.Focus()
}

func (d *Dashboard) answerPending(answer string) {
	pending, ok := d.questions.Pending()
	if !ok {
		d.status = "nothing to answer"
		return
	}
	if err := d.questions.Answer(pending.QuestionID, answer); err != nil {
		d.report(err)
		return
	}
	d.responseTimer.Stop()
	d.refreshHistory()
	d.settleQuestionCost(pending.CategoryID)
}

func (d *Dashboard) vetoPending() {
	pending, ok := d.questions.Pending()
	if !ok {
		d.status = "nothing to veto"
		return
	}
	if _, err := d.questions.Veto(pending.QuestionID); err != nil {
		d.report(err)
		return
	}
	d.responseTimer.Stop()
	d.settleQuestionCost(pending.CategoryID)
}

// settleQuestionCost pays the hider the category's card draw.
func (d *Dashboard) settleQuestionCost(categoryID string) {
	cat, ok := d.opts.Config.Category(categoryID)
	if !ok {
		return
	}
	drawn, err := d.deck.Draw(cat.CardsDraw)
	if err != nil {
		d.report(err)
		return
	}
	d.status = fmt.Sprintf("hider drew %d card(s), keeps %d, discards the rest", len(drawn), cat.CardsKeep)
}

func (d *Dashboard) randomizePending() {
	pending, ok := d.questions.Pending()
	if !ok {
		d.status = "nothing to randomize"
		return
	}
	q, err := d.questions.Randomize(pending.QuestionID)
	if err != nil {
		d.report(err)
		return
	}
	d.status = fmt.Sprintf("swapped to: %s", q.Text)
}

func (d *Dashboard) drawCards(n int) {
	drawn, err := d.deck.Draw(n)
	if err != nil {
		d.report(err)
		return
	}
	if len(drawn) == 0 {
		d.status = "hand is full"
		return
	}
	d.status = fmt.Sprintf("drew %s", drawn[len(drawn)-1].Name)
}

func (d *Dashboard) selectedCard() (cards.Instance, bool) {
	hand := d.deck.Hand()
	if len(hand) == 0 {
		return cards.Instance{}, false
	}
	return hand[clamp(d.handCursor, len(hand))], true
}

func (d *Dashboard) discardSelectedCard() {
	inst, ok := d.selectedCard()
	if !ok {
		return
	}
	if _, err := d.deck.Discard(inst.ID); err != nil {
		d.report(err)
		return
	}
	d.handCursor = clamp(d.handCursor, len(d.deck.Hand()))
	d.status = fmt.Sprintf("discarded %s", inst.Name)
}

func (d *Dashboard) playSelectedCard() {
	inst, ok := d.selectedCard()
	if !ok {
		return
	}
	switch inst.Type {
	case cards.TypeTimeBonus:
		d.status = "time bonuses score themselves at the end of the round"
	case cards.TypeCurse:
		curse, err := d.deck.PlayCurseCard(inst.ID)
		if err != nil {
			d.report(err)
			return
		}
		d.status = fmt.Sprintf("%s is active", curse.Name)
	case cards.TypeTimeTrap:
		d.pendingTrapID = inst.ID
		d.mode = modeStation
		d.input.Placeholder = "station name"
		d.input.SetValue("")
		d.input.Focus()
	case cards.TypePowerup:
		d.playPowerup(inst)
	}
	d.handCursor = clamp(d.handCursor, len(d.deck.Hand()))
}

func (d *Dashboard) playPowerup(inst cards.Instance) {
	switch inst.PowerupType {
	case cards.PowerupMove:
		if err := d.session.StartMove(); err != nil {
			d.report(err)
			return
		}
		if err := d.deck.PlayMoveCard(inst.ID); err != nil {
			d.report(err)
			return
		}
		d.status = "hider is relocating, whole hand discarded"
	case cards.PowerupExpandHand:
		if _, err := d.deck.Play(inst.ID); err != nil {
			d.report(err)
			return
		}
		if err := d.deck.ExpandHandLimit(1); err != nil {
			d.report(err)
			return
		}
		if _, err := d.deck.Draw(1); err != nil {
			d.report(err)
			return
		}
		d.status = fmt.Sprintf("hand limit is now %d", d.deck.HandLimit())
	case cards.PowerupDuplicate:
		d.duplicateBestBonus(inst.ID)
	case cards.PowerupDiscard1Draw2:
		d.beginDiscardPick(inst, 1, 2)
	case cards.PowerupDiscard2Draw3:
		d.beginDiscardPick(inst, 2, 3)
	}
}

// duplicateBestBonus clones the most valuable time bonus in hand.
func (d *Dashboard) duplicateBestBonus(dupID string) {
	var best cards.Instance
	for _, inst := range d.deck.Hand() {
		if inst.Type != cards.TypeTimeBonus {
			continue
		}
		if best.ID == "" || inst.BonusMinutes.For(d.opts.Size) > best.BonusMinutes.For(d.opts.Size) {
			best = inst
		}
	}
	if best.ID == "" {
		d.status = "no time bonus in hand to duplicate"
		return
	}
	clone, err := d.deck.Duplicate(best.ID, dupID)
	if err != nil {
		d.report(err)
		return
	}
	d.status = fmt.Sprintf("cloned into %s", clone.Name)
}

func (d *Dashboard) beginDiscardPick(powerup cards.Instance, discardCount, drawCount int) {
	// The powerup itself does not count toward the discards.
	if len(d.deck.Hand())-1 < discardCount {
		d.status = "not enough cards in hand for that powerup"
		return
	}
	if _, err := d.deck.Play(powerup.ID); err != nil {
		d.report(err)
		return
	}
	d.pickTargets = d.deck.Hand()
	d.picked = make(map[string]bool)
	d.pickWant = discardCount
	d.pickDraw = drawCount
	d.handCursor = 0
	d.mode = modePickDiscards
}

func (d *Dashboard) placeTrap(station string) {
	trap, err := d.deck.PlayTimeTrapCard(d.pendingTrapID, station)
	if err != nil {
		d.report(err)
		return
	}
	d.status = fmt.Sprintf("trap armed at %s", trap.StationName)
}

func (d *Dashboard) triggerTrap() {
	for _, trap := range d.deck.Traps() {
		if trap.Triggered {
			continue
		}
		minutes, err := d.deck.TriggerTimeTrap(trap.ID)
		if err != nil {
			d.report(err)
			return
		}
		d.status = fmt.Sprintf("trap at %s fired: +%d minutes", trap.StationName, minutes)
		return
	}
	d.status = "no armed traps"
}

func (d *Dashboard) removeSelectedPlayer() {
	roster := d.session.Players()
	if len(roster) == 0 {
		return
	}
	p := roster[clamp(d.rosterCursor, len(roster))]
	if err := d.session.RemovePlayer(p.ID); err != nil {
		d.report(err)
		return
	}
	d.rosterCursor = clamp(d.rosterCursor, len(roster)-1)
	d.status = fmt.Sprintf("removed %s", p.Name)
}

func (d *Dashboard) refreshHistory() {
	var rows []table.Row
	for _, a := range d.questions.AskedHistory() {
		text := a.QuestionID
		if q, ok := d.opts.Config.Question(a.QuestionID); ok {
			text = q.Text
		}
		rows = append(rows, table.Row{text, a.CategoryID, a.Answer})
	}
	d.history.SetRows(rows)
}

func (d *Dashboard) report(err error) {
	if err != nil {
		d.status = err.Error()
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Run starts the local dashboard program.
func Run(opts Options, sess *session.Store, qs *questions.Store, deck *cards.Store) error {
	p := tea.NewProgram(
		New(opts, sess, qs, deck),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	return err
}
