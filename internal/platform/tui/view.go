package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/cards"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/session"
)

// phaseLabels maps phases to what the table shows.
var phaseLabels = map[session.Phase]string{
	session.PhaseSetup:         "Setup",
	session.PhaseHidingPeriod:  "Hiding Period",
	session.PhaseSeeking:       "Seeking",
	session.PhaseEndGame:       "Endgame",
	session.PhaseRoundComplete: "Round Complete",
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	if d.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(d.renderHeader())
	b.WriteString("\n")
	b.WriteString(d.renderTimers())
	b.WriteString("\n")

	left := lipgloss.JoinVertical(lipgloss.Left, d.renderRoster(), d.renderQuestions())
	right := lipgloss.JoinVertical(lipgloss.Left, d.renderHand(), d.renderTable())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	switch d.mode {
	case modeAddPlayer, modeAnswer, modeStation:
		b.WriteString(d.input.View())
		b.WriteString("\n")
	case modePickQuestion:
		b.WriteString(d.renderQuestionPicker())
	case modePickDiscards:
		b.WriteString(d.renderDiscardPicker())
	}

	if d.status != "" {
		b.WriteString(statusStyle.Render(d.status))
		b.WriteString("\n")
	}
	b.WriteString(d.help.View(d.keys))
	return b.String()
}

func (d *Dashboard) renderHeader() string {
	phase := phaseLabels[d.session.Phase()]
	header := titleStyle.Render("hideseek") + dimStyle.Render(
		fmt.Sprintf("  round %d · %s map · %s", d.session.Round(), d.opts.Size, phase))
	if d.session.IsPaused() {
		header += "  " + pausedStyle.Render("PAUSED")
	}
	if d.session.IsHiderMoving() {
		header += "  " + warnStyle.Render("HIDER MOVING")
	}
	if d.opts.ReadOnly {
		header += "  " + dimStyle.Render("(view only)")
	}
	return header
}

func (d *Dashboard) renderTimers() string {
	parts := []string{
		fmt.Sprintf("hiding period %s", formatDuration(d.hidingTimer.Remaining())),
		fmt.Sprintf("hide clock %s", formatDuration(d.hideClock.Elapsed())),
	}
	if _, ok := d.questions.Pending(); ok {
		label := fmt.Sprintf("response %s", formatDuration(d.responseTimer.Remaining()))
		if d.responseTimer.Remaining() == 0 {
			label = warnStyle.Render("response overdue")
		}
		parts = append(parts, label)
	}
	return dimStyle.Render(strings.Join(parts, "  ·  "))
}

func (d *Dashboard) renderRoster() string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render("Players"))
	b.WriteString("\n")

	roster := d.session.Players()
	if len(roster) == 0 {
		b.WriteString(dimStyle.Render("press a to add players"))
	}
	hider, _ := d.session.CurrentHider()
	for i, p := range roster {
		prefix := "  "
		if d.session.Phase() == session.PhaseSetup && i == d.rosterCursor {
			prefix = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%-14s %8s", prefix, p.Name, formatDuration(p.TotalHidingTime))
		if p.ID == hider.ID && hider.ID != "" {
			line += warnStyle.Render("  hiding")
		} else if p.HasBeenHider {
			line += dimStyle.Render("  hid")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if d.session.AllPlayersHaveBeenHider() && d.session.Phase() == session.PhaseSetup {
		b.WriteString("\n")
		b.WriteString(paneTitleStyle.Render("Standings"))
		b.WriteString("\n")
		for i, p := range d.session.PlayersRankedByTime() {
			b.WriteString(fmt.Sprintf("  %d. %-14s %8s\n", i+1, p.Name, formatDuration(p.TotalHidingTime)))
		}
	}
	return paneStyle.Render(b.String())
}

func (d *Dashboard) renderQuestions() string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render("Questions"))
	b.WriteString("\n")

	if pending, ok := d.questions.Pending(); ok {
		text := pending.QuestionID
		if q, found := d.opts.Config.Question(pending.QuestionID); found {
			text = q.Text
		}
		b.WriteString(warnStyle.Render("pending: "))
		b.WriteString(text)
		b.WriteString("\n")
	} else {
		b.WriteString(dimStyle.Render("no question pending, press ? to ask"))
		b.WriteString("\n")
	}
	for _, stat := range d.questions.CategoryStats() {
		b.WriteString(dimStyle.Render(
			fmt.Sprintf("  %-12s %d/%d asked, %d left", stat.Category.Name, stat.Asked, stat.Total, stat.Available)))
		b.WriteString("\n")
	}
	return paneStyle.Render(b.String())
}

func (d *Dashboard) renderHand() string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render(
		fmt.Sprintf("Hand %d/%d · deck %d · discard %d",
			len(d.deck.Hand()), d.deck.HandLimit(), d.deck.DeckRemaining(), len(d.deck.DiscardPile()))))
	b.WriteString("\n")

	hand := d.deck.Hand()
	if len(hand) == 0 {
		b.WriteString(dimStyle.Render("empty, press d to draw"))
		b.WriteString("\n")
	}
	for i, inst := range hand {
		prefix := "  "
		if d.session.Phase() != session.PhaseSetup && i == d.handCursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(prefix + describeCard(inst, d.opts))
		b.WriteString("\n")
	}

	if curses := d.deck.ActiveCurses(); len(curses) > 0 {
		b.WriteString(paneTitleStyle.Render("Active curses"))
		b.WriteString("\n")
		for _, c := range curses {
			label := c.Name
			if c.UntilFound {
				label += dimStyle.Render(" (until found)")
			}
			b.WriteString("  " + label + "\n")
		}
	}
	if traps := d.deck.Traps(); len(traps) > 0 {
		b.WriteString(paneTitleStyle.Render("Time traps"))
		b.WriteString("\n")
		for _, trap := range traps {
			state := "armed"
			if trap.Triggered {
				state = fmt.Sprintf("+%d min", trap.TrapBonusMinutes)
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n", trap.StationName, state))
		}
	}
	bonus := d.deck.TotalTimeBonus(d.opts.Size) + d.deck.TotalTimeTrapBonus()
	if bonus > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("round bonus so far: +%d min", bonus)))
		b.WriteString("\n")
	}
	return paneStyle.Render(b.String())
}

func describeCard(inst cards.Instance, opts Options) string {
	switch inst.Type {
	case cards.TypeTimeBonus:
		return fmt.Sprintf("%s (+%d min)", inst.Name, inst.BonusMinutes.For(opts.Size))
	case cards.TypeCurse:
		return inst.Name
	case cards.TypeTimeTrap:
		return fmt.Sprintf("%s (+%d min when tripped)", inst.Name, inst.TrapBonusMinutes)
	default:
		return inst.Name
	}
}

func (d *Dashboard) renderTable() string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render("Asked questions"))
	b.WriteString("\n")
	if len(d.questions.AskedHistory()) == 0 {
		b.WriteString(dimStyle.Render("none yet"))
	} else {
		b.WriteString(d.history.View())
	}
	return paneStyle.Render(b.String())
}

func (d *Dashboard) renderQuestionPicker() string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render("Pick a question (enter to ask, esc to cancel)"))
	b.WriteString("\n")
	for i, q := range d.questionChoices {
		prefix := "  "
		if i == d.questionCursor {
			prefix = cursorStyle.Render("> ")
		}
		cost := ""
		if cat, ok := d.opts.Config.Category(q.Category); ok {
			cost = dimStyle.Render(fmt.Sprintf(" [draw %d keep %d]", cat.CardsDraw, cat.CardsKeep))
		}
		b.WriteString(prefix + q.Text + cost + "\n")
	}
	return paneStyle.Render(b.String())
}

func (d *Dashboard) renderDiscardPicker() string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render(
		fmt.Sprintf("Pick %d card(s) to discard (space to toggle, enter to confirm)", d.pickWant)))
	b.WriteString("\n")
	for i, inst := range d.pickTargets {
		prefix := "  "
		if i == d.handCursor {
			prefix = cursorStyle.Render("> ")
		}
		mark := "[ ] "
		if d.picked[inst.ID] {
			mark = "[x] "
		}
		b.WriteString(prefix + mark + describeCard(inst, d.opts) + "\n")
	}
	return paneStyle.Render(b.String())
}
