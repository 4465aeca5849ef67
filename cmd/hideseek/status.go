package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the persisted session state",
	Long: `Display a summary of the saved session: phase, roster, scores, deck
counts, and the question log. Useful after a crash or from a second terminal.

Examples:
  hideseek status
  hideseek status --db ./session.db`,
	Run: runStatus,
}

func runStatus(_ *cobra.Command, _ []string) {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)

	s, err := openStores(1, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	fmt.Printf("Phase:  %s (round %d)\n", s.session.Phase(), s.session.Round())
	if s.session.IsPaused() {
		fmt.Println("        paused")
	}
	if hider, ok := s.session.CurrentHider(); ok {
		fmt.Printf("Hider:  %s\n", hider.Name)
	}

	players := s.session.PlayersRankedByTime()
	if len(players) == 0 {
		fmt.Println("\nNo players yet.")
	} else {
		fmt.Println()
		fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "Rank", "Player", "Time", "Hid")
		fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "----", "------", "----", "---")
		for i, p := range players {
			hid := ""
			if p.HasBeenHider {
				hid = "yes"
			}
			fmt.Printf("  %-4d  %-16s  %-10s  %s\n", i+1, p.Name, p.TotalHidingTime.Round(time.Second), hid)
		}
	}

	fmt.Printf("\nDeck:   %d in pool, %d in hand (limit %d), %d discarded\n",
		s.deck.DeckRemaining(), len(s.deck.Hand()), s.deck.HandLimit(), len(s.deck.DiscardPile()))
	if curses := s.deck.ActiveCurses(); len(curses) > 0 {
		fmt.Println("Curses:")
		for _, c := range curses {
			fmt.Printf("  %s\n", c.Name)
		}
	}
	if traps := s.deck.Traps(); len(traps) > 0 {
		fmt.Println("Traps:")
		for _, trap := range traps {
			state := "armed"
			if trap.Triggered {
				state = fmt.Sprintf("triggered (+%d min)", trap.TrapBonusMinutes)
			}
			fmt.Printf("  %s: %s\n", trap.StationName, state)
		}
	}

	if pending, ok := s.questions.Pending(); ok {
		text := pending.QuestionID
		if q, found := s.cfg.Question(pending.QuestionID); found {
			text = q.Text
		}
		fmt.Printf("\nPending question: %s (asked %s)\n", text, pending.AskedAt.Format("15:04:05"))
	}
	if history := s.questions.AskedHistory(); len(history) > 0 {
		fmt.Printf("\nAsked questions: %d\n", len(history))
		for _, a := range history {
			text := a.QuestionID
			if q, found := s.cfg.Question(a.QuestionID); found {
				text = q.Text
			}
			fmt.Printf("  %s -> %s\n", text, a.Answer)
		}
	}
}
