package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the interactive session dashboard",
	Long: `Start the session dashboard. One device runs this; the person holding
it relays what the hider and seekers report.

Controls:
  a          - Add a player (setup)
  enter      - Start round with selected player / score a finished round
  s/z/f      - Start seeking / seekers entered zone / hider found
  ?          - Ask a question    n/v/r - answer / veto / randomize it
  d/y/c      - Draw / play / discard cards    t - trigger a time trap
  p          - Pause or resume   m - hider move
  h          - Toggle full help  q - quit (state is saved)

Examples:
  hideseek play
  hideseek play --size small --seed 42
  hideseek play --config ./my-rules.yaml`,
	Run: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: play needs an interactive terminal")
		os.Exit(1)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := log.New(os.Stderr)
	logger.SetLevel(log.WarnLevel)

	s, err := openStores(seed, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	opts := tui.Options{Config: s.cfg, Size: s.size}
	if err := tui.Run(opts, s.session, s.questions, s.deck); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
