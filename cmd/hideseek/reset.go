package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the persisted session",
	Long: `Delete all saved session state: roster, scores, deck, and question log.
The next 'hideseek play' starts a brand-new game.

Examples:
  hideseek reset
  hideseek reset --db ./session.db`,
	Run: runReset,
}

func runReset(_ *cobra.Command, _ []string) {
	db, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing session: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Session cleared. Have a good game!")
}
