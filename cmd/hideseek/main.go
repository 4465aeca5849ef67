// hideseek is a single-device companion for running a transit hide-and-seek
// game: one phone or laptop tracks the timers, the hider's card deck, the
// question log, and the round scores for everyone playing outside.
//
// Usage:
//
//	hideseek play              - Run the interactive session dashboard
//	hideseek serve             - Serve a read-only dashboard over SSH
//	hideseek status            - Print the persisted session state
//	hideseek reset             - Wipe the persisted session ("new game")
//
// Global flags:
//
//	--size <preset>  - Map size: small, medium, large (default: medium)
//	--config <path>  - Custom rules YAML
//	--seed <value>   - RNG seed for reproducible decks
//	--db <path>      - Session database path (default: ~/.hideseek/session.db)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/code-po8/jet-lag-stillwater-sub001/internal/cards"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/config"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/questions"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/rng"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/session"
	"github.com/code-po8/jet-lag-stillwater-sub001/internal/storage"
)

var (
	// Global flags
	flagSize   string
	flagConfig string
	flagSeed   int64
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hideseek",
	Short: "Hide-and-seek session tracker for your terminal",
	Long: `hideseek runs the rules of a transit hide-and-seek game on a single
device: phase tracking, round timers, the hider's card deck, the seekers'
question log, and cumulative scores.

Available commands:
  play     - Interactive session dashboard
  serve    - Read-only dashboard over SSH for seekers' phones
  status   - Print the persisted session state
  reset    - Wipe the persisted session

Examples:
  hideseek play
  hideseek play --size large
  hideseek serve --ssh :2222
  hideseek status
  hideseek reset`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSize, "size", "medium", "Map size: small, medium, large")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom rules YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.hideseek/session.db", "Path to session database")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
}

// stores bundles the rehydrated engine stores behind one Close.
type stores struct {
	cfg       config.GameConfig
	size      config.GameSize
	session   *session.Store
	questions *questions.Store
	deck      *cards.Store
	db        *storage.Store
}

func (s *stores) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// openStores loads the rules, opens the database, and rehydrates every store
// so an interrupted session picks up where it left off.
func openStores(seed int64, logger *log.Logger) (*stores, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	size, err := config.ParseGameSize(flagSize)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, err
	}

	random := rng.NewLCG(seed)
	s := &stores{
		cfg:       cfg,
		size:      size,
		session:   session.New(db, nil, logger),
		questions: questions.New(cfg, db, random, nil, logger),
		deck:      cards.New(cfg, db, random, nil, logger),
		db:        db,
	}
	for _, rehydrate := range []func() error{
		s.session.Rehydrate,
		s.questions.Rehydrate,
		s.deck.Rehydrate,
	} {
		if err := rehydrate(); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}
