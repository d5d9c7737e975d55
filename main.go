package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mctsagent/engine"
	"mctsagent/experiments"
	"mctsagent/game/gridworld"
	"mctsagent/searcher"
	"mctsagent/store"
)

var (
	configPath string
	seed       uint64
	boardWidth int
	boardSteps int
)

func main() {
	setupLogging()

	root := &cobra.Command{
		Use:   "mctsagent",
		Short: "Monte Carlo tree search engine with a grid-world demo domain",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a yaml search config")
	root.PersistentFlags().Uint64Var(&seed, "seed", 0, "rollout RNG seed (0 uses the clock)")
	root.PersistentFlags().IntVar(&boardWidth, "size", 5, "grid-world board side length")
	root.PersistentFlags().IntVar(&boardSteps, "steps", 20, "grid-world step budget")

	root.AddCommand(searchCommand(), playCommand(), experimentCommand())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func loadConfig() (searcher.Config, error) {
	if configPath == "" {
		return searcher.DefaultConfig(), nil
	}
	return searcher.LoadConfig(configPath)
}

func searchOptions() []searcher.Option {
	options := []searcher.Option{searcher.WithMetrics()}
	if seed != 0 {
		options = append(options, searcher.WithSeed(seed))
	}
	return options
}

func newBoard() (*gridworld.Board, error) {
	return gridworld.NewBoard(boardWidth, boardWidth, boardSteps)
}

func searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Run one search on a fresh board and print the chosen action",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}
			board, err := newBoard()
			if err != nil {
				return err
			}

			m, err := searcher.NewMCTS(config, searchOptions()...)
			if err != nil {
				return err
			}
			action, err := m.Search(gridworld.New(board))
			if err != nil {
				return err
			}
			if action == nil {
				fmt.Println("no action to take")
				return nil
			}

			metrics := m.Metrics()
			fmt.Printf("best action: %v\n", action)
			fmt.Printf("simulations: %d, tree size: %d, full playouts: %d, took %s\n",
				metrics.Simulations, metrics.TreeSize, metrics.FullPlayouts, metrics.Duration)
			return nil
		},
	}
}

func playCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a full grid-world run, logging every action",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}
			board, err := newBoard()
			if err != nil {
				return err
			}

			var actionLog *store.ActionLog
			if dbPath != "" {
				actionLog, err = store.Open(dbPath)
			} else {
				actionLog, err = store.OpenInMemory()
			}
			if err != nil {
				return err
			}
			defer actionLog.Close()

			e, err := engine.New(gridworld.New(board), config, actionLog, searchOptions()...)
			if err != nil {
				return err
			}
			turns, err := e.Run(board.MaxSteps)
			if err != nil {
				return err
			}

			state := e.State().(gridworld.State)
			fmt.Printf("run %s finished after %d turns, collected %.1f\n",
				e.RunID(), turns, state.Collected())
			fmt.Print(state)

			records, err := actionLog.Records(e.RunID())
			if err != nil {
				return err
			}
			for _, record := range records {
				fmt.Printf("%3d  %s\n", record.Step, record.Action)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "badger directory for the action log (empty runs in memory)")
	return cmd
}

func experimentCommand() *cobra.Command {
	var outDir string
	var runs int

	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Sweep simulation budgets on the benchmark board and write CSV results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return experiments.RunBudgetExperiment(outDir, experiments.DefaultBudgetConfigs, runs)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "experiments-out", "directory for result CSVs")
	cmd.Flags().IntVar(&runs, "runs", 10, "runs per agent config")
	return cmd
}
