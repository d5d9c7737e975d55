// Package experiments benchmarks search budgets against each other on a
// fixed grid-world board and records the outcomes as CSV for offline
// analysis.
package experiments

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"mctsagent/engine"
	"mctsagent/game/gridworld"
	"mctsagent/searcher"
)

// AgentConfig is one search configuration under test.
type AgentConfig struct {
	ID          int
	Simulations int
	Exploration float64
}

// RunRecord is the outcome of one run of one agent.
type RunRecord struct {
	Agent       int // AgentConfig.ID
	Run         int
	Turns       int
	ReachedGoal bool
	Collected   float64
	Duration    time.Duration
}

// DefaultBudgetConfigs sweeps the simulation budget with the standard
// exploration constant.
var DefaultBudgetConfigs = []AgentConfig{
	{ID: 1, Simulations: 50, Exploration: math.Sqrt2},
	{ID: 2, Simulations: 200, Exploration: math.Sqrt2},
	{ID: 3, Simulations: 800, Exploration: math.Sqrt2},
}

// benchmarkBoard is a 5x5 board with a detour worth taking: reward cells
// sit off the straight diagonal to the goal.
func benchmarkBoard() (*gridworld.Board, error) {
	board, err := gridworld.NewBoard(5, 5, 20)
	if err != nil {
		return nil, err
	}
	board.Cells[4] = 2.0  // top-right corner
	board.Cells[12] = 1.0 // center
	board.Cells[20] = 2.0 // bottom-left corner
	return board, nil
}

// RunBudgetExperiment plays runsPerConfig grid-world runs for every agent
// config and writes the configs and run records under baseDir.
func RunBudgetExperiment(baseDir string, configs []AgentConfig, runsPerConfig int) error {
	board, err := benchmarkBoard()
	if err != nil {
		return err
	}

	writer, err := NewWriter(baseDir)
	if err != nil {
		return err
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return err
	}

	var records []RunRecord
	for _, config := range configs {
		log.Info().Int("agent", config.ID).Int("simulations", config.Simulations).
			Msg("running agent config")

		for run := 0; run < runsPerConfig; run++ {
			record, err := playRun(board, config, run)
			if err != nil {
				return fmt.Errorf("agent %d run %d: %w", config.ID, run, err)
			}
			records = append(records, record)
		}
	}

	return writer.WriteRunRecords(records)
}

func playRun(board *gridworld.Board, config AgentConfig, run int) (RunRecord, error) {
	searchConfig := searcher.DefaultConfig()
	searchConfig.NumSimulations = config.Simulations
	searchConfig.ExplorationConstant = config.Exploration
	searchConfig.MaxSimulationDepth = board.MaxSteps

	e, err := engine.New(gridworld.New(board), searchConfig, nil)
	if err != nil {
		return RunRecord{}, err
	}

	start := time.Now()
	turns, err := e.Run(board.MaxSteps)
	if err != nil {
		return RunRecord{}, err
	}

	state := e.State().(gridworld.State)
	x, y := state.Position()
	goalX, goalY := board.Goal%board.Width, board.Goal/board.Width
	return RunRecord{
		Agent:       config.ID,
		Run:         run,
		Turns:       turns,
		ReachedGoal: x == goalX && y == goalY,
		Collected:   state.Collected(),
		Duration:    time.Since(start),
	}, nil
}
