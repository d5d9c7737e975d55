// Package engine glues a decision domain to the searcher: each step runs
// one search on the current state, plays the returned action, and appends
// it to the persisted action log. The engine owns no search logic of its
// own.
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"mctsagent/game"
	"mctsagent/searcher"
	"mctsagent/store"
)

// Engine drives one run of a decision domain. It is not safe for
// concurrent use; a run is a strictly sequential series of steps.
type Engine struct {
	runID   uuid.UUID
	state   game.State
	mcts    *searcher.MCTS
	actions *store.ActionLog
}

// New builds an engine for one run. actionLog may be nil, in which case
// played actions are not persisted.
func New(initial game.State, config searcher.Config, actionLog *store.ActionLog, options ...searcher.Option) (*Engine, error) {
	if initial == nil {
		return nil, errors.New("initial state is nil")
	}
	mcts, err := searcher.NewMCTS(config, options...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		runID:   uuid.New(),
		state:   initial,
		mcts:    mcts,
		actions: actionLog,
	}, nil
}

func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

// State returns the current persisted state of the run.
func (e *Engine) State() game.State {
	return e.state
}

// Step searches the current state for the best action, plays it, and logs
// it. It returns nil when there is nothing to play - the state is terminal
// or offers no action - leaving both the state and the log unchanged.
func (e *Engine) Step() (game.Action, error) {
	action, err := e.mcts.Search(e.state)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if action == nil {
		log.Debug().Str("run", e.runID.String()).Msg("no action to play")
		return nil, nil
	}

	next, _, err := e.state.NextState(action)
	if err != nil {
		return nil, fmt.Errorf("playing action %v: %w", action, err)
	}
	e.state = next

	if e.actions != nil {
		if err := e.actions.Append(e.runID, action); err != nil {
			return nil, fmt.Errorf("recording action %v: %w", action, err)
		}
	}

	log.Info().Str("run", e.runID.String()).Msgf("played %v", action)
	return action, nil
}

// Run steps until the run ends or maxTurns steps have been played, and
// returns the number of actions played.
func (e *Engine) Run(maxTurns int) (int, error) {
	turns := 0
	for turns < maxTurns {
		action, err := e.Step()
		if err != nil {
			return turns, err
		}
		if action == nil {
			break
		}
		turns++
	}
	return turns, nil
}
