// Package gridworld is a small deterministic decision domain for driving
// the searcher: an agent walks a rectangular board, collects cell rewards
// once each, and tries to reach the goal cell before running out of steps.
package gridworld

import (
	"fmt"
	"strings"

	"mctsagent/game"
)

// Direction is the action type: one orthogonal step on the board.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// GoalReward is added to the evaluation once the agent stands on the goal.
const GoalReward = 10.0

// distancePenalty shapes the evaluation of cut-off rollouts: closer to the
// goal scores better.
const distancePenalty = 0.1

// Board is the static part of the domain, shared by every State of a run.
type Board struct {
	Width    int
	Height   int
	Cells    []float64 // collectable reward per cell, row-major
	Start    int       // cell index the agent begins on
	Goal     int       // cell index that ends the run
	MaxSteps int       // step budget before the run ends anyway
}

// NewBoard validates the dimensions and returns a board with zero-valued
// cells. Boards are capped at 64 cells so visited cells fit in a bitmask.
func NewBoard(width, height, maxSteps int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("board dimensions must be positive, got %dx%d", width, height)
	}
	if width*height > 64 {
		return nil, fmt.Errorf("board of %d cells exceeds the 64-cell limit", width*height)
	}
	if maxSteps <= 0 {
		return nil, fmt.Errorf("step budget must be positive, got %d", maxSteps)
	}
	return &Board{
		Width:    width,
		Height:   height,
		Cells:    make([]float64, width*height),
		Goal:     width*height - 1,
		MaxSteps: maxSteps,
	}, nil
}

func (b *Board) index(x, y int) int {
	return y*b.Width + x
}

// State is one position in a grid-world run. It is a value type: NextState
// returns a new State and never mutates the receiver. The board itself is
// shared and immutable.
type State struct {
	board     *Board
	pos       int
	visited   uint64 // cells whose reward has been collected
	collected float64
	steps     int
}

// New places the agent on the board's start cell with the start cell's
// reward already collected.
func New(board *Board) State {
	return State{
		board:   board,
		pos:     board.Start,
		visited: 1 << uint(board.Start),
	}
}

func (s State) Reset() game.State {
	return New(s.board)
}

func (s State) Position() (x, y int) {
	return s.pos % s.board.Width, s.pos / s.board.Width
}

func (s State) Steps() int {
	return s.steps
}

func (s State) Collected() float64 {
	return s.collected
}

func (s State) IsTerminated() bool {
	return s.pos == s.board.Goal || s.steps >= s.board.MaxSteps
}

// PossibleActions lists the directions that stay on the board, in a fixed
// up, down, left, right order.
func (s State) PossibleActions() []game.Action {
	if s.IsTerminated() {
		return nil
	}
	x, y := s.Position()
	actions := make([]game.Action, 0, 4)
	if y > 0 {
		actions = append(actions, Up)
	}
	if y < s.board.Height-1 {
		actions = append(actions, Down)
	}
	if x > 0 {
		actions = append(actions, Left)
	}
	if x < s.board.Width-1 {
		actions = append(actions, Right)
	}
	return actions
}

func (s State) NextState(action game.Action) (game.State, float64, error) {
	direction, ok := action.(Direction)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %v is not a direction", game.ErrInvalidAction, action)
	}
	x, y := s.Position()
	switch direction {
	case Up:
		y--
	case Down:
		y++
	case Left:
		x--
	case Right:
		x++
	default:
		return nil, 0, fmt.Errorf("%w: %v", game.ErrInvalidAction, direction)
	}
	if x < 0 || x >= s.board.Width || y < 0 || y >= s.board.Height {
		return nil, 0, fmt.Errorf("%w: %v leaves the board", game.ErrInvalidAction, direction)
	}
	if s.IsTerminated() {
		return nil, 0, fmt.Errorf("%w: the run is over", game.ErrInvalidAction)
	}

	next := s
	next.pos = s.board.index(x, y)
	next.steps++

	var reward float64
	bit := uint64(1) << uint(next.pos)
	if next.visited&bit == 0 {
		reward = s.board.Cells[next.pos]
		next.visited |= bit
		next.collected += reward
	}
	return next, reward, nil
}

// Evaluate scores the run so far: rewards collected, the goal bonus when
// reached, and otherwise a penalty growing with the remaining distance so
// cut-off rollouts still rank closer positions higher.
func (s State) Evaluate() float64 {
	if s.pos == s.board.Goal {
		return s.collected + GoalReward
	}
	x, y := s.Position()
	gx, gy := s.board.Goal%s.board.Width, s.board.Goal/s.board.Width
	distance := abs(gx-x) + abs(gy-y)
	return s.collected - distancePenalty*float64(distance)
}

// String renders the board with the agent (A), goal (G) and uncollected
// rewards (*).
func (s State) String() string {
	var sb strings.Builder
	for y := 0; y < s.board.Height; y++ {
		for x := 0; x < s.board.Width; x++ {
			i := s.board.index(x, y)
			switch {
			case i == s.pos:
				sb.WriteByte('A')
			case i == s.board.Goal:
				sb.WriteByte('G')
			case s.board.Cells[i] != 0 && s.visited&(1<<uint(i)) == 0:
				sb.WriteByte('*')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
