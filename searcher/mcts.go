package searcher

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"

	"mctsagent/game"
)

// ErrNilState is returned when Search is handed a nil state. Everything
// else the state contract requires is enforced by the game.State interface
// at compile time.
var ErrNilState = errors.New("initial state is nil")

type Option func(m *MCTS)

// MCTS selects actions by building a fresh search tree per Search call and
// running the selection, expansion, simulation and backpropagation phases
// for a fixed number of iterations. It is strictly single-threaded: no
// state is shared across calls except the configuration and the rollout
// RNG.
type MCTS struct {
	config      Config
	rng         *rand.Rand
	metrics     Collector
	lastMetrics SearchMetrics
}

// WithSeed makes rollout sampling deterministic, so two Search calls on the
// same state return the same action.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand replaces the rollout RNG wholesale.
func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

// WithMetrics enables per-search metrics collection, retrievable through
// Metrics after each call.
func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = NewCollector()
	}
}

func NewMCTS(config Config, options ...Option) (*MCTS, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	m := &MCTS{
		config:  config,
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics: NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m, nil
}

// Search runs the configured number of simulations from initial and returns
// the action of the root child with the most visits, ties broken by
// creation order. A nil action with a nil error is a valid outcome, not a
// failure: it means there is no action to take, because the state is
// already terminal or offers no legal actions. Any error from the state
// aborts the whole call.
func (m *MCTS) Search(initial game.State) (game.Action, error) {
	if initial == nil {
		return nil, ErrNilState
	}
	m.metrics.Start()

	root := newNode(initial, nil, nil, &m.config)
	m.metrics.AddNode()

	if root.terminated() {
		m.lastMetrics = m.metrics.Complete()
		return nil, nil
	}

	for i := 0; i < m.config.NumSimulations; i++ {
		promising := selectNode(root)
		expanded, err := m.expand(promising)
		if err != nil {
			return nil, fmt.Errorf("simulation %d: %w", i, err)
		}
		reward, err := m.rollout(expanded)
		if err != nil {
			return nil, fmt.Errorf("simulation %d: %w", i, err)
		}
		backpropagate(expanded, reward)
		m.metrics.AddSimulation()
	}
	m.lastMetrics = m.metrics.Complete()

	best := bestChild(root)
	if best == nil {
		return nil, nil
	}
	return best.actionTaken, nil
}

// Metrics returns the metrics of the most recent Search call. Zero-valued
// unless the engine was built WithMetrics.
func (m *MCTS) Metrics() SearchMetrics {
	return m.lastMetrics
}

// selectNode walks the tree policy from root and returns the node the next
// phase should act on: a terminal node, a dead end with no legal actions,
// or the first node that is not fully expanded. Fully expanded nodes are
// descended through their max-UCT child; on ties the earliest-created
// child wins.
func selectNode(root *node) *node {
	current := root
	for !current.terminated() {
		actions := current.state.PossibleActions()
		if len(actions) == 0 {
			return current
		}
		if len(current.children) < len(actions) {
			return current
		}

		best := current.children[0]
		bestScore := math.Inf(-1)
		for _, child := range current.children {
			if score := child.uctScore(current.visits); score > bestScore {
				bestScore = score
				best = child
			}
		}
		current = best
	}
	return current
}

// expand adds one child for the first untried action and returns it.
// Terminal and fully expanded nodes pass through unchanged, so simulation
// runs directly from them. The expansion order deliberately follows the
// order the state reports its actions in, rather than sampling one at
// random.
func (m *MCTS) expand(n *node) (*node, error) {
	if n.terminated() {
		return n, nil
	}

	action := untriedAction(n)
	if action == nil {
		return n, nil
	}

	// The transition reward is discarded: only rollout evaluations feed
	// the tree statistics.
	next, _, err := n.state.NextState(action)
	if err != nil {
		return nil, fmt.Errorf("expanding action %v: %w", action, err)
	}

	child := newNode(next, n, action, n.config)
	n.children = append(n.children, child)
	m.metrics.AddNode()
	return child, nil
}

// untriedAction returns the first legal action of n's state that no child
// was created for yet, or nil when every action has been tried.
func untriedAction(n *node) game.Action {
	tried := make(map[game.Action]struct{}, len(n.children))
	for _, child := range n.children {
		tried[child.actionTaken] = struct{}{}
	}
	for _, action := range n.state.PossibleActions() {
		if _, ok := tried[action]; !ok {
			return action
		}
	}
	return nil
}

// rollout plays uniformly random actions from n's state until termination,
// a dead end, or the depth cap, then scores the state it stopped in.
func (m *MCTS) rollout(n *node) (float64, error) {
	state := n.state
	for depth := 0; depth < m.config.MaxSimulationDepth; depth++ {
		if state.IsTerminated() {
			m.metrics.AddFullPlayout()
			break
		}
		actions := state.PossibleActions()
		if len(actions) == 0 {
			break
		}
		action := actions[m.rng.Intn(len(actions))]
		next, _, err := state.NextState(action)
		if err != nil {
			return 0, fmt.Errorf("rollout action %v: %w", action, err)
		}
		state = next
	}
	return state.Evaluate(), nil
}

// backpropagate applies the same undiscounted reward at every node from n
// up to and including the root. Any adversarial sign flipping is the
// state's business, encoded in its Evaluate, not the engine's.
func backpropagate(n *node, reward float64) {
	for current := n; current != nil; current = current.parent {
		current.visits++
		current.rewards += reward
	}
}

// bestChild picks the most visited child of root; ties are broken by
// creation order. Returns nil when root has no children.
func bestChild(root *node) *node {
	var best *node
	highest := -1
	for _, child := range root.children {
		if child.visits > highest {
			highest = child.visits
			best = child
		}
	}
	return best
}
