package searcher

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"mctsagent/game"
)

// mockState is a hand-built game tree: each state names its legal actions
// and maps them to successor states.
type mockState struct {
	id       string
	value    float64
	terminal bool
	actions  []game.Action
	next     map[game.Action]*mockState
}

func (m *mockState) Reset() game.State {
	return m
}

func (m *mockState) NextState(action game.Action) (game.State, float64, error) {
	next, ok := m.next[action]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %v in state %s", game.ErrInvalidAction, action, m.id)
	}
	return next, 0, nil
}

func (m *mockState) Evaluate() float64 {
	return m.value
}

func (m *mockState) PossibleActions() []game.Action {
	return m.actions
}

func (m *mockState) IsTerminated() bool {
	return m.terminal
}

// chainState builds a linear run of n non-terminal states with exactly one
// legal action each, ending in a terminal state worth value.
func chainState(n int, value float64) *mockState {
	state := &mockState{id: "chain-end", value: value, terminal: true}
	for i := n - 1; i >= 0; i-- {
		state = &mockState{
			id:      fmt.Sprintf("chain-%d", i),
			actions: []game.Action{"advance"},
			next:    map[game.Action]*mockState{"advance": state},
		}
	}
	return state
}

func TestAverageReward(t *testing.T) {
	config := DefaultConfig()
	n := newNode(&mockState{id: "s"}, nil, nil, &config)

	require.Equal(t, 0.0, n.averageReward(), "Unvisited node should average to 0")

	n.visits = 10
	n.rewards = 5.0
	require.Equal(t, 0.5, n.averageReward(), "Average should be rewards over visits")
}

func TestUCTScoreUnvisited(t *testing.T) {
	config := DefaultConfig()
	n := newNode(&mockState{id: "s"}, nil, nil, &config)

	for _, parentVisits := range []int{0, 1, 10, 1000} {
		require.True(t, math.IsInf(n.uctScore(parentVisits), 1),
			"Unvisited node should score +Inf for parent visits %d", parentVisits)
	}
}

func TestUCTScoreVisited(t *testing.T) {
	config := DefaultConfig()
	n := newNode(&mockState{id: "s"}, nil, nil, &config)
	n.visits = 5
	n.rewards = 2.5

	got := n.uctScore(20)
	want := 0.5 + config.ExplorationConstant*math.Sqrt(math.Log(20)/5)
	require.InDelta(t, want, got, 1e-12, "Score should match the UCT formula")
}

func TestUCTScoreClampsParentVisits(t *testing.T) {
	config := DefaultConfig()
	n := newNode(&mockState{id: "s"}, nil, nil, &config)
	n.visits = 3
	n.rewards = 1.5

	got := n.uctScore(0)
	require.False(t, math.IsNaN(got), "Score should stay finite for an unvisited parent")
	require.Equal(t, n.uctScore(1), got, "Parent visits of 0 should behave like 1")
}

func TestNodeCreation(t *testing.T) {
	config := DefaultConfig()
	state := &mockState{id: "root", actions: []game.Action{"a1"}}
	root := newNode(state, nil, nil, &config)

	require.Nil(t, root.parent, "Root should have no parent")
	require.Nil(t, root.actionTaken, "Root should have no action taken")
	require.Empty(t, root.children, "New node should have no children")
	require.Zero(t, root.visits, "New node should be unvisited")
	require.Zero(t, root.rewards, "New node should have no rewards")
	require.False(t, root.terminated(), "Node should reflect its state's termination")

	child := newNode(&mockState{id: "c", terminal: true}, root, game.Action("a1"), &config)
	require.Equal(t, root, child.parent, "Child should point back at its parent")
	require.Equal(t, game.Action("a1"), child.actionTaken, "Child should record the action that produced it")
	require.True(t, child.terminated(), "Node should reflect its state's termination")
	require.Same(t, root.config, child.config, "Config should be shared by reference")
}
