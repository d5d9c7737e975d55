package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"mctsagent/game"
	"mctsagent/game/gridworld"
	"mctsagent/searcher"
	"mctsagent/store"
)

type mockState struct {
	id       string
	value    float64
	terminal bool
	actions  []game.Action
	next     map[game.Action]*mockState
}

func (m *mockState) Reset() game.State { return m }

func (m *mockState) NextState(action game.Action) (game.State, float64, error) {
	next, ok := m.next[action]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %v in state %s", game.ErrInvalidAction, action, m.id)
	}
	return next, 0, nil
}

func (m *mockState) Evaluate() float64              { return m.value }
func (m *mockState) PossibleActions() []game.Action { return m.actions }
func (m *mockState) IsTerminated() bool             { return m.terminal }

func testConfig() searcher.Config {
	config := searcher.DefaultConfig()
	config.NumSimulations = 30
	return config
}

func TestStepPlaysBestActionAndLogsIt(t *testing.T) {
	actionLog, err := store.OpenInMemory()
	require.NoError(t, err)
	defer actionLog.Close()

	best := &mockState{id: "s-a1", value: 10.0, terminal: true}
	initial := &mockState{
		id:      "root",
		actions: []game.Action{"a1", "a2"},
		next: map[game.Action]*mockState{
			"a1": best,
			"a2": {id: "s-a2", value: 5.0, terminal: true},
		},
	}

	e, err := New(initial, testConfig(), actionLog, searcher.WithSeed(5))
	require.NoError(t, err)

	action, err := e.Step()
	require.NoError(t, err)
	require.Equal(t, game.Action("a1"), action, "Step should play the best action found")
	require.Equal(t, game.State(best), e.State(), "Step should advance the persisted state")

	records, err := actionLog.Records(e.RunID())
	require.NoError(t, err)
	require.Len(t, records, 1, "Step should append the played action to the log")
	require.Equal(t, "a1", records[0].Action)
}

func TestStepOnTerminalStateLeavesEverythingUnchanged(t *testing.T) {
	actionLog, err := store.OpenInMemory()
	require.NoError(t, err)
	defer actionLog.Close()

	terminal := &mockState{id: "over", terminal: true}
	e, err := New(terminal, testConfig(), actionLog)
	require.NoError(t, err)

	action, err := e.Step()
	require.NoError(t, err)
	require.Nil(t, action, "A terminal state should produce no action")
	require.Equal(t, game.State(terminal), e.State(), "The state should be unchanged")

	count, err := actionLog.Len(e.RunID())
	require.NoError(t, err)
	require.Zero(t, count, "Nothing should be logged for a terminal state")
}

func TestStepWithoutLog(t *testing.T) {
	initial := &mockState{
		id:      "root",
		actions: []game.Action{"a1"},
		next:    map[game.Action]*mockState{"a1": {id: "end", terminal: true}},
	}

	e, err := New(initial, testConfig(), nil)
	require.NoError(t, err)

	action, err := e.Step()
	require.NoError(t, err)
	require.Equal(t, game.Action("a1"), action, "A nil log should not prevent playing")
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil, testConfig(), nil)
	require.Error(t, err, "A nil initial state should be rejected")

	_, err = New(&mockState{id: "s"}, searcher.Config{}, nil)
	require.Error(t, err, "An invalid config should be rejected")
}

func TestRunPlaysGridWorldToTheGoal(t *testing.T) {
	actionLog, err := store.OpenInMemory()
	require.NoError(t, err)
	defer actionLog.Close()

	board, err := gridworld.NewBoard(3, 1, 6)
	require.NoError(t, err)

	config := testConfig()
	config.NumSimulations = 150
	config.MaxSimulationDepth = 10
	e, err := New(gridworld.New(board), config, actionLog, searcher.WithSeed(21))
	require.NoError(t, err)

	turns, err := e.Run(10)
	require.NoError(t, err)
	require.Equal(t, 2, turns, "Two right moves reach the goal on a 3x1 board")
	require.True(t, e.State().IsTerminated(), "The run should end at the goal")

	records, err := actionLog.Records(e.RunID())
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		require.Equal(t, "right", record.Action, "Every logged move should head toward the goal")
	}
}

func TestRunStopsAtTurnCap(t *testing.T) {
	// A loop of two states that never terminates.
	a := &mockState{id: "a", actions: []game.Action{"swap"}}
	b := &mockState{id: "b", actions: []game.Action{"swap"}, next: map[game.Action]*mockState{"swap": a}}
	a.next = map[game.Action]*mockState{"swap": b}

	e, err := New(a, testConfig(), nil)
	require.NoError(t, err)

	turns, err := e.Run(4)
	require.NoError(t, err)
	require.Equal(t, 4, turns, "Run should stop at the turn cap")
}
