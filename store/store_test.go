package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *ActionLog {
	t.Helper()
	log, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, log.Close()) })
	return log
}

func TestAppendAndRecords(t *testing.T) {
	log := openTestLog(t)
	runID := uuid.New()

	require.NoError(t, log.Append(runID, "right"))
	require.NoError(t, log.Append(runID, "down"))
	require.NoError(t, log.Append(runID, "right"))

	records, err := log.Records(runID)
	require.NoError(t, err)
	require.Len(t, records, 3, "Every appended action should be readable")

	for i, want := range []string{"right", "down", "right"} {
		require.Equal(t, i, records[i].Step, "Steps should be numbered in play order")
		require.Equal(t, want, records[i].Action, "Actions should come back in play order")
		require.False(t, records[i].PlayedAt.IsZero(), "Every record should be timestamped")
	}
}

func TestRunsAreIsolated(t *testing.T) {
	log := openTestLog(t)
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, log.Append(first, "up"))
	require.NoError(t, log.Append(second, "down"))
	require.NoError(t, log.Append(second, "left"))

	count, err := log.Len(first)
	require.NoError(t, err)
	require.Equal(t, 1, count, "Runs should not see each other's records")

	count, err = log.Len(second)
	require.NoError(t, err)
	require.Equal(t, 2, count, "Runs should not see each other's records")
}

func TestUnknownRunIsEmpty(t *testing.T) {
	log := openTestLog(t)

	records, err := log.Records(uuid.New())
	require.NoError(t, err)
	require.Empty(t, records, "An unknown run should read as empty, not as an error")
}
