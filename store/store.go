// Package store persists the action log of decision runs in an embedded
// BadgerDB database. Each run is keyed by its uuid; records within a run
// are keyed by a big-endian sequence number so iteration order is play
// order.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"mctsagent/game"
)

// Record is one logged action of a run.
type Record struct {
	Step     int       `json:"step"`
	Action   string    `json:"action"`
	PlayedAt time.Time `json:"played_at"`
}

// ActionLog is a BadgerDB-backed append-only action log.
type ActionLog struct {
	db *badger.DB
}

// Open opens (or creates) an action log at path.
func Open(path string) (*ActionLog, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open action log at %s: %w", path, err)
	}
	return &ActionLog{db: db}, nil
}

// OpenInMemory opens a log without disk persistence, for tests and
// throwaway runs.
func OpenInMemory() (*ActionLog, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory action log: %w", err)
	}
	return &ActionLog{db: db}, nil
}

func (l *ActionLog) Close() error {
	return l.db.Close()
}

func runPrefix(runID uuid.UUID) []byte {
	prefix := append([]byte("run/"), runID[:]...)
	return append(prefix, '/')
}

func recordKey(runID uuid.UUID, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(runPrefix(runID), seq)
}

// Append logs one action at the end of the run's record sequence. Actions
// are stored in their printable form, since they are opaque to the engine.
func (l *ActionLog) Append(runID uuid.UUID, action game.Action) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		seq, err := countRecords(txn, runID)
		if err != nil {
			return err
		}
		record := Record{
			Step:     seq,
			Action:   fmt.Sprintf("%v", action),
			PlayedAt: time.Now().UTC(),
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(recordKey(runID, uint64(seq)), data)
	})
	if err != nil {
		return fmt.Errorf("failed to append action for run %s: %w", runID, err)
	}
	return nil
}

// Records returns a run's actions in play order. An unknown run yields an
// empty slice, not an error.
func (l *ActionLog) Records(runID uuid.UUID) ([]Record, error) {
	var records []Record
	err := l.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = runPrefix(runID)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record Record
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read records for run %s: %w", runID, err)
	}
	return records, nil
}

// Len returns the number of actions logged for a run.
func (l *ActionLog) Len(runID uuid.UUID) (int, error) {
	var count int
	err := l.db.View(func(txn *badger.Txn) error {
		var err error
		count, err = countRecords(txn, runID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count records for run %s: %w", runID, err)
	}
	return count, nil
}

func countRecords(txn *badger.Txn, runID uuid.UUID) (int, error) {
	options := badger.DefaultIteratorOptions
	options.Prefix = runPrefix(runID)
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	count := 0
	for it.Rewind(); it.Valid(); it.Next() {
		count++
	}
	return count, nil
}
