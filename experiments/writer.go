package experiments

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Writer persists experiment results as CSV files in a timestamped
// subfolder of its base directory.
type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	dir := filepath.Join(baseDir, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &Writer{baseDir: dir}, nil
}

// Dir returns the directory results are written into.
func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := [][]string{{"id", "simulations", "exploration"}}
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Simulations),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
		})
	}
	return w.writeFile("agent_configs.csv", rows)
}

func (w *Writer) WriteRunRecords(records []RunRecord) error {
	rows := [][]string{{"agent", "run", "turns", "reached_goal", "collected", "duration_ms"}}
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Run),
			strconv.Itoa(record.Turns),
			strconv.FormatBool(record.ReachedGoal),
			strconv.FormatFloat(record.Collected, 'f', -1, 64),
			strconv.FormatInt(record.Duration.Milliseconds(), 10),
		})
	}
	return w.writeFile("run_records.csv", rows)
}

func (w *Writer) writeFile(name string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cw.Flush()
	return cw.Error()
}
