package searcher

import (
	"fmt"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the hyperparameters for one Search call. A single Config is
// built per call and shared read-only by every node in the tree.
type Config struct {
	// ExplorationConstant is C_p in the UCT formula.
	ExplorationConstant float64 `yaml:"exploration_constant" validate:"gt=0"`
	// NumSimulations is the iteration budget and the only bound on work.
	NumSimulations int `yaml:"num_simulations" validate:"gt=0"`
	// MaxSimulationDepth caps the number of moves played per rollout.
	MaxSimulationDepth int `yaml:"max_simulation_depth" validate:"gt=0"`
}

// DefaultConfig returns the standard hyperparameters: C_p = sqrt(2),
// 1000 simulations, rollouts cut off after 100 moves.
func DefaultConfig() Config {
	return Config{
		ExplorationConstant: math.Sqrt2,
		NumSimulations:      1000,
		MaxSimulationDepth:  100,
	}
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid search config: %w", err)
	}
	return nil
}

// LoadConfig reads a yaml config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
