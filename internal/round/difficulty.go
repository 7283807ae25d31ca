// Package round implements the round lifecycle of the drop catching game:
// difficulty lookup, scoring, milestones, the countdown clock, drop spawning
// and the controller that ties them together.
//
// The package has no knowledge of terminals, audio or persistence formats.
// Everything it wants the outside world to know is published as an Event.
package round

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Difficulty names.
const (
	Easy   = "easy"
	Normal = "normal"
	Hard   = "hard"
)

// DifficultyConfig holds the tunables for one difficulty level.
type DifficultyConfig struct {
	Name                string
	Duration            int     // Round length in seconds
	SpawnInterval       int     // Milliseconds between drops
	DirtyProbability    float64 // Chance in [0,1] that a drop is dirty
	FallSpeedMultiplier float64 // Divides the base fall duration
	PenaltySeconds      int     // Seconds removed per dirty drop
	Goal                int     // Score needed to win
}

// SpawnEvery returns the spawn interval as a duration.
func (c DifficultyConfig) SpawnEvery() time.Duration {
	return time.Duration(c.SpawnInterval) * time.Millisecond
}

func (c DifficultyConfig) validate() error {
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("%s: duration must be positive, got %d", c.Name, c.Duration)
	case c.SpawnInterval <= 0:
		return fmt.Errorf("%s: spawnInterval must be positive, got %d", c.Name, c.SpawnInterval)
	case c.DirtyProbability < 0 || c.DirtyProbability > 1:
		return fmt.Errorf("%s: dirtyProbability must be in [0,1], got %v", c.Name, c.DirtyProbability)
	case c.FallSpeedMultiplier <= 0:
		return fmt.Errorf("%s: fallSpeedMultiplier must be positive, got %v", c.Name, c.FallSpeedMultiplier)
	case c.PenaltySeconds < 0:
		return fmt.Errorf("%s: penaltySeconds must not be negative, got %d", c.Name, c.PenaltySeconds)
	case c.Goal <= 0:
		return fmt.Errorf("%s: goal must be positive, got %d", c.Name, c.Goal)
	}
	return nil
}

// names is the fixed display order of the difficulties.
var names = []string{Easy, Normal, Hard}

// Names returns the supported difficulty names from easiest to hardest.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Table maps difficulty names to their configuration.
// A Table is built once at process start and never modified afterwards.
type Table struct {
	configs map[string]DifficultyConfig
}

// DefaultTable returns the built-in difficulty values.
func DefaultTable() Table {
	return Table{configs: map[string]DifficultyConfig{
		Easy: {
			Name: Easy, Duration: 45, SpawnInterval: 1100, DirtyProbability: 0.12,
			FallSpeedMultiplier: 0.85, PenaltySeconds: 1, Goal: 12,
		},
		Normal: {
			Name: Normal, Duration: 30, SpawnInterval: 900, DirtyProbability: 0.22,
			FallSpeedMultiplier: 1.00, PenaltySeconds: 2, Goal: 20,
		},
		Hard: {
			Name: Hard, Duration: 20, SpawnInterval: 700, DirtyProbability: 0.34,
			FallSpeedMultiplier: 1.25, PenaltySeconds: 3, Goal: 28,
		},
	}}
}

// Get returns the configuration for name.
func (t Table) Get(name string) (DifficultyConfig, error) {
	cfg, ok := t.configs[name]
	if !ok {
		return DifficultyConfig{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
	}
	return cfg, nil
}

// difficultyOverride is one entry of a difficulty file. Absent fields keep the default.
type difficultyOverride struct {
	Duration            *int     `yaml:"duration"`
	SpawnInterval       *int     `yaml:"spawnInterval"`
	DirtyProbability    *float64 `yaml:"dirtyProbability"`
	FallSpeedMultiplier *float64 `yaml:"fallSpeedMultiplier"`
	PenaltySeconds      *int     `yaml:"penaltySeconds"`
	Goal                *int     `yaml:"goal"`
}

type tableFile struct {
	Difficulties map[string]difficultyOverride `yaml:"difficulties"`
}

// LoadTable reads a YAML difficulty file and applies it on top of DefaultTable.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read difficulty file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable applies YAML difficulty overrides on top of DefaultTable.
func ParseTable(data []byte) (Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Table{}, fmt.Errorf("failed to parse difficulty YAML: %w", err)
	}

	table := DefaultTable()
	for name, o := range file.Difficulties {
		cfg, err := table.Get(name)
		if err != nil {
			return Table{}, err
		}
		if o.Duration != nil {
			cfg.Duration = *o.Duration
		}
		if o.SpawnInterval != nil {
			cfg.SpawnInterval = *o.SpawnInterval
		}
		if o.DirtyProbability != nil {
			cfg.DirtyProbability = *o.DirtyProbability
		}
		if o.FallSpeedMultiplier != nil {
			cfg.FallSpeedMultiplier = *o.FallSpeedMultiplier
		}
		if o.PenaltySeconds != nil {
			cfg.PenaltySeconds = *o.PenaltySeconds
		}
		if o.Goal != nil {
			cfg.Goal = *o.Goal
		}
		if err := cfg.validate(); err != nil {
			return Table{}, fmt.Errorf("invalid difficulty config: %w", err)
		}
		table.configs[name] = cfg
	}
	return table, nil
}
