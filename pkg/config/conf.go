package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SureOnThisShiningNight/openrank/pkg/score"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

// Config is the app configuration. The zero value of every field falls
// back to the engine's documented defaults.
type Config struct {
	// Weights parameterizes the scoring model. Omit to use the defaults.
	Weights score.Weights `yaml:"weights,omitempty"`

	// HalfLifeDays is the recency decay half-life.
	HalfLifeDays float64 `yaml:"half_life_days,omitempty"`

	// Workers sets the parallel scoring fan-out. 0 or 1 scores serially.
	Workers int `yaml:"workers,omitempty"`

	// Reference optionally fixes the normalization min/max per metric.
	// Without it stats are observed from each batch, which makes scores
	// comparable only within one run.
	Reference *Reference `yaml:"reference,omitempty"`
}

// Reference holds externally fixed normalization ranges. Magnitude metric
// ranges are in log1p space, matching what ComputeStats observes.
type Reference struct {
	Contributors  score.Range `yaml:"contributors"`
	Commits       score.Range `yaml:"commits"`
	Forks         score.Range `yaml:"forks"`
	Stars         score.Range `yaml:"stars"`
	IssueVelocity score.Range `yaml:"issueVelocity"`
	PRMergeRate   score.Range `yaml:"prMergeRate"`
}

// Stats binds the fixed ranges to a run's pinned clock.
func (r *Reference) Stats(now time.Time) score.Stats {
	return score.Stats{
		Now:           now.UTC(),
		Contributors:  r.Contributors,
		Commits:       r.Commits,
		Forks:         r.Forks,
		Stars:         r.Stars,
		IssueVelocity: r.IssueVelocity,
		PRMergeRate:   r.PRMergeRate,
	}
}

func getDefaultConfig() *Config {
	return &Config{
		Weights:      score.DefaultWeights(),
		HalfLifeDays: 90,
		Workers:      1,
	}
}

// Validate checks the parts the engine cannot default its way around.
func (c *Config) Validate() error {
	if c.Weights != (score.Weights{}) {
		if err := c.Weights.Validate(); err != nil {
			return err
		}
	}
	if c.HalfLifeDays < 0 {
		return fmt.Errorf("half_life_days %.2f must not be negative", c.HalfLifeDays)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must not be negative", c.Workers)
	}
	return nil
}

// Save writes the config into the given directory.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads the app config from the directory, creating the
// directory and a default config on first use.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("creating dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
	}

	return Read(path)
}

// Read loads and validates a config file.
func Read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &c, nil
}
