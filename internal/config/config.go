package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadlab/internal/grid"
	"github.com/san-kum/quadlab/internal/quad"
)

const (
	DefaultMaxIterations = 20
	DefaultInitialNStep  = 2
	DefaultMaxError      = 0.1
)

type Config struct {
	Field               string     `yaml:"field"`
	X                   AxisConfig `yaml:"x"`
	Y                   AxisConfig `yaml:"y"`
	MaxIterations       int        `yaml:"max-iterations"`
	InitialNStep        int        `yaml:"initial-nstep"`
	MaxError            float64    `yaml:"max-error"`
	InLoge              bool       `yaml:"in-loge"`
	FastDensityIncrease bool       `yaml:"fast-density-increase"`
}

type AxisConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxIterations: DefaultMaxIterations,
		InitialNStep:  DefaultInitialNStep,
		MaxError:      DefaultMaxError,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.MaxIterations < 2 {
		return fmt.Errorf("max-iterations must be at least 2, got %d", c.MaxIterations)
	}
	if c.InitialNStep < 1 {
		return fmt.Errorf("initial-nstep must be at least 1, got %d", c.InitialNStep)
	}
	if c.MaxError <= 0 {
		return fmt.Errorf("max-error must be positive, got %g", c.MaxError)
	}
	for name, a := range map[string]AxisConfig{"x": c.X, "y": c.Y} {
		if !(a.Min < a.Max) {
			return fmt.Errorf("%s axis bounds [%g, %g] are not an interval", name, a.Min, a.Max)
		}
		if c.InLoge && a.Min <= 0 {
			return fmt.Errorf("in-loge requires positive %s bounds, got min=%g", name, a.Min)
		}
	}
	return nil
}

// Options maps the recognized integrator settings onto quad.Options.
func (c *Config) Options() quad.Options {
	return quad.Options{
		MaxIterations:       c.MaxIterations,
		InitialNStep:        c.InitialNStep,
		MaxError:            c.MaxError,
		InLoge:              c.InLoge,
		FastDensityIncrease: c.FastDensityIncrease,
	}
}

func (c *Config) XRange() grid.Range { return grid.Range{Min: c.X.Min, Max: c.X.Max} }
func (c *Config) YRange() grid.Range { return grid.Range{Min: c.Y.Min, Max: c.Y.Max} }
