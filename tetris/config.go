package tetris

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the playfield dimensions and speeds the game loop runs with.
type Config struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	CellSize int `yaml:"cell_size"` // pixels per cell in the window front end

	// FallInterval is how long the accumulator runs before gravity moves the piece.
	FallInterval time.Duration `yaml:"fall_interval"`
	FallStep     int           `yaml:"fall_step"`
	DropStep     int           `yaml:"drop_step"`

	SpawnColumn int    `yaml:"spawn_column"`
	Seed        uint64 `yaml:"seed"` // 0 seeds from the clock
}

func DefaultConfig() Config {
	return Config{
		Width:        10,
		Height:       20,
		CellSize:     30,
		FallInterval: 500 * time.Millisecond,
		FallStep:     1,
		DropStep:     1,
		SpawnColumn:  4,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Width < 4 || c.Height < 4:
		return fmt.Errorf("%w: grid %dx%d is smaller than 4x4", ErrInvalidConfig, c.Width, c.Height)
	case c.CellSize <= 0:
		return fmt.Errorf("%w: cell size %d", ErrInvalidConfig, c.CellSize)
	case c.FallInterval <= 0:
		return fmt.Errorf("%w: fall interval %v", ErrInvalidConfig, c.FallInterval)
	case c.FallStep <= 0 || c.DropStep <= 0:
		return fmt.Errorf("%w: fall step %d, drop step %d", ErrInvalidConfig, c.FallStep, c.DropStep)
	case c.SpawnColumn < 0 || c.SpawnColumn+4 > c.Width:
		return fmt.Errorf("%w: spawn column %d leaves no room for a 4 block piece in %d columns", ErrInvalidConfig, c.SpawnColumn, c.Width)
	}
	return nil
}

// ScreenSize returns the window size in pixels.
func (c Config) ScreenSize() (int, int) {
	return c.Width * c.CellSize, c.Height * c.CellSize
}

// LoadConfig reads a yaml file on top of DefaultConfig. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}
