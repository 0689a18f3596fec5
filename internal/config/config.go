package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/san-kum/galtonsim/internal/anim"
	"github.com/san-kum/galtonsim/internal/board"
	"github.com/san-kum/galtonsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLevels    = 7
	DefaultBalls     = 10
	DefaultProbRight = 0.5
	DefaultSpeed     = 1.0
	DefaultFrameRate = 60
	DefaultLogLevel  = "info"
)

type Config struct {
	Levels    int          `yaml:"levels"`
	Balls     int          `yaml:"balls"`
	ProbRight float64      `yaml:"prob_right"`
	Speed     float64      `yaml:"speed"`
	Seed      int64        `yaml:"seed"`
	FrameRate int          `yaml:"frame_rate"`
	Timing    TimingConfig `yaml:"timing"`
	Layout    board.Layout `yaml:"layout"`
	Log       LogConfig    `yaml:"log"`
}

// TimingConfig holds base durations in milliseconds, before the speed
// multiplier is applied.
type TimingConfig struct {
	PegMillis     int     `yaml:"peg_ms"`
	LandingMillis int     `yaml:"landing_ms"`
	BallMillis    int     `yaml:"ball_ms"`
	FallOffset    float64 `yaml:"fall_offset"`
	StartOpacity  float64 `yaml:"start_opacity"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Levels:    DefaultLevels,
		Balls:     DefaultBalls,
		ProbRight: DefaultProbRight,
		Speed:     DefaultSpeed,
		FrameRate: DefaultFrameRate,
		Timing: TimingConfig{
			PegMillis:     int(anim.DefaultPegInterval / time.Millisecond),
			LandingMillis: int(anim.DefaultLandingDuration / time.Millisecond),
			BallMillis:    int(anim.DefaultBallInterval / time.Millisecond),
			FallOffset:    anim.DefaultFallOffset,
			StartOpacity:  anim.DefaultStartOpacity,
		},
		Layout: board.DefaultLayout(),
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: "console",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Validate checks everything a simulation needs before any board is built.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Speed <= 0 {
		return &sim.ConfigurationError{Field: "speed", Value: c.Speed, Reason: "must be positive"}
	}
	if c.FrameRate <= 0 {
		return &sim.ConfigurationError{Field: "frame_rate", Value: c.FrameRate, Reason: "must be positive"}
	}
	if c.Timing.PegMillis < 0 || c.Timing.LandingMillis < 0 || c.Timing.BallMillis < 0 {
		return &sim.ConfigurationError{Field: "timing", Value: c.Timing, Reason: "durations must not be negative"}
	}
	if o := c.Timing.StartOpacity; math.IsNaN(o) || o < 0 || o > 1 {
		return &sim.ConfigurationError{Field: "start_opacity", Value: o, Reason: "must be within [0, 1]"}
	}
	if f := c.Timing.FallOffset; math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return &sim.ConfigurationError{Field: "fall_offset", Value: f, Reason: "must be finite and not negative"}
	}
	if c.Layout.XSpacing <= 0 || c.Layout.YSpacing <= 0 || c.Layout.GraphHeight <= 0 {
		return &sim.ConfigurationError{Field: "layout", Value: c.Layout, Reason: "spacings and graph height must be positive"}
	}
	if c.Layout.PegRadius < 0 || c.Layout.BallRadius < 0 {
		return &sim.ConfigurationError{Field: "layout", Value: c.Layout, Reason: "radii must not be negative"}
	}
	return nil
}

func (c *Config) Params() sim.Params {
	return sim.Params{
		Levels:    c.Levels,
		Balls:     c.Balls,
		ProbRight: c.ProbRight,
	}
}

func (c *Config) AnimTiming() anim.Timing {
	return anim.Timing{
		PegInterval:     time.Duration(c.Timing.PegMillis) * time.Millisecond,
		LandingDuration: time.Duration(c.Timing.LandingMillis) * time.Millisecond,
		BallInterval:    time.Duration(c.Timing.BallMillis) * time.Millisecond,
		FallOffset:      c.Timing.FallOffset,
		StartOpacity:    c.Timing.StartOpacity,
		Speed:           c.Speed,
	}
}

// Frame is the scheduler step implied by FrameRate.
func (c *Config) Frame() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Apply copies a preset's board parameters over c.
func (c *Config) Apply(p *Config) {
	c.Levels = p.Levels
	c.Balls = p.Balls
	c.ProbRight = p.ProbRight
	if p.Speed > 0 {
		c.Speed = p.Speed
	}
}
