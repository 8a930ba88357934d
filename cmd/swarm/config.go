package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/PrincetonUniversity/leaderswarm"
	"gopkg.in/yaml.v3"
)

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Output is either a filename (path) for the HDF5 output file,
	// or the empty string for a headless run that only logs.
	Output   string `toml:"output" yaml:"output"`
	LogLevel string `toml:"log_level" yaml:"log_level"` // debug, info, warn or error

	SwarmSize       int     `toml:"swarm_size" yaml:"swarm_size"`             // number of agents
	Leaders         int     `toml:"leaders" yaml:"leaders"`                   // number of initial leader draws
	DistinctLeaders bool    `toml:"distinct_leaders" yaml:"distinct_leaders"` // draw leaders without replacement
	Mass            float64 `toml:"mass" yaml:"mass"`                         // mass of every agent
	Steps           int     `toml:"steps" yaml:"steps"`                       // number of time steps
	Dt              float64 `toml:"dt" yaml:"dt"`                             // duration of time steps, unit: s
	Seed            uint64  `toml:"seed" yaml:"seed"`                         // 0 picks a seed from the clock
	Workers         int     `toml:"workers" yaml:"workers"`                   // 0 uses every CPU

	// Flocking coefficients, all in [0, 100]
	Gravity    bool    `toml:"gravity" yaml:"gravity"`
	Repulsion  float64 `toml:"repulsion" yaml:"repulsion"`
	Attraction float64 `toml:"attraction" yaml:"attraction"`
	Alignment  float64 `toml:"alignment" yaml:"alignment"`

	// Leadership parameters
	Neighbors     int     `toml:"neighbors" yaml:"neighbors"`           // nearest neighbors per agent
	MaxLeaderTime float64 `toml:"max_leader_time" yaml:"max_leader_time"` // unit: s
	MaxSeparation float64 `toml:"max_separation" yaml:"max_separation"` // unit: m
	Refractory    float64 `toml:"refractory" yaml:"refractory"`         // unit: s

	// DefaultObstacles adds the built-in pillars and walls to Obstacles.
	DefaultObstacles bool           `toml:"default_obstacles" yaml:"default_obstacles"`
	Obstacles        []ObstacleConf `toml:"obstacles" yaml:"obstacles"`

	// Schedule lists coefficient changes applied while the simulation runs.
	Schedule []Change `toml:"schedule" yaml:"schedule"`
}

// ObstacleConf describes a box obstacle.
type ObstacleConf struct {
	Pos  [3]float64 `toml:"pos" yaml:"pos"`   // center
	Size [3]float64 `toml:"size" yaml:"size"` // full extent
}

// A Change updates some coefficients once the simulated time reaches At.
// Unset fields are left alone.
type Change struct {
	At         float64  `toml:"at" yaml:"at"`
	Gravity    *bool    `toml:"gravity" yaml:"gravity"`
	Repulsion  *float64 `toml:"repulsion" yaml:"repulsion"`
	Attraction *float64 `toml:"attraction" yaml:"attraction"`
	Alignment  *float64 `toml:"alignment" yaml:"alignment"`
}

// DefaultConf returns the default parameters.
func DefaultConf() *Config {
	p, b, sp := leaderswarm.DefaultParams, leaderswarm.DefaultBehavior, leaderswarm.DefaultSpawn
	return &Config{
		LogLevel:         "info",
		SwarmSize:        sp.Size,
		Leaders:          sp.Leaders,
		Mass:             sp.Mass,
		Steps:            3000,
		Dt:               0.02,
		Seed:             1,
		Gravity:          p.Gravity,
		Repulsion:        p.Repulsion,
		Attraction:       p.Attraction,
		Alignment:        p.Alignment,
		Neighbors:        b.Neighbors,
		MaxLeaderTime:    b.MaxLeaderTime,
		MaxSeparation:    b.MaxSeparation,
		Refractory:       b.Refractory,
		DefaultObstacles: true,
	}
}

// ParseConfig parses the TOML or YAML config file whose path is provided.
// The format is chosen from the file extension.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := DefaultConf()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, conf)
		if err != nil {
			return nil, err
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("%s: unknown key %q", path, keys[0].String())
		}
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(conf); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// Validate checks the configuration and sorts the schedule by time.
func (c *Config) Validate() error {
	switch {
	case c.Steps < 0:
		return fmt.Errorf("steps = %d is negative: %w", c.Steps, leaderswarm.ErrInvalidConfig)
	case !(c.Dt > 0):
		return fmt.Errorf("dt = %v must be positive: %w", c.Dt, leaderswarm.ErrInvalidConfig)
	case c.SwarmSize < 0:
		return fmt.Errorf("swarm_size = %d is negative: %w", c.SwarmSize, leaderswarm.ErrInvalidConfig)
	case c.Leaders < 0:
		return fmt.Errorf("leaders = %d is negative: %w", c.Leaders, leaderswarm.ErrInvalidConfig)
	case !(c.Mass > 0):
		return fmt.Errorf("mass = %v must be positive: %w", c.Mass, leaderswarm.ErrInvalidConfig)
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if err := c.Behavior().Validate(); err != nil {
		return err
	}
	for _, ch := range c.Schedule {
		if err := ch.apply(&leaderswarm.Params{}); err != nil {
			return fmt.Errorf("schedule at %v: %w", ch.At, err)
		}
	}
	slices.SortStableFunc(c.Schedule, func(a, b Change) int { return cmp.Compare(a.At, b.At) })
	return nil
}

// Spawn returns how the initial flock is drawn.
func (c *Config) Spawn() leaderswarm.Spawn {
	sp := leaderswarm.DefaultSpawn
	sp.Size = c.SwarmSize
	sp.Leaders = c.Leaders
	sp.Mass = c.Mass
	sp.DistinctLeaders = c.DistinctLeaders
	return sp
}

// Params returns the initial flocking coefficients.
func (c *Config) Params() leaderswarm.Params {
	return leaderswarm.Params{
		Gravity:    c.Gravity,
		Repulsion:  c.Repulsion,
		Attraction: c.Attraction,
		Alignment:  c.Alignment,
	}
}

// Behavior returns the leadership parameters on top of the default steering.
func (c *Config) Behavior() leaderswarm.Behavior {
	b := leaderswarm.DefaultBehavior
	b.Neighbors = c.Neighbors
	b.MaxLeaderTime = c.MaxLeaderTime
	b.MaxSeparation = c.MaxSeparation
	b.Refractory = c.Refractory
	return b
}

// World returns the obstacles of the arena.
func (c *Config) World() []leaderswarm.Obstacle {
	var obs []leaderswarm.Obstacle
	if c.DefaultObstacles {
		obs = leaderswarm.DefaultObstacles()
	}
	for _, o := range c.Obstacles {
		obs = append(obs, leaderswarm.Obstacle{
			Pos:  leaderswarm.Vec3{X: o.Pos[0], Y: o.Pos[1], Z: o.Pos[2]},
			Size: leaderswarm.Vec3{X: o.Size[0], Y: o.Size[1], Z: o.Size[2]},
		})
	}
	return obs
}

// apply writes the change into p and validates the result.
func (ch Change) apply(p *leaderswarm.Params) error {
	if ch.Gravity != nil {
		p.Gravity = *ch.Gravity
	}
	if ch.Repulsion != nil {
		p.Repulsion = *ch.Repulsion
	}
	if ch.Attraction != nil {
		p.Attraction = *ch.Attraction
	}
	if ch.Alignment != nil {
		p.Alignment = *ch.Alignment
	}
	return p.Validate()
}
