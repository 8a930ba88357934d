package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/PrincetonUniversity/leaderswarm"
	"github.com/PrincetonUniversity/leaderswarm/hdf5"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// run sets up the simulation described by conf and drives it to the end,
// recording to HDF5 when an output path is configured.
func run(ctx context.Context, conf *Config, log *slog.Logger, progress io.Writer) error {
	id := uuid.NewString()
	log = log.With("run", id)

	sim, err := setup(conf, log)
	if err != nil {
		return err
	}
	sched := &scheduler{changes: conf.Schedule, params: sim.Params(), log: log}

	step := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sched.apply(sim.Time()); err != nil {
			return err
		}
		sim.Step(conf.Dt)
		return nil
	}

	start := time.Now()
	if conf.Output == "" {
		err = runHeadless(sim, conf, log, step)
	} else {
		log.Info("recording", "output", conf.Output, "frames", conf.Steps)
		err = hdf5.Run(sim, &hdf5.Config{
			Output: conf.Output,
			Steps:  conf.Steps,
			Step:   step,
			RunID:  id,
			Datasets: []*hdf5.Dataset{
				hdf5.AgentsDataset(sim.Len()),
				hdf5.TimeDataset(),
			},
			Attrs:    conf,
			Progress: progress,
		})
	}
	if err != nil {
		return err
	}
	log.Info("done",
		"ticks", sim.Ticks(),
		"time", sim.Time(),
		"leaders", sim.Leaders(),
		"elapsed", time.Since(start))
	return nil
}

// setup draws the initial flock and builds the simulation.
func setup(conf *Config, log *slog.Logger) (*leaderswarm.Simulation, error) {
	if conf.Seed == 0 {
		// recorded with the run so it can be replayed
		conf.Seed = uint64(time.Now().UnixNano())
	}
	log.Info("seeding", "seed", conf.Seed)

	rng := rand.New(rand.NewSource(conf.Seed))
	agents, err := leaderswarm.Populate(conf.Spawn(), rng)
	if err != nil {
		return nil, err
	}
	params, err := leaderswarm.NewParameterSet(conf.Params())
	if err != nil {
		return nil, err
	}
	return leaderswarm.New(agents, conf.World(), params,
		leaderswarm.WithBehavior(conf.Behavior()),
		leaderswarm.WithRand(rng),
		leaderswarm.WithWorkers(conf.Workers),
		leaderswarm.WithLogger(log))
}

// runHeadless steps the simulation and logs a progress line every tenth of the run.
func runHeadless(sim *leaderswarm.Simulation, conf *Config, log *slog.Logger, step func() error) error {
	every := max(conf.Steps/10, 1)
	for k := 1; k <= conf.Steps; k++ {
		if err := step(); err != nil {
			return err
		}
		if k%every == 0 {
			log.Info("progress",
				"percent", 100*k/conf.Steps,
				"time", sim.Time(),
				"leaders", sim.Leaders())
		}
	}
	return nil
}

// A scheduler applies timed coefficient changes to a live parameter set,
// standing in for an operator moving sliders.
type scheduler struct {
	changes []Change // sorted by At
	next    int
	params  *leaderswarm.ParameterSet
	log     *slog.Logger
}

// apply performs every change due at time now.
func (s *scheduler) apply(now float64) error {
	for ; s.next < len(s.changes) && s.changes[s.next].At <= now; s.next++ {
		ch := s.changes[s.next]
		p := s.params.Load()
		if err := ch.apply(&p); err != nil {
			return fmt.Errorf("schedule at %v: %w", ch.At, err)
		}
		if err := s.params.Store(p); err != nil {
			return err
		}
		s.log.Info("parameters changed",
			"time", now,
			"gravity", p.Gravity,
			"repulsion", p.Repulsion,
			"attraction", p.Attraction,
			"alignment", p.Alignment)
	}
	return nil
}
