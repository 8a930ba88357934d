// Package leaderswarm runs leader/follower flocking simulations in 3D.
//
// A fixed number of agents fly through a bounded world dotted with static
// obstacles. Followers are repelled by, attracted to and aligned with their
// nearest neighbors. A few agents lead for a limited time: they ignore
// attraction and alignment and hand the role over when they expire or lose
// touch with the flock. Everyone steers around obstacles ahead of them.
//
// The caller drives the simulation with Step and reads agents back with
// AgentState, typically once per rendered frame.
package leaderswarm

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// An Environment contains all the parameters relative to the world.
type Environment struct {
	// Gravity is the vertical acceleration applied when gravity is enabled.
	// Negative values pull toward -Y.
	Gravity float64

	// Thrust is a constant force pushing every agent along the travel axis.
	Thrust Vec3

	// MaxSpeed caps the magnitude of each velocity component.
	MaxSpeed float64

	// Bounds is the box agents are confined to. Agents reaching a face
	// bounce off it.
	Bounds r3.Box
}

// Behavior contains all the parameters relative to the rules followed by agents.
type Behavior struct {
	Neighbors int     // number of nearest neighbors an agent reacts to
	Epsilon   float64 // softening of the repulsion at zero distance

	MaxLeaderTime float64 // longest time an agent may lead
	MaxSeparation float64 // a leader farther than this from its nearest neighbor steps down
	Refractory    float64 // cooldown after stepping down before leading again

	LookAhead       float64 // obstacles reached later than this, in seconds, are ignored
	AvoidRadius     float64 // clearance kept from obstacles
	SteerGain       float64 // strength of obstacle steering
	MinApproachTime float64 // lower bound on the time to closest approach
}

// DefaultEnvironment is a 400×400×50 arena with Earth gravity and thrust along +Z.
var DefaultEnvironment = Environment{
	Gravity:  -9.8,
	Thrust:   Vec3{Z: 10},
	MaxSpeed: 20,
	Bounds: r3.Box{
		Min: Vec3{X: -200, Y: -200, Z: 0},
		Max: Vec3{X: 200, Y: 200, Z: 50},
	},
}

// DefaultBehavior are the default flocking rules.
var DefaultBehavior = Behavior{
	Neighbors:       4,
	Epsilon:         0.01,
	MaxLeaderTime:   20,
	MaxSeparation:   30,
	Refractory:      90,
	LookAhead:       12,
	AvoidRadius:     20,
	SteerGain:       4,
	MinApproachTime: 0.1,
}

// ErrInvalidConfig is returned by New when the simulation cannot be built.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Validate checks the environment for values the integrator cannot handle.
func (e Environment) Validate() error {
	switch {
	case !(e.MaxSpeed > 0):
		return fmt.Errorf("max speed %v must be positive: %w", e.MaxSpeed, ErrInvalidConfig)
	case e.Bounds.Min.X > e.Bounds.Max.X, e.Bounds.Min.Y > e.Bounds.Max.Y, e.Bounds.Min.Z > e.Bounds.Max.Z:
		return fmt.Errorf("bounds %v are empty: %w", e.Bounds, ErrInvalidConfig)
	}
	return nil
}

// Validate checks the behavior for values the force model cannot handle.
func (b Behavior) Validate() error {
	switch {
	case b.Neighbors < 1:
		return fmt.Errorf("neighbor count %d must be at least 1: %w", b.Neighbors, ErrInvalidConfig)
	case !(b.Epsilon > 0):
		return fmt.Errorf("epsilon %v must be positive: %w", b.Epsilon, ErrInvalidConfig)
	case b.MaxLeaderTime < 0, b.MaxSeparation < 0, b.Refractory < 0:
		return fmt.Errorf("leader timings must not be negative: %w", ErrInvalidConfig)
	case b.LookAhead < 0, b.AvoidRadius < 0, b.SteerGain < 0:
		return fmt.Errorf("steering parameters must not be negative: %w", ErrInvalidConfig)
	case !(b.MinApproachTime > 0):
		return fmt.Errorf("min approach time %v must be positive: %w", b.MinApproachTime, ErrInvalidConfig)
	}
	return nil
}

// An AgentState is what a renderer needs to draw an agent.
type AgentState struct {
	Position Vec3
	Velocity Vec3
	Role     Role
	WingBeat float64 // flapping animation speed, see WingBeatRate
}

// A Simulation contains all the state and parameters of a simulation.
type Simulation struct {
	Env      Environment
	Behavior Behavior

	store      *AgentStore
	obstacles  *ObstacleRegistry
	params     *ParameterSet
	finder     NeighborFinder
	scheduler  *LeaderScheduler
	forces     ForceModel
	integrator Integrator
	log        *slog.Logger

	// mu guards what readers may observe while a step runs:
	// the committed generation, the clock and the last transitions
	mu      sync.RWMutex
	now     float64
	ticks   uint64
	events  []Transition
	pending []Transition

	neighbors [][]NeighborRecord
	acc       []Vec3
}

// An Option configures a Simulation.
type Option func(*options)

type options struct {
	env     Environment
	behav   Behavior
	rng     *rand.Rand
	workers int
	log     *slog.Logger
}

// WithEnvironment replaces DefaultEnvironment.
func WithEnvironment(e Environment) Option {
	return func(o *options) { o.env = e }
}

// WithBehavior replaces DefaultBehavior.
func WithBehavior(b Behavior) Option {
	return func(o *options) { o.behav = b }
}

// WithSeed seeds the generator used to pick replacement leaders.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand sets the generator used to pick replacement leaders.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithWorkers bounds the number of goroutines used by the neighbor search
// and the force computation. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the logger. Role transitions are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New returns a simulation of the given agents among the given obstacles.
// The agents and obstacles are copied. params is shared with the caller,
// who may change it at any time; a nil params uses DefaultParams.
func New(agents []Agent, obstacles []Obstacle, params *ParameterSet, opts ...Option) (*Simulation, error) {
	o := options{env: DefaultEnvironment, behav: DefaultBehavior}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(1))
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}
	if err := o.env.Validate(); err != nil {
		return nil, err
	}
	if err := o.behav.Validate(); err != nil {
		return nil, err
	}
	for i, a := range agents {
		switch {
		case !(a.Mass > 0):
			return nil, fmt.Errorf("agent %d has mass %v: %w", i, a.Mass, ErrInvalidConfig)
		case !finite(a.Pos), !finite(a.Vel):
			return nil, fmt.Errorf("agent %d at %v moving %v: %w", i, a.Pos, a.Vel, ErrInvalidConfig)
		}
	}
	for i, o := range obstacles {
		if !finite(o.Pos) || !finite(o.Size) || o.Size.X < 0 || o.Size.Y < 0 || o.Size.Z < 0 {
			return nil, fmt.Errorf("obstacle %d at %v with size %v: %w", i, o.Pos, o.Size, ErrInvalidConfig)
		}
	}
	if params == nil {
		var err error
		if params, err = NewParameterSet(DefaultParams); err != nil {
			return nil, err
		}
	}

	s := &Simulation{
		Env:        o.env,
		Behavior:   o.behav,
		store:      NewAgentStore(agents),
		obstacles:  NewObstacleRegistry(obstacles),
		params:     params,
		finder:     NeighborFinder{M: o.behav.Neighbors, Workers: o.workers},
		scheduler:  NewLeaderScheduler(o.behav, o.rng),
		forces:     ForceModel{Env: o.env, Behavior: o.behav, Workers: o.workers},
		integrator: Integrator{MaxSpeed: o.env.MaxSpeed, Bounds: o.env.Bounds},
		log:        o.log,
	}
	s.log.Info("simulation ready",
		"agents", s.store.Len(),
		"leaders", s.Leaders(),
		"obstacles", s.obstacles.Len())
	return s, nil
}

// Step advances all agents by dt seconds.
//
// The tick runs in phases: neighbor search, leader rotation, forces and
// integration all read the generation committed by the previous step, and
// the new generation is published at once at the end. Step must not be
// called concurrently with itself. It panics if dt is negative or not finite.
func (s *Simulation) Step(dt float64) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		panic(fmt.Sprintf("leaderswarm: invalid time step %v", dt))
	}
	now := s.now + dt
	p := s.params.Load()
	snap := s.store.Snapshot()
	next := s.store.Begin()

	s.neighbors = s.finder.Find(snap, s.neighbors)
	events := s.scheduler.Update(now, snap, next, s.neighbors, s.pending[:0])
	s.acc = s.forces.Accelerations(p, snap, next, s.neighbors, s.obstacles, s.acc)
	s.integrator.Apply(snap, next, s.acc, dt)

	for i := range next {
		if !s.integrator.validSpeed(next[i].Vel) {
			panic(fmt.Sprintf("leaderswarm: agent %d left the speed cap with velocity %v", i, next[i].Vel))
		}
	}

	s.mu.Lock()
	s.store.Commit()
	s.now = now
	s.ticks++
	s.pending, s.events = s.events, events
	s.mu.Unlock()

	for _, e := range events {
		s.log.Debug("role transition",
			"agent", e.Agent,
			"from", e.From,
			"to", e.To,
			"reason", e.Reason,
			"time", e.At)
	}
}

// AgentState returns the committed state of agent id.
// It panics if id is out of range.
func (s *Simulation) AgentState(id int) AgentState {
	s.mu.RLock()
	a := s.store.At(id)
	s.mu.RUnlock()
	return AgentState{
		Position: a.Pos,
		Velocity: a.Vel,
		Role:     a.Role,
		WingBeat: WingBeatRate(a.Vel.Z),
	}
}

// Agents appends a copy of every committed agent to dst.
func (s *Simulation) Agents(dst []Agent) []Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(dst, s.store.Snapshot()...)
}

// Len returns the number of agents.
func (s *Simulation) Len() int {
	return s.store.Len()
}

// Time returns the simulated time elapsed so far.
func (s *Simulation) Time() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

// Ticks returns the number of completed steps.
func (s *Simulation) Ticks() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}

// Transitions returns the role changes of the last step.
func (s *Simulation) Transitions() []Transition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Transition(nil), s.events...)
}

// Leaders returns the number of agents currently leading.
func (s *Simulation) Leaders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.store.Snapshot() {
		if a.Role == Leader {
			n++
		}
	}
	return n
}

// Params returns the parameter set shared with the controller.
func (s *Simulation) Params() *ParameterSet {
	return s.params
}

// Obstacles returns the obstacle registry.
func (s *Simulation) Obstacles() *ObstacleRegistry {
	return s.obstacles
}
