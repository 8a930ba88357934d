package leaderswarm

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// A Range is a closed interval of floats.
type Range struct {
	Min float64
	Max float64
}

// sample draws uniformly from the range.
func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + (r.Max-r.Min)*rng.Float64()
}

// A Spawn describes how the initial flock is drawn.
type Spawn struct {
	Size    int     // number of agents
	Leaders int     // number of leader draws
	Mass    float64 // mass of every agent

	// DistinctLeaders draws leaders without replacement so that exactly
	// min(Leaders, Size) agents start leading. When false, each draw is
	// independent and the same agent may be drawn twice.
	DistinctLeaders bool

	PosX, PosY, PosZ Range // initial position ranges
	VelX, VelY, VelZ Range // initial velocity ranges
}

// DefaultSpawn is a flock of 50 birds entering the arena along +Z.
var DefaultSpawn = Spawn{
	Size:    50,
	Leaders: 4,
	Mass:    0.5,
	PosX:    Range{0, 100},
	PosY:    Range{30, 70},
	PosZ:    Range{30, 60},
	VelX:    Range{5, 10},
	VelY:    Range{5, 10},
	VelZ:    Range{10, 25},
}

// Populate draws a flock from rng.
func Populate(sp Spawn, rng *rand.Rand) ([]Agent, error) {
	switch {
	case sp.Size < 0:
		return nil, fmt.Errorf("swarm size %d is negative: %w", sp.Size, ErrInvalidConfig)
	case sp.Leaders < 0:
		return nil, fmt.Errorf("leader count %d is negative: %w", sp.Leaders, ErrInvalidConfig)
	case !(sp.Mass > 0):
		return nil, fmt.Errorf("mass %v must be positive: %w", sp.Mass, ErrInvalidConfig)
	}

	agents := make([]Agent, sp.Size)
	for i := range agents {
		pos := Vec3{X: sp.PosX.sample(rng), Y: sp.PosY.sample(rng), Z: sp.PosZ.sample(rng)}
		vel := Vec3{X: sp.VelX.sample(rng), Y: sp.VelY.sample(rng), Z: sp.VelZ.sample(rng)}
		agents[i] = Agent{
			ID:      i,
			Pos:     pos,
			PrevPos: pos,
			Vel:     vel,
			PrevVel: vel,
			Mass:    sp.Mass,
		}
	}
	for _, i := range SampleLeaders(sp.Size, sp.Leaders, sp.DistinctLeaders, rng) {
		agents[i].Role = Leader
	}
	return agents, nil
}

// SampleLeaders draws count agent indices in [0, n).
// With distinct set the indices are all different and at most n are
// returned, otherwise they are drawn independently and may repeat.
func SampleLeaders(n, count int, distinct bool, rng *rand.Rand) []int {
	if n <= 0 || count <= 0 {
		return nil
	}
	if !distinct {
		out := make([]int, count)
		for k := range out {
			out[k] = rng.Intn(n)
		}
		return out
	}
	return rng.Perm(n)[:min(count, n)]
}
