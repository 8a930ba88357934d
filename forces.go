package leaderswarm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Fixed gains applied on top of the user coefficients.
const (
	repulsionGain  = 2.5
	attractionGain = 0.5
)

// A ForceModel computes the net force acting on each agent.
type ForceModel struct {
	Env      Environment
	Behavior Behavior
	Workers  int // maximum number of agents processed concurrently
}

// Accelerations computes the acceleration of every agent into dst.
// Positions and velocities come from snap, roles from next so that
// transitions decided earlier in the tick are honored.
func (f *ForceModel) Accelerations(p Params, snap, next []Agent, neighbors [][]NeighborRecord, obstacles *ObstacleRegistry, dst []Vec3) []Vec3 {
	if cap(dst) < len(snap) {
		dst = make([]Vec3, len(snap))
	}
	dst = dst[:len(snap)]
	parallelFor(len(snap), f.Workers, func(i int) {
		a := &snap[i]
		F := f.Force(p, a, next[i].Role, neighbors[i], obstacles)
		dst[i] = r3.Scale(1/a.Mass, F)
	})
	return dst
}

// Force returns the net force on agent a playing the given role.
// Leaders are not pulled toward the flock: they only feel repulsion,
// gravity, obstacle steering and thrust.
func (f *ForceModel) Force(p Params, a *Agent, role Role, nbrs []NeighborRecord, obstacles *ObstacleRegistry) Vec3 {
	rep := f.Repulsion(p, a.Pos, nbrs)
	g := f.Gravity(p, a.Mass)
	steer := f.Steering(a.Pos, a.Vel, obstacles)

	if role == Leader {
		F := r3.Add(rep, g)
		F = r3.Add(F, steer)
		return r3.Add(F, f.Env.Thrust)
	}

	F := r3.Add(rep, f.Attraction(p, a.Pos, nbrs))
	F = r3.Add(F, g)
	F = r3.Add(F, f.Alignment(p, a.Vel, nbrs))
	F = r3.Add(F, f.Env.Thrust)
	return r3.Add(F, steer)
}

// Gravity returns the weight of a body of mass m, or zero when gravity is off.
func (f *ForceModel) Gravity(p Params, m float64) Vec3 {
	if !p.Gravity {
		return Vec3{}
	}
	return Vec3{Y: m * f.Env.Gravity}
}

// Repulsion pushes an agent at x away from its neighbors with a strength
// that decays as the inverse distance. Epsilon keeps it finite when two
// agents coincide.
func (f *ForceModel) Repulsion(p Params, x Vec3, nbrs []NeighborRecord) Vec3 {
	var sum Vec3
	for _, n := range nbrs {
		d := r3.Sub(n.Pos, x)
		sum = r3.Add(sum, r3.Scale(1/(r3.Norm2(d)+f.Behavior.Epsilon), d))
	}
	return r3.Scale(-p.Repulsion*repulsionGain, sum)
}

// Attraction pulls an agent at x toward its neighbors.
func (f *ForceModel) Attraction(p Params, x Vec3, nbrs []NeighborRecord) Vec3 {
	var sum Vec3
	for _, n := range nbrs {
		sum = r3.Add(sum, r3.Sub(n.Pos, x))
	}
	return r3.Scale(p.Attraction*attractionGain, sum)
}

// Alignment pulls the velocity v toward the velocities of the neighbors.
func (f *ForceModel) Alignment(p Params, v Vec3, nbrs []NeighborRecord) Vec3 {
	var sum Vec3
	for _, n := range nbrs {
		sum = r3.Add(sum, r3.Sub(n.Vel, v))
	}
	return r3.Scale(p.Alignment/float64(f.Behavior.Neighbors), sum)
}

// Steering deflects an agent at x moving with velocity v away from the
// obstacles it is about to pass too close to.
//
// For each obstacle ahead within LookAhead seconds, the point of closest
// approach along the straight path is compared to the obstacle. When it
// falls within AvoidRadius, a sideways push is added, orthogonal to the
// heading, strong enough to open the remaining gap before the closest
// approach is reached. A still agent has no heading and is not steered.
func (f *ForceModel) Steering(x, v Vec3, obstacles *ObstacleRegistry) Vec3 {
	var steer Vec3
	speed := r3.Norm(v)
	if speed == 0 || obstacles.Len() == 0 {
		return steer
	}
	// divide per component, 1/speed overflows for subnormal speeds
	h := Vec3{X: v.X / speed, Y: v.Y / speed, Z: v.Z / speed}
	if !finite(h) {
		return steer
	}
	b := &f.Behavior

	for i := 0; i < obstacles.Len(); i++ {
		o := obstacles.At(i)

		// distance along the path to the closest approach
		s := r3.Dot(h, r3.Sub(o.Pos, x))
		if s < 0 || s > speed*b.LookAhead {
			continue
		}
		xc := r3.Add(x, r3.Scale(s, h))

		q := o.Nearest(xc)
		d := r3.Norm(r3.Sub(xc, q))
		if d > b.AvoidRadius {
			continue
		}

		off := r3.Sub(xc, q)
		if d == 0 {
			// path crosses the obstacle: escape away from its center
			off = r3.Sub(xc, o.Pos)
		}
		e := escape(off, h)

		t := math.Max(s/speed, b.MinApproachTime)
		steer = r3.Add(steer, r3.Scale(b.SteerGain*(b.AvoidRadius-d)/(t*t), e))
	}
	return steer
}

// escape returns the unit component of off orthogonal to the unit heading h,
// or an arbitrary unit vector orthogonal to h when there is none.
func escape(off, h Vec3) Vec3 {
	e := r3.Sub(off, r3.Scale(r3.Dot(off, h), h))
	if n := r3.Norm(e); n > 0 {
		return r3.Scale(1/n, e)
	}

	// cross with the axis least aligned with h
	u := Vec3{X: 1}
	ax, ay, az := math.Abs(h.X), math.Abs(h.Y), math.Abs(h.Z)
	switch {
	case ay <= ax && ay <= az:
		u = Vec3{Y: 1}
	case az <= ax && az <= ay:
		u = Vec3{Z: 1}
	}
	return r3.Unit(r3.Cross(h, u))
}
