package leaderswarm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// An Integrator advances agents with the symplectic Euler scheme:
// the velocity is updated first and the new velocity moves the agent.
type Integrator struct {
	MaxSpeed float64 // cap on the magnitude of each velocity component
	Bounds   r3.Box  // the agents never leave this box
}

// Advance moves agent a under acceleration acc for dt seconds and returns
// the new position and velocity.
//
// Each velocity component is clamped to [-MaxSpeed, MaxSpeed]. Along each
// axis independently, a position leaving Bounds is clamped back onto the
// boundary and the matching velocity component is reversed.
func (it *Integrator) Advance(a *Agent, acc Vec3, dt float64) (pos, vel Vec3) {
	vel = r3.Add(a.Vel, r3.Scale(dt, acc))
	vel.X = clamp(vel.X, -it.MaxSpeed, it.MaxSpeed)
	vel.Y = clamp(vel.Y, -it.MaxSpeed, it.MaxSpeed)
	vel.Z = clamp(vel.Z, -it.MaxSpeed, it.MaxSpeed)

	pos = r3.Add(a.Pos, r3.Scale(dt, vel))
	pos.X, vel.X = reflect(pos.X, vel.X, it.Bounds.Min.X, it.Bounds.Max.X)
	pos.Y, vel.Y = reflect(pos.Y, vel.Y, it.Bounds.Min.Y, it.Bounds.Max.Y)
	pos.Z, vel.Z = reflect(pos.Z, vel.Z, it.Bounds.Min.Z, it.Bounds.Max.Z)
	return pos, vel
}

// Apply integrates every agent of snap into next.
func (it *Integrator) Apply(snap, next []Agent, acc []Vec3, dt float64) {
	for i := range snap {
		a := &snap[i]
		pos, vel := it.Advance(a, acc[i], dt)
		n := &next[i]
		n.PrevPos, n.PrevVel = a.Pos, a.Vel
		n.Pos, n.Vel = pos, vel
	}
}

// reflect handles one axis of the boundary.
func reflect(x, v, min, max float64) (float64, float64) {
	if x < min || x > max {
		return clamp(x, min, max), -v
	}
	return x, v
}

// validSpeed reports whether every velocity component is within the cap.
func (it *Integrator) validSpeed(v Vec3) bool {
	return math.Abs(v.X) <= it.MaxSpeed && math.Abs(v.Y) <= it.MaxSpeed && math.Abs(v.Z) <= it.MaxSpeed
}
