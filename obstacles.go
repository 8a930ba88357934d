package leaderswarm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// An Obstacle is a static axis-aligned box.
type Obstacle struct {
	Pos  Vec3 // center
	Size Vec3 // full extent along each axis
}

// Box returns the region occupied by the obstacle.
func (o Obstacle) Box() r3.Box {
	h := r3.Scale(0.5, o.Size)
	return r3.Box{Min: r3.Sub(o.Pos, h), Max: r3.Add(o.Pos, h)}
}

// Nearest returns the point of the obstacle closest to p.
// It is p itself when p lies inside the obstacle.
func (o Obstacle) Nearest(p Vec3) Vec3 {
	b := o.Box()
	return Vec3{
		X: clamp(p.X, b.Min.X, b.Max.X),
		Y: clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

// Dist returns the distance from p to the obstacle, 0 inside it.
func (o Obstacle) Dist(p Vec3) float64 {
	return r3.Norm(r3.Sub(p, o.Nearest(p)))
}

// An ObstacleRegistry holds the obstacles of a world.
// It is filled once and only read afterwards.
type ObstacleRegistry struct {
	obstacles []Obstacle
}

// NewObstacleRegistry returns a registry holding a copy of obstacles.
func NewObstacleRegistry(obstacles []Obstacle) *ObstacleRegistry {
	r := &ObstacleRegistry{obstacles: make([]Obstacle, len(obstacles))}
	copy(r.obstacles, obstacles)
	return r
}

// Len returns the number of obstacles.
func (r *ObstacleRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.obstacles)
}

// At returns obstacle i.
func (r *ObstacleRegistry) At(i int) Obstacle {
	return r.obstacles[i]
}

// All returns a copy of every obstacle.
func (r *ObstacleRegistry) All() []Obstacle {
	if r == nil {
		return nil
	}
	out := make([]Obstacle, len(r.obstacles))
	copy(out, r.obstacles)
	return out
}

// DefaultObstacles returns four pillars standing in the flight path
// and four walls enclosing the arena.
func DefaultObstacles() []Obstacle {
	var (
		tall  = Vec3{X: 10, Y: 250, Z: 10}
		short = Vec3{X: 10, Y: 190, Z: 10}
		wall  = Vec3{X: 400, Y: 600, Z: 5}
		side  = Vec3{X: 5, Y: 600, Z: 400} // wall turned a quarter around y
	)
	return []Obstacle{
		{Pos: Vec3{X: 75, Y: 10, Z: 80}, Size: tall},
		{Pos: Vec3{X: -45, Y: 10, Z: 90}, Size: tall},
		{Pos: Vec3{X: -48, Y: 5, Z: 50}, Size: short},
		{Pos: Vec3{X: 0, Y: 5, Z: 25}, Size: short},
		{Pos: Vec3{X: 0, Y: 100, Z: -200}, Size: wall},
		{Pos: Vec3{X: 200, Y: 100, Z: 0}, Size: side},
		{Pos: Vec3{X: -200, Y: 100, Z: 0}, Size: side},
		{Pos: Vec3{X: 0, Y: 100, Z: 200}, Size: wall},
	}
}

// clamp restricts x to [min, max].
func clamp(x, min, max float64) float64 {
	return math.Max(min, math.Min(max, x))
}
