package leaderswarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObstacleGeometry(t *testing.T) {
	o := Obstacle{Pos: Vec3{X: 10, Y: 0, Z: 10}, Size: Vec3{X: 4, Y: 100, Z: 2}}

	b := o.Box()
	assert.Equal(t, Vec3{X: 8, Y: -50, Z: 9}, b.Min)
	assert.Equal(t, Vec3{X: 12, Y: 50, Z: 11}, b.Max)

	tests := []struct {
		name string
		p    Vec3
		near Vec3
		dist float64
	}{
		{"inside", Vec3{X: 10, Y: 3, Z: 10}, Vec3{X: 10, Y: 3, Z: 10}, 0},
		{"facing x", Vec3{X: 0, Y: 3, Z: 10}, Vec3{X: 8, Y: 3, Z: 10}, 8},
		{"off a corner", Vec3{X: 15, Y: 54, Z: 11}, Vec3{X: 12, Y: 50, Z: 11}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.near, o.Nearest(tt.p))
			assert.InDelta(t, tt.dist, o.Dist(tt.p), 1e-12)
		})
	}
}

func TestObstacleRegistry(t *testing.T) {
	in := DefaultObstacles()
	r := NewObstacleRegistry(in)
	assert.Equal(t, 8, r.Len())

	in[0].Pos = Vec3{}
	assert.Equal(t, Vec3{X: 75, Y: 10, Z: 80}, r.At(0).Pos, "registry must not alias its input")

	all := r.All()
	all[1].Pos = Vec3{}
	assert.Equal(t, Vec3{X: -45, Y: 10, Z: 90}, r.At(1).Pos)

	var empty *ObstacleRegistry
	assert.Zero(t, empty.Len())
	assert.Nil(t, empty.All())
}
