package leaderswarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func newIntegrator() *Integrator {
	return &Integrator{MaxSpeed: DefaultEnvironment.MaxSpeed, Bounds: DefaultEnvironment.Bounds}
}

func TestAdvanceSymplecticEuler(t *testing.T) {
	it := newIntegrator()
	a := &Agent{Pos: Vec3{X: 1, Y: 2, Z: 3}, Vel: Vec3{X: 1, Y: -1, Z: 2}}
	acc := Vec3{X: 10, Y: 0, Z: -5}

	pos, vel := it.Advance(a, acc, 0.1)

	wantVel := Vec3{X: 1 + 0.1*10, Y: -1, Z: 2 + 0.1*-5}
	assert.InDelta(t, wantVel.X, vel.X, 1e-12)
	assert.InDelta(t, wantVel.Y, vel.Y, 1e-12)
	assert.InDelta(t, wantVel.Z, vel.Z, 1e-12)

	// the new velocity moves the agent
	assert.InDelta(t, 1+0.1*wantVel.X, pos.X, 1e-12)
	assert.InDelta(t, 2+0.1*wantVel.Y, pos.Y, 1e-12)
	assert.InDelta(t, 3+0.1*wantVel.Z, pos.Z, 1e-12)
}

func TestAdvanceClampsBothSigns(t *testing.T) {
	it := newIntegrator()
	a := &Agent{Pos: Vec3{Z: 25}, Vel: Vec3{X: 19, Y: -19, Z: 0}}

	_, vel := it.Advance(a, Vec3{X: 100, Y: -100, Z: 5}, 0.1)
	assert.Equal(t, 20.0, vel.X)
	assert.Equal(t, -20.0, vel.Y)
	assert.InDelta(t, 0.5, vel.Z, 1e-12)
}

func TestAdvanceReflectsEachAxis(t *testing.T) {
	it := newIntegrator()

	for _, tc := range []struct {
		name    string
		pos     Vec3
		vel     Vec3
		wantPos Vec3
		wantVel Vec3
	}{
		{
			name:    "upper x",
			pos:     Vec3{X: 199.5, Y: 10, Z: 40},
			vel:     Vec3{X: 10, Y: 1, Z: 1},
			wantPos: Vec3{X: 200, Y: 10.1, Z: 40.1},
			wantVel: Vec3{X: -10, Y: 1, Z: 1},
		},
		{
			name:    "lower y keeps its own value",
			pos:     Vec3{X: 0, Y: -199.5, Z: 30},
			vel:     Vec3{X: 0, Y: -10, Z: 0},
			wantPos: Vec3{X: 0, Y: -200, Z: 30},
			wantVel: Vec3{X: 0, Y: 10, Z: 0},
		},
		{
			name:    "lower z",
			pos:     Vec3{X: 5, Y: 5, Z: 0.5},
			vel:     Vec3{X: 0, Y: 0, Z: -10},
			wantPos: Vec3{X: 5, Y: 5, Z: 0},
			wantVel: Vec3{X: 0, Y: 0, Z: 10},
		},
		{
			name:    "corner",
			pos:     Vec3{X: -199.9, Y: 199.9, Z: 49.9},
			vel:     Vec3{X: -5, Y: 5, Z: 5},
			wantPos: Vec3{X: -200, Y: 200, Z: 50},
			wantVel: Vec3{X: 5, Y: -5, Z: -5},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pos, vel := it.Advance(&Agent{Pos: tc.pos, Vel: tc.vel}, Vec3{}, 0.1)
			assert.InDelta(t, tc.wantPos.X, pos.X, 1e-9)
			assert.InDelta(t, tc.wantPos.Y, pos.Y, 1e-9)
			assert.InDelta(t, tc.wantPos.Z, pos.Z, 1e-9)
			assert.Equal(t, tc.wantVel, vel)
		})
	}
}

func TestApplyKeepsPreviousState(t *testing.T) {
	it := newIntegrator()
	snap := []Agent{{Pos: Vec3{Z: 10}, Vel: Vec3{Z: 1}, Mass: 1}}
	next := append([]Agent(nil), snap...)

	it.Apply(snap, next, []Vec3{{Z: 10}}, 0.5)

	assert.Equal(t, snap[0].Pos, next[0].PrevPos)
	assert.Equal(t, snap[0].Vel, next[0].PrevVel)
	assert.Equal(t, Vec3{Z: 6}, next[0].Vel)
	assert.Equal(t, r3.Add(snap[0].Pos, Vec3{Z: 3}), next[0].Pos)
}
