package hdf5

import (
	"testing"

	"github.com/PrincetonUniversity/leaderswarm"
	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	frames := []Frame{
		{Pos: leaderswarm.Vec3{X: 0}, Vel: leaderswarm.Vec3{X: 3, Z: 4}, Role: 1, WingBeat: 2},
		{Pos: leaderswarm.Vec3{X: 10}, Vel: leaderswarm.Vec3{Z: 5}, WingBeat: 2},
		{Pos: leaderswarm.Vec3{X: 20}, Vel: leaderswarm.Vec3{Z: 21}, WingBeat: 5},
		{Pos: leaderswarm.Vec3{X: 100}, Vel: leaderswarm.Vec3{Y: 1}, Role: 1, WingBeat: 3},
	}
	st := Stats(frames, 10)
	assert.Equal(t, 4, st.Agents)
	assert.Equal(t, 2, st.Leaders)
	assert.Equal(t, 2, st.Groups, "a chain of close agents is one group")
	assert.InDelta(t, (5+5+21+1)/4.0, st.MeanSpeed, 1e-12)
	assert.InDelta(t, 3.0, st.MeanWingBeat, 1e-12)

	assert.Equal(t, 4, Stats(frames, 1).Groups)
	assert.Equal(t, FrameStats{}, Stats(nil, 10))
}

func TestNewFrame(t *testing.T) {
	f := NewFrame(leaderswarm.AgentState{
		Position: leaderswarm.Vec3{X: 1},
		Velocity: leaderswarm.Vec3{Z: 19},
		Role:     leaderswarm.Leader,
		WingBeat: 4,
	})
	assert.Equal(t, Frame{
		Pos:      leaderswarm.Vec3{X: 1},
		Vel:      leaderswarm.Vec3{Z: 19},
		Role:     1,
		WingBeat: 4,
	}, f)
}
