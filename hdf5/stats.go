package hdf5

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// FrameStats summarizes one recorded frame.
type FrameStats struct {
	Agents       int
	Leaders      int
	MeanSpeed    float64
	MeanWingBeat float64

	// Groups is the number of clusters of agents chained together
	// by gaps no larger than the group distance.
	Groups int
}

// Stats computes the statistics of a frame.
// Agents closer than groupDist belong to the same group.
func Stats(frames []Frame, groupDist float64) FrameStats {
	st := FrameStats{Agents: len(frames)}
	if len(frames) == 0 {
		return st
	}
	for _, f := range frames {
		if f.Role == 1 {
			st.Leaders++
		}
		st.MeanSpeed += r3.Norm(f.Vel)
		st.MeanWingBeat += f.WingBeat
	}
	st.MeanSpeed /= float64(len(frames))
	st.MeanWingBeat /= float64(len(frames))

	parent := make([]int, len(frames))
	for i := range parent {
		parent[i] = i
	}
	var find func(i int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	st.Groups = len(frames)
	d2 := groupDist * groupDist
	for i := range frames {
		for j := i + 1; j < len(frames); j++ {
			if r3.Norm2(r3.Sub(frames[i].Pos, frames[j].Pos)) > d2 {
				continue
			}
			if a, b := find(i), find(j); a != b {
				parent[a] = b
				st.Groups--
			}
		}
	}
	return st
}
