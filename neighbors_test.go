package leaderswarm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// scatter returns n agents at random positions in a 100-wide cube.
func scatter(n int, seed uint64) []Agent {
	rng := rand.New(rand.NewSource(seed))
	agents := make([]Agent, n)
	for i := range agents {
		agents[i] = Agent{
			ID:   i,
			Pos:  Vec3{X: 100 * rng.Float64(), Y: 100 * rng.Float64(), Z: 100 * rng.Float64()},
			Vel:  Vec3{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()},
			Mass: 0.5,
		}
	}
	return agents
}

func TestNearestCardinality(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 4, 5, 12, 50} {
		agents := scatter(n, uint64(n)+7)
		f := NeighborFinder{M: 4, Workers: 1}
		for i := range agents {
			got := f.Nearest(agents, i, nil)
			assert.Len(t, got, min(4, n-1), "n=%d agent=%d", n, i)
		}
	}
}

func TestNearestMatchesSort(t *testing.T) {
	agents := scatter(40, 3)
	f := NeighborFinder{M: 6, Workers: 1}

	for i := range agents {
		type pair struct {
			id int
			d  float64
		}
		var all []pair
		for j := range agents {
			if j != i {
				all = append(all, pair{j, r3.Norm(r3.Sub(agents[j].Pos, agents[i].Pos))})
			}
		}
		sort.Slice(all, func(a, b int) bool { return all[a].d < all[b].d })

		got := f.Nearest(agents, i, nil)
		require.Len(t, got, 6)
		for k, n := range got {
			assert.NotEqual(t, i, n.ID, "self in neighbor set")
			assert.Equal(t, all[k].id, n.ID)
			assert.Equal(t, all[k].d, n.Dist)
			assert.Equal(t, agents[n.ID].Pos, n.Pos)
			assert.Equal(t, agents[n.ID].Vel, n.Vel)
			if k > 0 {
				assert.Less(t, got[k-1].Dist, n.Dist, "not strictly ascending")
			}
		}
	}
}

func TestNearestTiesPreferLowerIndex(t *testing.T) {
	agents := []Agent{
		{Pos: Vec3{}},
		{Pos: Vec3{X: 1}},
		{Pos: Vec3{X: -1}},
		{Pos: Vec3{Y: 1}},
		{Pos: Vec3{Y: -1}},
		{Pos: Vec3{Z: 1}},
		{Pos: Vec3{Z: -1}},
	}
	f := NeighborFinder{M: 4}
	got := f.Nearest(agents, 0, nil)

	ids := make([]int, len(got))
	for k, n := range got {
		ids[k] = n.ID
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestNearestCloserCandidateEvictsWorst(t *testing.T) {
	// the closest agents come last in the scan
	agents := []Agent{
		{Pos: Vec3{}},
		{Pos: Vec3{X: 10}},
		{Pos: Vec3{X: 9}},
		{Pos: Vec3{X: 3}},
		{Pos: Vec3{X: 2}},
		{Pos: Vec3{X: 1}},
	}
	f := NeighborFinder{M: 3}
	got := f.Nearest(agents, 0, nil)
	require.Len(t, got, 3)
	assert.Equal(t, 5, got[0].ID)
	assert.Equal(t, 4, got[1].ID)
	assert.Equal(t, 3, got[2].ID)
	assert.Equal(t, 1.0, got[0].Dist)
}

func TestFindParallelMatchesSequential(t *testing.T) {
	agents := scatter(64, 11)
	seq := (&NeighborFinder{M: 4, Workers: 1}).Find(agents, nil)
	par := (&NeighborFinder{M: 4, Workers: 8}).Find(agents, nil)
	assert.Equal(t, seq, par)

	// reuse of the output buffers
	again := (&NeighborFinder{M: 4, Workers: 3}).Find(agents, par)
	assert.Equal(t, seq, again)
}
