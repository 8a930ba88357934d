package leaderswarm

import (
	"container/heap"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// A NeighborRecord describes one of the closest agents to a focal agent,
// as seen in the snapshot the search ran on.
type NeighborRecord struct {
	ID   int     // index of the neighbor
	Dist float64 // Euclidean distance to the focal agent
	Pos  Vec3    // position of the neighbor
	Vel  Vec3    // velocity of the neighbor
}

// A NeighborFinder selects the M nearest agents of every agent
// by brute force over a snapshot.
type NeighborFinder struct {
	M       int // maximum number of neighbors per agent
	Workers int // maximum number of agents searched concurrently
}

// Find computes the neighbor sets of all agents and stores them in dst,
// reusing its backing arrays when possible. dst[i] is sorted by increasing
// distance, with ties broken by lower index.
func (f *NeighborFinder) Find(agents []Agent, dst [][]NeighborRecord) [][]NeighborRecord {
	if cap(dst) < len(agents) {
		dst = make([][]NeighborRecord, len(agents))
	}
	dst = dst[:len(agents)]
	parallelFor(len(agents), f.Workers, func(i int) {
		dst[i] = f.Nearest(agents, i, dst[i])
	})
	return dst
}

// Nearest returns the min(M, len(agents)-1) agents closest to agents[i],
// appended to dst[:0].
func (f *NeighborFinder) Nearest(agents []Agent, i int, dst []NeighborRecord) []NeighborRecord {
	dst = dst[:0]
	k := min(f.M, len(agents)-1)
	if k <= 0 {
		return dst
	}

	h := make(worstFirst, 0, k)
	x := agents[i].Pos
	for j := range agents {
		if j == i {
			continue
		}
		c := candidate{id: j, dist: r3.Norm(r3.Sub(agents[j].Pos, x))}
		switch {
		case len(h) < k:
			heap.Push(&h, c)
		case c.closer(h[0]):
			h[0] = c
			heap.Fix(&h, 0)
		}
	}

	// popping yields the worst first, so fill from the back
	n := len(h)
	dst = slices.Grow(dst, n)[:n]
	for m := n - 1; m >= 0; m-- {
		c := heap.Pop(&h).(candidate)
		q := &agents[c.id]
		dst[m] = NeighborRecord{ID: c.id, Dist: c.dist, Pos: q.Pos, Vel: q.Vel}
	}
	return dst
}

type candidate struct {
	id   int
	dist float64
}

// closer reports whether c ranks before d.
func (c candidate) closer(d candidate) bool {
	if c.dist != d.dist {
		return c.dist < d.dist
	}
	return c.id < d.id
}

// worstFirst is a max-heap of candidates: the root is the one to evict.
type worstFirst []candidate

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return h[j].closer(h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
