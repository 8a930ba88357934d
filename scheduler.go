package leaderswarm

import (
	"golang.org/x/exp/rand"
)

// A Reason explains why a role transition happened.
type Reason uint8

const (
	// Expired means the leader held its role for too long.
	Expired Reason = iota + 1
	// Isolated means the leader drifted too far from its nearest neighbor.
	Isolated
	// Promoted means the agent was picked to replace a leader.
	Promoted
)

// String returns the lower-case name of the reason.
func (r Reason) String() string {
	switch r {
	case Expired:
		return "expired"
	case Isolated:
		return "isolated"
	case Promoted:
		return "promoted"
	default:
		return "unknown"
	}
}

// A Transition is a role change of a single agent.
type Transition struct {
	Agent  int
	From   Role
	To     Role
	At     float64
	Reason Reason
}

// A LeaderScheduler rotates the leader role through the flock.
//
// A leader steps down when it has led for longer than MaxLeaderTime or when
// its nearest neighbor is farther than MaxSeparation. It then cools down for
// Refractory seconds, and a replacement is drawn uniformly among followers
// that are not cooling down. If there is none, the slot stays empty until
// the next step-down finds one.
type LeaderScheduler struct {
	MaxLeaderTime float64
	MaxSeparation float64
	Refractory    float64

	rng      *rand.Rand
	changed  []bool
	eligible []int
}

// NewLeaderScheduler returns a scheduler drawing replacements from rng.
func NewLeaderScheduler(b Behavior, rng *rand.Rand) *LeaderScheduler {
	return &LeaderScheduler{
		MaxLeaderTime: b.MaxLeaderTime,
		MaxSeparation: b.MaxSeparation,
		Refractory:    b.Refractory,
		rng:           rng,
	}
}

// Update applies the transitions due at time now and appends them to events.
//
// snap is the committed generation and neighbors its neighbor sets; roles
// and timers are read from snap and written to next, which must have been
// seeded from snap. Agents are visited in index order and each changes role
// at most once, so the outcome only depends on the RNG state.
func (s *LeaderScheduler) Update(now float64, snap, next []Agent, neighbors [][]NeighborRecord, events []Transition) []Transition {
	if len(snap) < 2 {
		return events
	}
	if cap(s.changed) < len(snap) {
		s.changed = make([]bool, len(snap))
	}
	s.changed = s.changed[:len(snap)]
	clear(s.changed)

	for i := range snap {
		a := &snap[i]
		if a.Role != Leader || s.changed[i] {
			continue
		}

		var why Reason
		switch {
		case now-a.LeaderSince > s.MaxLeaderTime:
			why = Expired
		case len(neighbors[i]) > 0 && neighbors[i][0].Dist > s.MaxSeparation:
			why = Isolated
		default:
			continue
		}

		next[i].Role = Follower
		next[i].RefractoryUntil = now + s.Refractory
		next[i].LeaderSince = 0
		s.changed[i] = true
		events = append(events, Transition{Agent: i, From: Leader, To: Follower, At: now, Reason: why})

		j, ok := s.pick(now, next)
		if !ok {
			continue
		}
		next[j].Role = Leader
		next[j].LeaderSince = now
		next[j].RefractoryUntil = 0
		s.changed[j] = true
		events = append(events, Transition{Agent: j, From: Follower, To: Leader, At: now, Reason: Promoted})
	}
	return events
}

// pick draws a follower that may become leader at time now.
func (s *LeaderScheduler) pick(now float64, agents []Agent) (int, bool) {
	s.eligible = s.eligible[:0]
	for j := range agents {
		if s.Eligible(now, &agents[j]) && !s.changed[j] {
			s.eligible = append(s.eligible, j)
		}
	}
	if len(s.eligible) == 0 {
		return 0, false
	}
	return s.eligible[s.rng.Intn(len(s.eligible))], true
}

// Eligible reports whether a may be promoted to leader at time now.
func (s *LeaderScheduler) Eligible(now float64, a *Agent) bool {
	return a.Role == Follower && !a.refractory(now)
}
