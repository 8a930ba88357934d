package leaderswarm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// A Role is the part an agent currently plays in the flock.
type Role uint8

const (
	// Follower agents feel every flocking force.
	Follower Role = iota
	// Leader agents ignore attraction and alignment and steer on their own.
	Leader
)

// String returns the lower-case name of the role.
func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// An Agent is a single member of the flock.
type Agent struct {
	ID int // index in the store

	Pos     Vec3 // position at the end of the last tick
	PrevPos Vec3 // position one tick earlier
	Vel     Vec3 // velocity at the end of the last tick
	PrevVel Vec3 // velocity one tick earlier
	Mass    float64

	Role            Role
	LeaderSince     float64 // time the agent became leader, valid only for leaders
	RefractoryUntil float64 // end of the cooldown after stepping down, 0 if none
}

// Vec3 is the vector type used throughout the simulation.
type Vec3 = r3.Vec

// finite reports whether every component of v is a finite number.
func finite(v Vec3) bool {
	for _, x := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// refractory reports whether the agent is still cooling down at time now.
func (a *Agent) refractory(now float64) bool {
	return a.RefractoryUntil != 0 && a.RefractoryUntil > now
}

// An AgentStore holds two generations of agent state.
//
// The snapshot is the state published by the last commit and is never
// written during a tick. The next buffer receives every write of the
// current tick and becomes the snapshot on Commit.
type AgentStore struct {
	cur  []Agent
	next []Agent
}

// NewAgentStore returns a store whose snapshot is a copy of agents.
// Agent IDs are reassigned to match their index.
func NewAgentStore(agents []Agent) *AgentStore {
	s := &AgentStore{
		cur:  make([]Agent, len(agents)),
		next: make([]Agent, len(agents)),
	}
	copy(s.cur, agents)
	for i := range s.cur {
		s.cur[i].ID = i
	}
	copy(s.next, s.cur)
	return s
}

// Len returns the number of agents.
func (s *AgentStore) Len() int {
	return len(s.cur)
}

// Snapshot returns the committed generation. It must not be modified.
func (s *AgentStore) Snapshot() []Agent {
	return s.cur
}

// At returns a copy of agent i from the committed generation.
func (s *AgentStore) At(i int) Agent {
	return s.cur[i]
}

// Begin seeds the next buffer with the committed generation and returns it
// for writing.
func (s *AgentStore) Begin() []Agent {
	copy(s.next, s.cur)
	return s.next
}

// Commit publishes the next buffer as the new snapshot.
func (s *AgentStore) Commit() {
	s.cur, s.next = s.next, s.cur
}
