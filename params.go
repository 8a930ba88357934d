package leaderswarm

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// MaxCoefficient is the upper bound of every flocking coefficient.
const MaxCoefficient = 100

// ErrCoefficientRange is returned when a coefficient falls outside [0, MaxCoefficient].
var ErrCoefficientRange = errors.New("coefficient out of range")

// Params is a consistent set of tunable coefficients.
type Params struct {
	Gravity    bool    // apply gravity
	Repulsion  float64 // repulsion coefficient in [0, 100]
	Attraction float64 // attraction coefficient in [0, 100]
	Alignment  float64 // alignment coefficient in [0, 100]
}

// DefaultParams are the coefficients the flock starts with.
var DefaultParams = Params{
	Gravity:    true,
	Repulsion:  0.1,
	Attraction: 0.1,
	Alignment:  0.1,
}

// Validate checks that every coefficient lies in [0, MaxCoefficient].
func (p Params) Validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"repulsion", p.Repulsion},
		{"attraction", p.Attraction},
		{"alignment", p.Alignment},
	} {
		if err := checkCoefficient(c.name, c.v); err != nil {
			return err
		}
	}
	return nil
}

func checkCoefficient(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > MaxCoefficient {
		return fmt.Errorf("%s = %v: %w", name, v, ErrCoefficientRange)
	}
	return nil
}

// A ParameterSet is shared between the simulation and an external controller.
// Writers may run on any goroutine. The simulation reads it once per tick
// through Load so a tick never sees a half-applied change.
type ParameterSet struct {
	mu sync.RWMutex
	p  Params
}

// NewParameterSet returns a parameter set initialized to p.
func NewParameterSet(p Params) (*ParameterSet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &ParameterSet{p: p}, nil
}

// Load returns a copy of the current coefficients.
func (s *ParameterSet) Load() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

// Store replaces all coefficients at once.
func (s *ParameterSet) Store(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
	return nil
}

// SetGravity enables or disables gravity.
func (s *ParameterSet) SetGravity(on bool) {
	s.mu.Lock()
	s.p.Gravity = on
	s.mu.Unlock()
}

// SetRepulsion sets the repulsion coefficient.
func (s *ParameterSet) SetRepulsion(v float64) error {
	return s.set("repulsion", v, &s.p.Repulsion)
}

// SetAttraction sets the attraction coefficient.
func (s *ParameterSet) SetAttraction(v float64) error {
	return s.set("attraction", v, &s.p.Attraction)
}

// SetAlignment sets the alignment coefficient.
func (s *ParameterSet) SetAlignment(v float64) error {
	return s.set("alignment", v, &s.p.Alignment)
}

func (s *ParameterSet) set(name string, v float64, dst *float64) error {
	if err := checkCoefficient(name, v); err != nil {
		return err
	}
	s.mu.Lock()
	*dst = v
	s.mu.Unlock()
	return nil
}
