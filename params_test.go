package leaderswarm

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"defaults", DefaultParams, false},
		{"zero", Params{}, false},
		{"upper bound", Params{Repulsion: 100, Attraction: 100, Alignment: 100}, false},
		{"negative repulsion", Params{Repulsion: -1}, true},
		{"attraction too large", Params{Attraction: 100.5}, true},
		{"NaN alignment", Params{Alignment: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCoefficientRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParameterSetSetters(t *testing.T) {
	ps, err := NewParameterSet(DefaultParams)
	require.NoError(t, err)

	require.NoError(t, ps.SetRepulsion(10))
	require.NoError(t, ps.SetAttraction(20))
	require.NoError(t, ps.SetAlignment(30))
	ps.SetGravity(false)
	assert.Equal(t, Params{Repulsion: 10, Attraction: 20, Alignment: 30}, ps.Load())

	assert.ErrorIs(t, ps.SetRepulsion(101), ErrCoefficientRange)
	assert.ErrorIs(t, ps.Store(Params{Alignment: -3}), ErrCoefficientRange)
	assert.Equal(t, 10.0, ps.Load().Repulsion, "rejected values must not be applied")

	_, err = NewParameterSet(Params{Attraction: 200})
	assert.ErrorIs(t, err, ErrCoefficientRange)
}

func TestParameterSetConsistentReads(t *testing.T) {
	ps, err := NewParameterSet(Params{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for v := 0.0; ; v = math.Mod(v+1, 100) {
			select {
			case <-stop:
				return
			default:
			}
			_ = ps.Store(Params{Repulsion: v, Attraction: v, Alignment: v})
		}
	}()

	for k := 0; k < 10000; k++ {
		p := ps.Load()
		require.Equal(t, p.Repulsion, p.Attraction)
		require.Equal(t, p.Repulsion, p.Alignment)
	}
	close(stop)
	wg.Wait()
}

func TestControllerWritesWhileStepping(t *testing.T) {
	s := defaultWorld(t, 2, DefaultParams)
	ps := s.Params()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for k := 0; k < 200; k++ {
			_ = ps.SetRepulsion(float64(k % 100))
			ps.SetGravity(k%2 == 0)
		}
	}()
	for k := 0; k < 50; k++ {
		s.Step(0.05)
		_ = s.AgentState(k % s.Len())
	}
	wg.Wait()
}
