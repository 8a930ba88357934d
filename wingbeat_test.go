package leaderswarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWingBeatRate(t *testing.T) {
	tests := []struct {
		vz   float64
		want float64
	}{
		{25, 6},
		{23.0001, 6},
		{23, 5},
		{20.5, 5},
		{20, 4},
		{18.5, 4},
		{18, 3},
		{15.5, 3},
		{15, 2},
		{0, 2},
		{-30, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WingBeatRate(tt.vz), "vz=%v", tt.vz)
	}
}
