package leaderswarm

// WingBeatRate returns the speed multiplier of the flapping animation of an
// agent flying forward at speed vz. Faster agents flap faster.
//
//	vz > 23       6
//	20 < vz ≤ 23  5
//	18 < vz ≤ 20  4
//	15 < vz ≤ 18  3
//	otherwise     2
func WingBeatRate(vz float64) float64 {
	switch {
	case vz > 23:
		return 6
	case vz > 20 && vz <= 23:
		return 5
	case vz > 18 && vz <= 20:
		return 4
	case vz > 15 && vz <= 18:
		return 3
	default:
		return 2
	}
}
