package layout

// DodgeOffsets assigns each of k models a vertical offset from the row
// center so their whiskers do not overlap.
//
// Offsets follow o_i = d * (i - (k-1)/2) for 0-based rank i: symmetric
// around zero, summing to zero, and stable across re-renders. A single
// model gets a zero offset. When d is zero the default increment
// 1/(k+1) is used, which keeps whiskers at typical error-bar heights
// from touching inside a unit row band.
func DodgeOffsets(k int, d float64) []float64 {
	if k <= 0 {
		return nil
	}
	if k == 1 {
		return []float64{0}
	}
	if d == 0 {
		d = 1 / float64(k+1)
	}

	offsets := make([]float64, k)
	center := float64(k-1) / 2
	for i := range offsets {
		offsets[i] = d * (float64(i) - center)
	}
	return offsets
}
