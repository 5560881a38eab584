package fight

import "math"

// distanceMeters returns the 3D Euclidean distance between two telemetry
// locations, converted from centimeters to meters. Nil means "no
// information" (one side missing), never zero.
func distanceMeters(a, b *Location) *float64 {
	if a == nil || b == nil {
		return nil
	}
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	d := math.Sqrt(dx*dx+dy*dy+dz*dz) / 100.0
	return &d
}

// meanLocation averages a set of locations, ignoring nils. Returns nil when
// nothing was measurable.
func meanLocation(locs ...*Location) *Location {
	var sum Location
	n := 0
	for _, l := range locs {
		if l == nil {
			continue
		}
		sum.X += l.X
		sum.Y += l.Y
		sum.Z += l.Z
		n++
	}
	if n == 0 {
		return nil
	}
	return &Location{X: sum.X / float64(n), Y: sum.Y / float64(n), Z: sum.Z / float64(n)}
}
