package aquarium

import "math"

// ShapeScale is the outline size in pixels.
const ShapeScale = 12.0

// Shape samples the fish outline at points positions along one turn of the
// fish curve, x = cos s - sin²s/√2, y = cos s · sin s. The phase bends the
// body and tail so consecutive frames morph. The outline faces the
// direction of travel.
func Shape(f Fish, points int) []Point {
	if points <= 0 {
		return nil
	}
	facing := 1.0
	if f.VX < 0 {
		facing = -1
	}

	out := make([]Point, points)
	for i := range out {
		s := 2 * math.Pi * float64(i) / float64(points)
		sin, cos := math.Sincos(s)
		x := cos - sin*sin/math.Sqrt2
		y := cos * sin
		// swim wave grows toward the tail
		y += 0.12 * (1 - x) * math.Sin(f.Phase+3*x)
		x *= 1 + 0.05*math.Sin(f.Phase)

		out[i] = Point{
			X: f.X + facing*x*ShapeScale,
			Y: f.Y + y*ShapeScale,
		}
	}
	return out
}
