package model

import "math"

// Valid reports whether the box is drawable: finite values, a non-negative
// origin and a positive extent on both axes.
func (c Coordinates) Valid() bool {
	for _, v := range []float64{c.X1, c.Y1, c.X2, c.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.X1 >= 0 && c.Y1 >= 0 && c.X2 > c.X1 && c.Y2 > c.Y1
}

// Width of the box in source pixels.
func (c Coordinates) Width() float64 { return c.X2 - c.X1 }

// Height of the box in source pixels.
func (c Coordinates) Height() float64 { return c.Y2 - c.Y1 }
