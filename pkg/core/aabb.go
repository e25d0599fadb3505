package core

import "math"

// Interval is a closed range of scalars [Min, Max]
type Interval struct {
	Min, Max float64
}

// NewInterval creates a new interval
func NewInterval(min, max float64) Interval {
	return Interval{Min: min, Max: max}
}

// EmptyInterval contains nothing: Min=+Inf, Max=-Inf
func EmptyInterval() Interval {
	return Interval{Min: math.Inf(1), Max: math.Inf(-1)}
}

// Surrounds reports whether Min < x < Max
func (i Interval) Surrounds(x float64) bool {
	return i.Min < x && x < i.Max
}

// Clamp limits x to the interval
func (i Interval) Clamp(x float64) float64 {
	if x < i.Min {
		return i.Min
	}
	if x > i.Max {
		return i.Max
	}
	return x
}

// Expand returns the interval padded by delta/2 on each side
func (i Interval) Expand(delta float64) Interval {
	padding := delta / 2
	return Interval{Min: i.Min - padding, Max: i.Max + padding}
}

// BBox represents an axis-aligned bounding box as one interval per axis.
//
// Scene intersection is a linear scan; boxes only report scene extents and
// back the slab test.
type BBox struct {
	X, Y, Z Interval
}

// EmptyBBox returns a box that contains nothing
func EmptyBBox() BBox {
	return BBox{X: EmptyInterval(), Y: EmptyInterval(), Z: EmptyInterval()}
}

// NewBBoxFromPoints creates the box spanned by two opposite corners in any order
func NewBBoxFromPoints(a, b Vec3) BBox {
	return BBox{
		X: NewInterval(math.Min(a.X, b.X), math.Max(a.X, b.X)),
		Y: NewInterval(math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)),
		Z: NewInterval(math.Min(a.Z, b.Z), math.Max(a.Z, b.Z)),
	}
}

// Axis returns the interval for axis 0 (X), 1 (Y) or 2 (Z).
// Unknown axes fall back to X.
func (b BBox) Axis(n int) Interval {
	switch n {
	case 1:
		return b.Y
	case 2:
		return b.Z
	}
	return b.X
}

// Hit tests if a ray intersects with this box within rayT using the slab method
func (b BBox) Hit(ray Ray, rayT Interval) bool {
	for axis := 0; axis < 3; axis++ {
		ax := b.Axis(axis)
		adinv := 1.0 / ray.Direction.Component(axis)
		origin := ray.Origin.Component(axis)

		t0 := (ax.Min - origin) * adinv
		t1 := (ax.Max - origin) * adinv

		// Narrow the running interval; entry and exit swap for negative directions
		if t0 < t1 {
			if t0 > rayT.Min {
				rayT.Min = t0
			}
			if t1 < rayT.Max {
				rayT.Max = t1
			}
		} else {
			if t1 > rayT.Min {
				rayT.Min = t1
			}
			if t0 < rayT.Max {
				rayT.Max = t0
			}
		}

		if rayT.Max <= rayT.Min {
			return false
		}
	}

	return true
}

// Union returns a box that bounds both this box and another
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X: NewInterval(math.Min(b.X.Min, other.X.Min), math.Max(b.X.Max, other.X.Max)),
		Y: NewInterval(math.Min(b.Y.Min, other.Y.Min), math.Max(b.Y.Max, other.Y.Max)),
		Z: NewInterval(math.Min(b.Z.Min, other.Z.Min), math.Max(b.Z.Max, other.Z.Max)),
	}
}
