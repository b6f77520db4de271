package model

import (
	"fmt"
	"math"
)

// Vec is a point or direction in world units.
type Vec struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Axis names one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns v * s.
func (v Vec) Scale(s float64) Vec {
	return Vec{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Get returns the component along an axis.
func (v Vec) Get(a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// With returns a copy with one component replaced.
func (v Vec) With(a Axis, val float64) Vec {
	switch a {
	case AxisX:
		v.X = val
	case AxisY:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// WithAxes builds a vector from up to three axis/value pairs; unset axes are zero.
func WithAxes(a1 Axis, v1 float64, a2 Axis, v2 float64, a3 Axis, v3 float64) Vec {
	return Vec{}.With(a1, v1).With(a2, v2).With(a3, v3)
}

// Unit returns the unit vector along an axis.
func Unit(a Axis) Vec {
	return Vec{}.With(a, 1)
}

// NormalAxis returns the axis of an axis-aligned unit normal.
// ok is false if the vector is not exactly one of the six axis directions.
func (v Vec) NormalAxis() (Axis, bool) {
	switch {
	case v.Y == 0 && v.Z == 0 && math.Abs(v.X) == 1:
		return AxisX, true
	case v.X == 0 && v.Z == 0 && math.Abs(v.Y) == 1:
		return AxisY, true
	case v.X == 0 && v.Y == 0 && math.Abs(v.Z) == 1:
		return AxisZ, true
	}
	return AxisZ, false
}

// PlaneAxes returns the U and V axes for surfaces facing along a.
func PlaneAxes(a Axis) (u, v Axis) {
	switch a {
	case AxisX:
		return AxisY, AxisZ
	case AxisY:
		return AxisX, AxisZ
	default:
		return AxisX, AxisY
	}
}

func (v Vec) String() string {
	return fmt.Sprintf("%g %g %g", v.X, v.Y, v.Z)
}

// Orient classifies a surface as floor, wall or ceiling.
type Orient int

const (
	OrientWall Orient = iota
	OrientFloor
	OrientCeiling
)

// Orients lists every orientation in catalog order.
var Orients = []Orient{OrientFloor, OrientWall, OrientCeiling}

// OrientFromNormal picks the orientation for a surface normal.
// Mostly-flat surfaces (within about 40 degrees) count as floors or ceilings.
func OrientFromNormal(n Vec) Orient {
	switch {
	case n.Z > 0.8:
		return OrientFloor
	case n.Z < -0.8:
		return OrientCeiling
	default:
		return OrientWall
	}
}

func (o Orient) String() string {
	switch o {
	case OrientFloor:
		return "floor"
	case OrientCeiling:
		return "ceiling"
	default:
		return "wall"
	}
}

// ParseOrient converts a configuration name into an Orient.
func ParseOrient(s string) (Orient, error) {
	switch s {
	case "floor":
		return OrientFloor, nil
	case "wall":
		return OrientWall, nil
	case "ceiling", "ceil":
		return OrientCeiling, nil
	}
	return OrientWall, fmt.Errorf("unknown orientation %q", s)
}
