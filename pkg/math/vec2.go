package math

import "math"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// Box2 is an axis-aligned 2D box. The zero value is an empty, invalid box.
type Box2 struct {
	Min, Max Vec2
	Valid    bool
}

// NewBox2 returns a valid box spanning the two corners in any order.
func NewBox2(a, b Vec2) Box2 {
	return Box2{
		Min:   Vec2{min(a.X, b.X), min(a.Y, b.Y)},
		Max:   Vec2{max(a.X, b.X), max(a.Y, b.Y)},
		Valid: true,
	}
}

// Center returns the box midpoint.
func (b Box2) Center() Vec2 {
	return b.Min.Add(b.Max).Scale(0.5)
}
