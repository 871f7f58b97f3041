package gamemath

import "math"

// Vec2 is a 2D vector in playfield units. Simulation math is float32 so that
// every peer rounds identically.
type Vec2 struct {
	X, Y float32
}

var Zero = Vec2{}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale rounds each product to float32 explicitly so that a following Add is
// never fused into a multiply-add.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: float32(v.X * s), Y: float32(v.Y * s)}
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// LengthSq returns X*X + Y*Y. Each product is rounded to float32 before the
// add so the compiler cannot fuse it into an FMA on arm64 and friends.
func (v Vec2) LengthSq() float32 {
	return float32(v.X*v.X) + float32(v.Y*v.Y)
}

// Length uses float64 sqrt, which is correctly rounded on every platform.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// Normalize returns the unit vector in the direction of v, or Zero when v has
// no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Zero
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Toward returns the unit direction from `from` to `to` scaled by speed.
func Toward(from, to Vec2, speed float32) Vec2 {
	return to.Sub(from).Normalize().Scale(speed)
}
