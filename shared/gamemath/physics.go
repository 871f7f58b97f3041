package gamemath

// Clamp clamps v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampToExtents clamps p to the rectangle centred on the origin with the
// given half extents.
func ClampToExtents(p Vec2, halfX, halfY float32) Vec2 {
	return Vec2{
		X: Clamp(p.X, -halfX, halfX),
		Y: Clamp(p.Y, -halfY, halfY),
	}
}

// Exceeds reports whether p lies strictly further than r from the origin.
// Compared squared so no sqrt rounding is involved.
func Exceeds(p Vec2, r float32) bool {
	return p.LengthSq() > float32(r*r)
}
