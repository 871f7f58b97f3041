package components

import (
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

// SmoothData hides a rollback correction: the entity is drawn at
// Position + Offset*Weight while Tween eases Weight from 1 to 0.
type SmoothData struct {
	Offset gamemath.Vec2
	Weight float32
	Tween  *gween.Tween
}

var Smooth = donburi.NewComponentType[SmoothData]()
