package components

import (
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/yohamta/donburi"
)

// PlayerData is the render copy of one simulated player.
type PlayerData struct {
	Handle   int
	Position gamemath.Vec2
	Facing   gamemath.Vec2
	Cooldown float32 // fraction of the fire cooldown still to run, 0..1
}

var Player = donburi.NewComponentType[PlayerData]()
