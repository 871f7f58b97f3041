package components

import (
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/yohamta/donburi"
)

type BulletData struct {
	ID       uint32
	Owner    int
	Position gamemath.Vec2
}

var Bullet = donburi.NewComponentType[BulletData]()
