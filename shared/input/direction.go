package input

import "github.com/automoto/rollback-arena/shared/gamemath"

// Direction maps the movement flags to a per-axis -1/0/+1 vector. Opposing
// flags cancel on their axis. The result is not normalized: diagonals move
// faster, same as every other peer.
func Direction(p Packet) gamemath.Vec2 {
	var d gamemath.Vec2
	if p.Buttons&Up != 0 {
		d.Y++
	}
	if p.Buttons&Down != 0 {
		d.Y--
	}
	if p.Buttons&Right != 0 {
		d.X++
	}
	if p.Buttons&Left != 0 {
		d.X--
	}
	return d
}

func HasFired(p Packet) bool {
	return p.Buttons&Fire != 0
}

// Aim returns the aim point carried by a fire input.
func Aim(p Packet) gamemath.Vec2 {
	return gamemath.Vec2{X: p.AimX, Y: p.AimY}
}

// StickAim turns an analog stick deflection into an aim point next to origin.
// Stick Y grows downward while playfield Y grows up. ok is false while the
// stick rests inside the deadzone.
func StickAim(origin gamemath.Vec2, x, y, deadzone float32) (aim gamemath.Vec2, ok bool) {
	stick := gamemath.Vec2{X: x, Y: -y}
	if stick.LengthSq() <= float32(deadzone*deadzone) {
		return gamemath.Vec2{}, false
	}
	return origin.Add(stick), true
}
