package scenes

import (
	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/automoto/rollback-arena/shared/input"
	"github.com/hajimehoshi/ebiten/v2"
)

type action int

const (
	actionUp action = iota
	actionDown
	actionLeft
	actionRight
	actionFire
	actionConfirm
	actionCount
)

// binding is every key, mouse or gamepad button that triggers one action.
type binding struct {
	keys           []ebiten.Key
	mouseButtons   []ebiten.MouseButton
	gamepadButtons []ebiten.StandardGamepadButton
}

const analogDeadzone = 0.25

var bindings = [actionCount]binding{
	actionUp: {
		keys:           []ebiten.Key{ebiten.KeyW, ebiten.KeyUp},
		gamepadButtons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonLeftTop},
	},
	actionDown: {
		keys:           []ebiten.Key{ebiten.KeyS, ebiten.KeyDown},
		gamepadButtons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonLeftBottom},
	},
	actionLeft: {
		keys:           []ebiten.Key{ebiten.KeyA, ebiten.KeyLeft},
		gamepadButtons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonLeftLeft},
	},
	actionRight: {
		keys:           []ebiten.Key{ebiten.KeyD, ebiten.KeyRight},
		gamepadButtons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonLeftRight},
	},
	actionFire: {
		keys:           []ebiten.Key{ebiten.KeySpace},
		mouseButtons:   []ebiten.MouseButton{ebiten.MouseButtonLeft},
		gamepadButtons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonFrontBottomRight},
	},
	actionConfirm: {
		keys:           []ebiten.Key{ebiten.KeyEnter},
		gamepadButtons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonRightBottom},
	},
}

// Reusable slice for gamepad IDs to avoid allocations
var gamepadIDs []ebiten.GamepadID

func pressed(a action) bool {
	b := bindings[a]
	for _, key := range b.keys {
		if ebiten.IsKeyPressed(key) {
			return true
		}
	}
	for _, btn := range b.mouseButtons {
		if ebiten.IsMouseButtonPressed(btn) {
			return true
		}
	}
	for _, gpID := range gamepadIDs {
		if !ebiten.IsStandardGamepadLayoutAvailable(gpID) {
			continue
		}
		for _, btn := range b.gamepadButtons {
			if ebiten.IsStandardGamepadButtonPressed(gpID, btn) {
				return true
			}
		}
	}
	return false
}

// pollControls reads the devices once for this tick. The aim point is the
// cursor in playfield coordinates unless a gamepad's right stick is pushed,
// in which case it points away from origin, the local player's position.
func pollControls(origin gamemath.Vec2) input.RawControls {
	gamepadIDs = ebiten.AppendGamepadIDs(gamepadIDs[:0])

	c := input.RawControls{
		Up:    pressed(actionUp),
		Down:  pressed(actionDown),
		Left:  pressed(actionLeft),
		Right: pressed(actionRight),
		Fire:  pressed(actionFire),
	}

	cx, cy := ebiten.CursorPosition()
	c.AimX, c.AimY = screenToWorld(config.C, float64(cx), float64(cy))

	for _, gpID := range gamepadIDs {
		if !ebiten.IsStandardGamepadLayoutAvailable(gpID) {
			continue
		}
		h := ebiten.StandardGamepadAxisValue(gpID, ebiten.StandardGamepadAxisLeftStickHorizontal)
		v := ebiten.StandardGamepadAxisValue(gpID, ebiten.StandardGamepadAxisLeftStickVertical)
		c.Left = c.Left || h < -analogDeadzone
		c.Right = c.Right || h > analogDeadzone
		c.Up = c.Up || v < -analogDeadzone
		c.Down = c.Down || v > analogDeadzone

		ax := ebiten.StandardGamepadAxisValue(gpID, ebiten.StandardGamepadAxisRightStickHorizontal)
		ay := ebiten.StandardGamepadAxisValue(gpID, ebiten.StandardGamepadAxisRightStickVertical)
		if aim, ok := input.StickAim(origin, float32(ax), float32(ay), analogDeadzone); ok {
			c.AimX, c.AimY = aim.X, aim.Y
		}
	}
	return c
}
