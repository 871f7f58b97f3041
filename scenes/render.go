package scenes

import (
	"image/color"

	"github.com/automoto/rollback-arena/components"
	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/fonts"
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/automoto/rollback-arena/systems"
	"github.com/automoto/rollback-arena/tags"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var (
	backgroundColor = color.RGBA{20, 20, 30, 255}
	arenaColor      = color.RGBA{90, 90, 120, 255}
	localColor      = color.RGBA{80, 220, 120, 255}
	remoteColor     = color.RGBA{230, 90, 90, 255}
	bulletColor     = color.RGBA{250, 230, 120, 255}
	textColor       = color.RGBA{230, 230, 230, 255}
)

const playerSize = 0.8 // playfield units

// worldToScreen maps playfield units (origin centered, y up) to pixels.
func worldToScreen(w *config.WindowConfig, p gamemath.Vec2) (float32, float32) {
	x := float64(w.Width)/2 + float64(p.X)*w.Scale
	y := float64(w.Height)/2 - float64(p.Y)*w.Scale
	return float32(x), float32(y)
}

func screenToWorld(w *config.WindowConfig, x, y float64) (float32, float32) {
	return float32((x - float64(w.Width)/2) / w.Scale), float32((float64(w.Height)/2 - y) / w.Scale)
}

func drawArena(_ *ecs.ECS, screen *ebiten.Image) {
	s := float32(config.C.Scale)
	x, y := worldToScreen(config.C, gamemath.Vec2{X: -config.Sim.HalfExtentX, Y: config.Sim.HalfExtentY})
	vector.StrokeRect(screen, x, y, 2*config.Sim.HalfExtentX*s, 2*config.Sim.HalfExtentY*s, 2, arenaColor, false)
}

func drawPlayers(e *ecs.ECS, screen *ebiten.Image) {
	s := float32(config.C.Scale)
	size := playerSize * s

	tags.Player.Each(e.World, func(entry *donburi.Entry) {
		p := components.Player.Get(entry)
		pos := systems.DrawPosition(p.Position, components.Smooth.Get(entry))
		cx, cy := worldToScreen(config.C, pos)

		clr := remoteColor
		if entry.HasComponent(tags.Local) {
			clr = localColor
		}
		vector.DrawFilledRect(screen, cx-size/2, cy-size/2, size, size, clr, false)

		// Facing marker
		fx, fy := worldToScreen(config.C, pos.Add(p.Facing.Normalize().Scale(playerSize)))
		vector.DrawFilledRect(screen, fx-2, fy-2, 4, 4, textColor, false)

		// Cooldown bar under the player
		if p.Cooldown > 0 {
			vector.DrawFilledRect(screen, cx-size/2, cy+size/2+3, size*p.Cooldown, 3, textColor, false)
		}
	})
}

func drawBullets(e *ecs.ECS, screen *ebiten.Image) {
	r := float32(config.C.Scale) * 0.15
	components.Bullet.Each(e.World, func(entry *donburi.Entry) {
		b := components.Bullet.Get(entry)
		x, y := worldToScreen(config.C, b.Position)
		vector.DrawFilledCircle(screen, x, y, r, bulletColor, true)
	})
}

func drawStatus(screen *ebiten.Image, lines ...string) {
	face := fonts.Regular.Get()
	for i, line := range lines {
		text.Draw(screen, line, face, 12, 22+i*18, textColor)
	}
}
