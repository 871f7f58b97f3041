package scenes

import (
	"log"
	"sync"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/network"
	"github.com/automoto/rollback-arena/session"
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/automoto/rollback-arena/shared/input"
	"github.com/automoto/rollback-arena/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// MatchScene drives the active session: one engine tick per game tick, then
// the render world is brought up to date with the latest state.
type MatchScene struct {
	ecs          *ecs.ECS
	sceneChanger SceneChanger
	client       *network.Client
	lifecycle    *session.Lifecycle
	mirror       *systems.Mirror
	once         sync.Once
}

func NewMatchScene(sc SceneChanger, client *network.Client, lifecycle *session.Lifecycle) *MatchScene {
	return &MatchScene{
		sceneChanger: sc,
		client:       client,
		lifecycle:    lifecycle,
	}
}

func (ms *MatchScene) Update() {
	ms.once.Do(ms.configure)
	ms.ecs.Update()
}

func (ms *MatchScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if ms.ecs == nil {
		return
	}
	ms.ecs.Draw(screen)
}

func (ms *MatchScene) configure() {
	ms.ecs = ecs.NewECS(donburi.NewWorld())

	if active, ok := ms.lifecycle.Phase().(*session.Active); ok {
		ms.mirror = systems.NewMirror(ms.ecs.World, active.Session.LocalHandle(), config.Sim)
		ms.mirror.Sync(active.Session.State())
	}

	ms.ecs.AddSystem(ms.tick)
	ms.ecs.AddRenderer(layerDefault, drawArena)
	ms.ecs.AddRenderer(layerDefault, drawBullets)
	ms.ecs.AddRenderer(layerDefault, drawPlayers)
	ms.ecs.AddRenderer(layerDefault, ms.drawHUD)
}

func (ms *MatchScene) tick(e *ecs.ECS) {
	var origin gamemath.Vec2
	if ms.mirror != nil {
		origin, _ = ms.mirror.LocalPosition()
	}

	if _, failed := ms.lifecycle.Phase().(*session.Failed); !failed {
		if err := ms.lifecycle.Tick(input.Encode(pollControls(origin))); err != nil {
			log.Printf("[match] session stopped: %v", err)
		}
	}

	switch p := ms.lifecycle.Phase().(type) {
	case *session.Active:
		if ms.mirror != nil {
			ms.mirror.Sync(p.Session.State())
		}
	case *session.Failed:
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			ms.client.Disconnect()
			ms.sceneChanger.ChangeScene(NewLobbyScene(ms.sceneChanger))
			return
		}
	}
	systems.UpdateSmoothing(e.World, 1/float32(config.C.TPS))
}

func (ms *MatchScene) drawHUD(_ *ecs.ECS, screen *ebiten.Image) {
	lines := []string{ms.lifecycle.Status()}
	if _, failed := ms.lifecycle.Phase().(*session.Failed); failed {
		lines = append(lines, "press Enter to return to the lobby")
	}
	drawStatus(screen, lines...)
}
