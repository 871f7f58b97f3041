package scenes

import (
	"fmt"
	"log"
	"sync"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/fonts"
	"github.com/automoto/rollback-arena/network"
	"github.com/automoto/rollback-arena/session"
	"github.com/automoto/rollback-arena/shared/input"
	"github.com/automoto/rollback-arena/shared/messages"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// LobbyScene connects to the signaling server and waits for the room to fill.
type LobbyScene struct {
	ecs          *ecs.ECS
	sceneChanger SceneChanger
	client       *network.Client
	lifecycle    *session.Lifecycle
	once         sync.Once
}

func NewLobbyScene(sc SceneChanger) *LobbyScene {
	return &LobbyScene{sceneChanger: sc}
}

func (ls *LobbyScene) Update() {
	ls.once.Do(ls.configure)
	ls.ecs.Update()
}

func (ls *LobbyScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if ls.ecs == nil {
		return
	}
	ls.ecs.Draw(screen)
}

func (ls *LobbyScene) configure() {
	ls.ecs = ecs.NewECS(donburi.NewWorld())

	ls.client = network.NewClient()
	ls.client.Connect(config.Net.SignalURL, messages.JoinRequest{
		Version: config.Net.Version,
		Room:    config.Net.Room,
		Quorum:  config.Net.Quorum,
		Config:  config.Fingerprint(config.Sim, config.Net),
	})
	ls.lifecycle = session.New(ls.client, config.Sim, config.Net)

	ls.ecs.AddSystem(ls.update)
	ls.ecs.AddRenderer(layerDefault, ls.draw)
}

func (ls *LobbyScene) update(_ *ecs.ECS) {
	// Nothing is simulated while bootstrapping, so the input is irrelevant.
	if _, failed := ls.lifecycle.Phase().(*session.Failed); !failed {
		if err := ls.lifecycle.Tick(input.Packet{}); err != nil {
			log.Printf("[lobby] session stopped: %v", err)
		}
	}

	switch ls.lifecycle.Phase().(type) {
	case *session.Active:
		ls.sceneChanger.ChangeScene(NewMatchScene(ls.sceneChanger, ls.client, ls.lifecycle))
	case *session.Failed:
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			ls.client.Disconnect()
			ls.sceneChanger.ChangeScene(NewLobbyScene(ls.sceneChanger))
		}
	}
}

func (ls *LobbyScene) draw(_ *ecs.ECS, screen *ebiten.Image) {
	text.Draw(screen, "ROLLBACK ARENA", fonts.Title.Get(), 12, 60, textColor)

	lines := []string{
		fmt.Sprintf("server %s  room %q  players %d", config.Net.SignalURL, config.Net.Room, config.Net.Quorum),
		ls.lifecycle.Status(),
	}
	if _, failed := ls.lifecycle.Phase().(*session.Failed); failed {
		lines = append(lines, "press Enter to retry")
	}
	face := fonts.Regular.Get()
	for i, line := range lines {
		text.Draw(screen, line, face, 12, 100+i*20, textColor)
	}
}
