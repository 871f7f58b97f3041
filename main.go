package main

import (
	"flag"
	"image"
	"log"

	"github.com/automoto/rollback-arena/assets"
	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/fonts"
	"github.com/automoto/rollback-arena/scenes"
	"github.com/automoto/rollback-arena/systems"
	"github.com/hajimehoshi/ebiten/v2"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
}

type Game struct {
	bounds image.Rectangle
	scene  Scene
}

// ChangeScene switches to a new scene
func (g *Game) ChangeScene(scene interface{}) {
	g.scene = scene.(Scene)
}

func NewGame() *Game {
	g := &Game{
		bounds: image.Rectangle{},
	}
	g.scene = scenes.NewLobbyScene(g)
	return g
}

func (g *Game) Update() error {
	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.C.Width, config.C.Height)
	return config.C.Width, config.C.Height
}

func main() {
	// Initialize persistence and load saved settings
	if err := systems.InitPersistence(); err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
	}
	if saved, err := systems.LoadSettings(); err == nil && saved != nil {
		systems.ApplySavedSettings(&config.Net, saved)
	}

	signalURL := flag.String("signal", config.Net.SignalURL, "Signaling server websocket URL")
	room := flag.String("room", config.Net.Room, "Room to join")
	arenaName := flag.String("arena", assets.DefaultArena, "Arena map (every peer must pick the same one)")
	timeout := flag.Duration("timeout", config.Net.BootstrapTimeout, "Give up waiting for peers after this long (0 = never)")
	checksums := flag.Int("checksum-interval", config.Net.ChecksumInterval, "Frames between desync checks (0 = off)")
	flag.Parse()

	config.Net.SignalURL = *signalURL
	config.Net.Room = *room
	config.Net.BootstrapTimeout = *timeout
	config.Net.ChecksumInterval = *checksums

	arenas, names, err := assets.LoadArenas()
	if err != nil {
		log.Fatalf("Failed to load arenas: %v", err)
	}
	arena, ok := arenas[*arenaName]
	if !ok {
		log.Fatalf("Unknown arena %q (have %v)", *arenaName, names)
	}
	arena.Apply(&config.Sim)

	if err := config.Sim.Validate(); err != nil {
		log.Fatalf("Invalid simulation config: %v", err)
	}
	if err := config.Net.Validate(); err != nil {
		log.Fatalf("Invalid session config: %v", err)
	}
	systems.SaveCurrentSettings(config.Net)

	if err := fonts.LoadDefaults(); err != nil {
		log.Fatalf("Failed to load fonts: %v", err)
	}

	ebiten.SetWindowSize(config.C.Width, config.C.Height)
	ebiten.SetWindowTitle("Rollback Arena")
	ebiten.SetTPS(config.C.TPS)

	if err := ebiten.RunGame(NewGame()); err != nil {
		log.Fatal(err)
	}
}
