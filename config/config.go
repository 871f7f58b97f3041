// Package config holds the named tuning values for the simulation and the
// session. It must stay free of ebiten imports so the relay server and the
// simulation tests remain headless.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/automoto/rollback-arena/shared/gamemath"
)

// SimConfig contains every constant the Simulation Step reads. All peers in a
// session must run with identical values.
type SimConfig struct {
	// Playfield is the rectangle [-HalfExtentX, HalfExtentX] x [-HalfExtentY, HalfExtentY].
	HalfExtentX float32
	HalfExtentY float32

	// Movement, in playfield units per frame
	MoveSpeed float32

	// Timing
	FrameDuration time.Duration // fixed simulated time per frame
	FireCooldown  time.Duration // minimum time between two shots

	// Projectiles
	BulletSpeed    float32 // units per frame
	BulletMaxRange float32 // despawn once further than this from the playfield origin

	// Spawn positions indexed by player handle
	Spawns []gamemath.Vec2
}

// NetConfig contains session and transport settings.
type NetConfig struct {
	SignalURL string // ws:// address of the signaling/relay server
	Room      string
	Version   string // empty = accept any

	Quorum        int // peers required before the session starts
	InputDelay    int // frames local input is held back
	MaxPrediction int // frames the engine may run ahead of the last confirmed frame

	BootstrapTimeout time.Duration // 0 = wait for quorum forever
	ChecksumInterval int           // confirmed frames between desync checks, 0 = off
}

// WindowConfig holds general client window configuration
type WindowConfig struct {
	Width  int
	Height int
	TPS    int
	Scale  float64 // screen pixels per playfield unit
}

var (
	C   *WindowConfig
	Sim SimConfig
	Net NetConfig
)

func init() {
	C = &WindowConfig{
		Width:  960,
		Height: 540,
		TPS:    60,
		Scale:  24,
	}
	Sim = DefaultSim()
	Net = DefaultNet()
}

// DefaultSim returns the stock tuning.
func DefaultSim() SimConfig {
	return SimConfig{
		HalfExtentX:    10,
		HalfExtentY:    10,
		MoveSpeed:      0.15,
		FrameDuration:  time.Second / 60,
		FireCooldown:   100 * time.Millisecond,
		BulletSpeed:    0.3,
		BulletMaxRange: 20,
		Spawns: []gamemath.Vec2{
			{X: -2, Y: 0},
			{X: 2, Y: 0},
		},
	}
}

// DefaultNet returns the stock session settings: two peers, two frames of
// input delay, no bootstrap timeout.
func DefaultNet() NetConfig {
	return NetConfig{
		SignalURL:        "ws://localhost:7373",
		Room:             "extreme_arena",
		Quorum:           2,
		InputDelay:       2,
		MaxPrediction:    8,
		BootstrapTimeout: 0,
		ChecksumInterval: 60,
	}
}

// Validate reports the first inconsistent value.
func (c SimConfig) Validate() error {
	switch {
	case c.HalfExtentX <= 0 || c.HalfExtentY <= 0:
		return errors.New("playfield half extents must be positive")
	case c.MoveSpeed < 0:
		return errors.New("move speed must not be negative")
	case c.FrameDuration <= 0:
		return errors.New("frame duration must be positive")
	case c.FireCooldown < 0:
		return errors.New("fire cooldown must not be negative")
	case c.BulletSpeed <= 0:
		return errors.New("bullet speed must be positive")
	case c.BulletMaxRange <= 0:
		return errors.New("bullet max range must be positive")
	case len(c.Spawns) == 0:
		return errors.New("at least one spawn point is required")
	}
	return nil
}

// Validate reports the first inconsistent value.
func (c NetConfig) Validate() error {
	switch {
	case c.Quorum < 2:
		return fmt.Errorf("quorum must be at least 2, got %d", c.Quorum)
	case c.InputDelay < 0:
		return fmt.Errorf("input delay must not be negative, got %d", c.InputDelay)
	case c.MaxPrediction < 1:
		return fmt.Errorf("max prediction must be at least 1, got %d", c.MaxPrediction)
	case c.BootstrapTimeout < 0:
		return errors.New("bootstrap timeout must not be negative")
	case c.ChecksumInterval < 0:
		return errors.New("checksum interval must not be negative")
	}
	return nil
}

// FireCooldownFrames is FireCooldown rounded to the nearest whole frame.
// FrameDuration is truncated to the nanosecond, so 100ms at 60 TPS divides to
// just over 6 frames.
func (c SimConfig) FireCooldownFrames() int32 {
	return int32((c.FireCooldown + c.FrameDuration/2) / c.FrameDuration)
}

// SpawnFor returns the spawn point for a player handle, cycling through the
// configured spawns when there are more players than points.
func (c SimConfig) SpawnFor(handle int) gamemath.Vec2 {
	return c.Spawns[handle%len(c.Spawns)]
}
