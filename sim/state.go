// Package sim is the deterministic per-frame game simulation. Nothing in here
// reads the wall clock, draws, or touches the network: the same State and the
// same inputs always produce the same bytes on every peer.
package sim

import (
	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/shared/gamemath"
)

// Frame identifies one simulation tick.
type Frame int32

// NullFrame marks "no frame yet".
const NullFrame Frame = -1

// Player is created once at session start and lives for the whole session.
type Player struct {
	Handle        int
	Position      gamemath.Vec2
	LastDirection gamemath.Vec2 // last non-zero movement direction, used as facing
	Cooldown      int32         // frames left until the player may fire again
}

// Bullet travels in a straight line until it leaves the max range.
type Bullet struct {
	ID        uint32
	Owner     int
	Position  gamemath.Vec2
	Direction gamemath.Vec2 // unit vector
}

// State is every piece of rollback-tracked data. Players are ordered by
// handle and Bullets by ID so the flat layout is identical on every peer.
type State struct {
	Frame        Frame
	Players      []Player
	Bullets      []Bullet
	NextBulletID uint32
}

// New creates the frame 0 state for numPlayers players at their spawns.
func New(cfg config.SimConfig, numPlayers int) State {
	s := State{
		Frame:   0,
		Players: make([]Player, numPlayers),
	}
	for h := range s.Players {
		s.Players[h] = Player{
			Handle:   h,
			Position: cfg.SpawnFor(h),
		}
	}
	return s
}

// Clone returns a deep copy that shares no memory with s.
func (s State) Clone() State {
	c := s
	c.Players = append([]Player(nil), s.Players...)
	if s.Bullets != nil {
		c.Bullets = append([]Bullet(nil), s.Bullets...)
	}
	return c
}

// Player returns the player with the given handle.
func (s *State) Player(handle int) (*Player, bool) {
	if handle < 0 || handle >= len(s.Players) {
		return nil, false
	}
	return &s.Players[handle], true
}
