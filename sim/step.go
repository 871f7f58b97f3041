package sim

import (
	"fmt"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/automoto/rollback-arena/shared/input"
)

// Step advances s by one frame using one input per player (indexed by
// handle) and returns the new state. s itself is left untouched.
func Step(cfg config.SimConfig, s State, inputs []input.Packet) State {
	if len(inputs) != len(s.Players) {
		panic(fmt.Sprintf("sim: %d inputs for %d players", len(inputs), len(s.Players)))
	}

	next := s.Clone()

	// Bullets already in flight move before anyone fires this frame.
	stepBullets(cfg, &next)

	for h := range next.Players {
		stepPlayer(cfg, &next, &next.Players[h], inputs[h])
	}

	next.Frame++
	return next
}

// stepBullets integrates every bullet and drops the ones past max range,
// preserving ID order.
func stepBullets(cfg config.SimConfig, s *State) {
	kept := s.Bullets[:0]
	for _, b := range s.Bullets {
		b.Position = b.Position.Add(b.Direction.Scale(cfg.BulletSpeed))
		if gamemath.Exceeds(b.Position, cfg.BulletMaxRange) {
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		kept = nil
	}
	s.Bullets = kept
}

func stepPlayer(cfg config.SimConfig, s *State, p *Player, in input.Packet) {
	// --- Movement ---
	dir := input.Direction(in)
	if !dir.IsZero() {
		p.Position = p.Position.Add(dir.Scale(cfg.MoveSpeed))
		p.LastDirection = dir
	}

	// --- Clamp to playfield (after integration) ---
	p.Position = gamemath.ClampToExtents(p.Position, cfg.HalfExtentX, cfg.HalfExtentY)

	// --- Cooldown ---
	if p.Cooldown > 0 {
		p.Cooldown--
	}

	// --- Fire ---
	if !input.HasFired(in) || p.Cooldown > 0 {
		return
	}
	p.Cooldown = cfg.FireCooldownFrames()
	s.Bullets = append(s.Bullets, Bullet{
		ID:        s.NextBulletID,
		Owner:     p.Handle,
		Position:  p.Position,
		Direction: aimDirection(p, input.Aim(in)),
	})
	s.NextBulletID++
}

// aimDirection points from the player to the aim point. Aiming at yourself
// falls back to facing, and a player that never moved shoots along +X.
func aimDirection(p *Player, aim gamemath.Vec2) gamemath.Vec2 {
	if d := aim.Sub(p.Position).Normalize(); !d.IsZero() {
		return d
	}
	if d := p.LastDirection.Normalize(); !d.IsZero() {
		return d
	}
	return gamemath.Vec2{X: 1}
}
