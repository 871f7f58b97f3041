package systems

import (
	"time"

	"github.com/automoto/rollback-arena/archetypes"
	"github.com/automoto/rollback-arena/components"
	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/automoto/rollback-arena/sim"
	"github.com/automoto/rollback-arena/tags"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
)

const (
	// A player moving further than this many steps in one tick was corrected
	// by a rollback rather than walking there.
	snapSteps = 3

	smoothDuration = 100 * time.Millisecond
)

// Mirror keeps a donburi world in step with the latest simulated state. The
// world is only ever written here; the simulation never reads it back.
type Mirror struct {
	world   donburi.World
	local   int
	cfg     config.SimConfig
	players map[int]donburi.Entity
	bullets map[uint32]donburi.Entity
	seen    map[uint32]bool
}

func NewMirror(w donburi.World, localHandle int, cfg config.SimConfig) *Mirror {
	return &Mirror{
		world:   w,
		local:   localHandle,
		cfg:     cfg,
		players: make(map[int]donburi.Entity),
		bullets: make(map[uint32]donburi.Entity),
		seen:    make(map[uint32]bool),
	}
}

// Sync creates, updates and removes entities so the world matches s.
func (m *Mirror) Sync(s sim.State) {
	for i := range s.Players {
		m.syncPlayer(&s.Players[i])
	}

	clear(m.seen)
	for _, b := range s.Bullets {
		m.seen[b.ID] = true
		entity, ok := m.bullets[b.ID]
		if !ok || !m.world.Valid(entity) {
			entry := archetypes.Bullet.Spawn(m.world)
			entity = entry.Entity()
			m.bullets[b.ID] = entity
		}
		components.Bullet.SetValue(m.world.Entry(entity), components.BulletData{
			ID:       b.ID,
			Owner:    b.Owner,
			Position: b.Position,
		})
	}
	for id, entity := range m.bullets {
		if m.seen[id] {
			continue
		}
		if m.world.Valid(entity) {
			m.world.Remove(entity)
		}
		delete(m.bullets, id)
	}
}

func (m *Mirror) syncPlayer(p *sim.Player) {
	entity, ok := m.players[p.Handle]
	if !ok || !m.world.Valid(entity) {
		entry := archetypes.Player.Spawn(m.world)
		if p.Handle == m.local {
			entry.AddComponent(tags.Local)
		}
		components.Player.SetValue(entry, components.PlayerData{Handle: p.Handle, Position: p.Position})
		m.players[p.Handle] = entry.Entity()
		entity = entry.Entity()
	}

	entry := m.world.Entry(entity)
	data := components.Player.Get(entry)
	smooth := components.Smooth.Get(entry)

	jump := p.Position.Sub(data.Position)
	limit := m.cfg.MoveSpeed * snapSteps
	if jump.LengthSq() > float32(limit*limit) {
		drawn := DrawPosition(data.Position, smooth)
		smooth.Offset = drawn.Sub(p.Position)
		smooth.Weight = 1
		smooth.Tween = gween.New(1, 0, float32(smoothDuration.Seconds()), ease.OutQuad)
	}

	data.Position = p.Position
	if !p.LastDirection.IsZero() {
		data.Facing = p.LastDirection
	}
	data.Cooldown = 0
	if frames := m.cfg.FireCooldownFrames(); frames > 0 {
		data.Cooldown = float32(p.Cooldown) / float32(frames)
	}
}

// LocalPosition is the simulated position of the local player, without any
// correction offset.
func (m *Mirror) LocalPosition() (gamemath.Vec2, bool) {
	entity, ok := m.players[m.local]
	if !ok || !m.world.Valid(entity) {
		return gamemath.Vec2{}, false
	}
	return components.Player.Get(m.world.Entry(entity)).Position, true
}

// UpdateSmoothing advances every running correction tween by dt seconds.
func UpdateSmoothing(w donburi.World, dt float32) {
	components.Smooth.Each(w, func(e *donburi.Entry) {
		s := components.Smooth.Get(e)
		if s.Tween == nil {
			return
		}
		weight, done := s.Tween.Update(dt)
		s.Weight = weight
		if done {
			*s = components.SmoothData{}
		}
	})
}

// DrawPosition is where an entity at pos should be drawn this frame.
func DrawPosition(pos gamemath.Vec2, s *components.SmoothData) gamemath.Vec2 {
	if s == nil || s.Weight == 0 {
		return pos
	}
	return pos.Add(s.Offset.Scale(s.Weight))
}
