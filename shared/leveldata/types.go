// Package leveldata reads arena layouts from TMX files. It has no
// dependencies on ebitengine or donburi, so the simulation config can use it
// headless.
package leveldata

import "github.com/automoto/rollback-arena/shared/gamemath"

// Arena is the playfield described by a TMX map, in playfield units: one tile
// is one unit and the map center is the origin, y pointing up.
type Arena struct {
	Name        string
	HalfExtentX float32
	HalfExtentY float32
	Spawns      []gamemath.Vec2 // indexed by player handle
}
