package leveldata

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/shared/gamemath"
	"github.com/lafriks/go-tiled"
)

const spawnGroup = "PlayerSpawn"

var ErrNoSpawns = errors.New("arena has no player spawns")

// LoadArena parses a TMX file. It takes an fs.FS so callers can pass embed.FS
// or os.DirFS.
func LoadArena(fsys fs.FS, tmxPath string) (*Arena, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}
	if levelMap.TileWidth <= 0 || levelMap.TileHeight <= 0 {
		return nil, fmt.Errorf("load TMX %s: tile size %dx%d", tmxPath, levelMap.TileWidth, levelMap.TileHeight)
	}

	arena := &Arena{
		Name:        strings.TrimSuffix(filepath.Base(tmxPath), ".tmx"),
		HalfExtentX: float32(levelMap.Width) / 2,
		HalfExtentY: float32(levelMap.Height) / 2,
	}

	type spawn struct {
		index int
		pos   gamemath.Vec2
	}
	var spawns []spawn

	tileW := float64(levelMap.TileWidth)
	tileH := float64(levelMap.TileHeight)
	for _, og := range levelMap.ObjectGroups {
		if og.Name != spawnGroup {
			continue
		}
		for _, o := range og.Objects {
			spawns = append(spawns, spawn{
				index: o.Properties.GetInt("spawnIndex"),
				pos: gamemath.Vec2{
					X: float32(o.X/tileW) - arena.HalfExtentX,
					Y: arena.HalfExtentY - float32(o.Y/tileH),
				},
			})
		}
	}
	if len(spawns) == 0 {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, ErrNoSpawns)
	}

	// Handle order follows spawnIndex, then left to right.
	sort.SliceStable(spawns, func(i, j int) bool {
		if spawns[i].index != spawns[j].index {
			return spawns[i].index < spawns[j].index
		}
		return spawns[i].pos.X < spawns[j].pos.X
	})
	for _, s := range spawns {
		arena.Spawns = append(arena.Spawns, s.pos)
	}
	return arena, nil
}

// Apply copies the arena layout into cfg, leaving the tuning untouched.
func (a *Arena) Apply(cfg *config.SimConfig) {
	cfg.HalfExtentX = a.HalfExtentX
	cfg.HalfExtentY = a.HalfExtentY
	cfg.Spawns = append([]gamemath.Vec2(nil), a.Spawns...)
}

// LoadAllArenas discovers all .tmx files in dir within fsys and returns them
// keyed by stem name plus a sorted list of names.
func LoadAllArenas(fsys fs.FS, dir string) (map[string]*Arena, []string, error) {
	pattern := dir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	arenas := make(map[string]*Arena, len(matches))
	names := make([]string, 0, len(matches))
	for _, path := range matches {
		arena, err := LoadArena(fsys, path)
		if err != nil {
			return nil, nil, err
		}
		arenas[arena.Name] = arena
		names = append(names, arena.Name)
	}

	sort.Strings(names)
	return arenas, names, nil
}
