package assets

import (
	"embed"
	"io/fs"

	"github.com/automoto/rollback-arena/shared/leveldata"
)

// DefaultArena is the arena every peer loads unless told otherwise. Peers in
// one session must load the same file.
const DefaultArena = "extreme_arena"

var (
	//go:embed all:arenas
	assetFS embed.FS
)

// FS exposes the embedded assets, rooted at the assets directory.
func FS() fs.FS { return assetFS }

// LoadArenas returns every embedded arena keyed by name and the sorted names.
func LoadArenas() (map[string]*leveldata.Arena, []string, error) {
	return leveldata.LoadAllArenas(assetFS, "arenas")
}
