package leveldata

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/shared/gamemath"
)

const arenaTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="20" height="10" tilewidth="16" tileheight="16" infinite="0" nextlayerid="2" nextobjectid="4">
 <objectgroup id="1" name="PlayerSpawn">
  <object id="1" x="192" y="80">
   <properties><property name="spawnIndex" type="int" value="1"/></properties>
   <point/>
  </object>
  <object id="2" x="128" y="48">
   <properties><property name="spawnIndex" type="int" value="0"/></properties>
   <point/>
  </object>
 </objectgroup>
 <objectgroup id="2" name="Decoration">
  <object id="3" x="0" y="0"><point/></object>
 </objectgroup>
</map>`

const emptyTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="4" tilewidth="16" tileheight="16" infinite="0" nextlayerid="1" nextobjectid="1">
</map>`

func TestLoadArena(t *testing.T) {
	fsys := fstest.MapFS{"arenas/duel.tmx": {Data: []byte(arenaTMX)}}

	arena, err := LoadArena(fsys, "arenas/duel.tmx")
	if err != nil {
		t.Fatalf("LoadArena: %v", err)
	}
	if arena.Name != "duel" || arena.HalfExtentX != 10 || arena.HalfExtentY != 5 {
		t.Fatalf("arena = %q %vx%v, want duel 10x5", arena.Name, arena.HalfExtentX, arena.HalfExtentY)
	}
	want := []gamemath.Vec2{{X: -2, Y: 2}, {X: 2, Y: 0}}
	if len(arena.Spawns) != len(want) {
		t.Fatalf("spawns = %v, want %v", arena.Spawns, want)
	}
	for i := range want {
		if arena.Spawns[i] != want[i] {
			t.Fatalf("spawn %d = %v, want %v", i, arena.Spawns[i], want[i])
		}
	}

	cfg := config.DefaultSim()
	arena.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("applied config invalid: %v", err)
	}
	if cfg.HalfExtentY != 5 || cfg.SpawnFor(1) != want[1] {
		t.Fatalf("applied config = %+v", cfg)
	}
}

func TestLoadArenaWithoutSpawns(t *testing.T) {
	fsys := fstest.MapFS{"empty.tmx": {Data: []byte(emptyTMX)}}
	if _, err := LoadArena(fsys, "empty.tmx"); !errors.Is(err, ErrNoSpawns) {
		t.Fatalf("err = %v, want ErrNoSpawns", err)
	}
}

func TestLoadAllArenas(t *testing.T) {
	fsys := fstest.MapFS{
		"arenas/b.tmx": {Data: []byte(arenaTMX)},
		"arenas/a.tmx": {Data: []byte(arenaTMX)},
	}
	arenas, names, err := LoadAllArenas(fsys, "arenas")
	if err != nil {
		t.Fatalf("LoadAllArenas: %v", err)
	}
	if len(names) != 2 || names[0] != "a" || arenas["b"] == nil {
		t.Fatalf("names = %v", names)
	}
}
