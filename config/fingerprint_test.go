package config

import (
	"testing"
	"time"

	"github.com/automoto/rollback-arena/shared/gamemath"
)

func TestFingerprintIgnoresTransportSettings(t *testing.T) {
	sim, net := DefaultSim(), DefaultNet()
	want := Fingerprint(sim, net)

	net.SignalURL = "ws://elsewhere:1"
	net.Room = "other"
	net.BootstrapTimeout = time.Minute
	if got := Fingerprint(sim, net); got != want {
		t.Fatalf("fingerprint changed with transport settings: %x, want %x", got, want)
	}
}

func TestFingerprintChangesWithSessionSettings(t *testing.T) {
	base := Fingerprint(DefaultSim(), DefaultNet())

	tests := map[string]func(*SimConfig, *NetConfig){
		"extents":           func(s *SimConfig, _ *NetConfig) { s.HalfExtentX = 12 },
		"spawn":             func(s *SimConfig, _ *NetConfig) { s.Spawns = []gamemath.Vec2{{X: -3}, {X: 2}} },
		"extra spawn":       func(s *SimConfig, _ *NetConfig) { s.Spawns = append(s.Spawns, gamemath.Vec2{}) },
		"cooldown":          func(s *SimConfig, _ *NetConfig) { s.FireCooldown = time.Second },
		"input delay":       func(_ *SimConfig, n *NetConfig) { n.InputDelay = 3 },
		"checksum interval": func(_ *SimConfig, n *NetConfig) { n.ChecksumInterval = 0 },
	}
	for name, change := range tests {
		sim, net := DefaultSim(), DefaultNet()
		change(&sim, &net)
		if Fingerprint(sim, net) == base {
			t.Fatalf("%s: fingerprint unchanged", name)
		}
	}
}
