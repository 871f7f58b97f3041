package config

import "testing"

func TestDefaultsValidate(t *testing.T) {
	if err := DefaultSim().Validate(); err != nil {
		t.Fatalf("DefaultSim: %v", err)
	}
	if err := DefaultNet().Validate(); err != nil {
		t.Fatalf("DefaultNet: %v", err)
	}
}

func TestDefaultNetMatchesSessionShape(t *testing.T) {
	n := DefaultNet()
	if n.Quorum != 2 {
		t.Fatalf("quorum = %d, want 2", n.Quorum)
	}
	if n.InputDelay != 2 {
		t.Fatalf("input delay = %d, want 2", n.InputDelay)
	}
	if n.BootstrapTimeout != 0 {
		t.Fatalf("bootstrap timeout = %v, want 0 (wait forever)", n.BootstrapTimeout)
	}
}

func TestValidateRejects(t *testing.T) {
	sim := DefaultSim()
	sim.HalfExtentX = 0
	if sim.Validate() == nil {
		t.Fatal("zero half extent accepted")
	}

	sim = DefaultSim()
	sim.Spawns = nil
	if sim.Validate() == nil {
		t.Fatal("empty spawns accepted")
	}

	net := DefaultNet()
	net.Quorum = 1
	if net.Validate() == nil {
		t.Fatal("quorum 1 accepted")
	}

	net = DefaultNet()
	net.MaxPrediction = 0
	if net.Validate() == nil {
		t.Fatal("zero max prediction accepted")
	}
}

func TestFireCooldownFrames(t *testing.T) {
	sim := DefaultSim()
	if got := sim.FireCooldownFrames(); got != 6 {
		t.Fatalf("FireCooldownFrames = %d, want 6", got)
	}
	sim.FireCooldown = 0
	if got := sim.FireCooldownFrames(); got != 0 {
		t.Fatalf("FireCooldownFrames with no cooldown = %d, want 0", got)
	}
}

func TestSpawnForCycles(t *testing.T) {
	sim := DefaultSim()
	if got := sim.SpawnFor(2); got != sim.Spawns[0] {
		t.Fatalf("SpawnFor(2) = %v, want %v", got, sim.Spawns[0])
	}
}
