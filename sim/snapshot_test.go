package sim

import (
	"bytes"
	"testing"

	"github.com/automoto/rollback-arena/shared/input"
)

func TestSnapshotRoundTrip(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, 2)
	for _, in := range scriptedInputs(30) {
		s = Step(cfg, s, in)
	}
	if len(s.Bullets) == 0 {
		t.Fatal("test history should leave bullets in flight")
	}

	data := mustBytes(t, s)
	var restored State
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bytes.Equal(data, mustBytes(t, restored)) {
		t.Fatal("restored snapshot encodes differently")
	}

	// The restored state must simulate identically.
	next := []input.Packet{fire(1, 1), {}}
	if !bytes.Equal(mustBytes(t, Step(cfg, s, next)), mustBytes(t, Step(cfg, restored, next))) {
		t.Fatal("restored snapshot simulates differently")
	}
}

func TestChecksumSeesSmallChanges(t *testing.T) {
	cfg := testConfig()
	a := New(cfg, 2)
	b := a.Clone()
	b.Players[1].Position.X += 0.001

	ca, err := a.Checksum()
	if err != nil {
		t.Fatal(err)
	}
	cb, err := b.Checksum()
	if err != nil {
		t.Fatal(err)
	}
	if ca == cb {
		t.Fatal("different states produced the same checksum")
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	cfg := testConfig()
	s := Step(cfg, New(cfg, 2), []input.Packet{fire(5, 0), {}})
	c := s.Clone()
	c.Players[0].Position.X = 99
	c.Bullets[0].Position.X = 99
	if s.Players[0].Position.X == 99 || s.Bullets[0].Position.X == 99 {
		t.Fatal("clone shares memory with original")
	}
}
