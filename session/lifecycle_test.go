package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/network"
	"github.com/automoto/rollback-arena/shared/input"
	"github.com/automoto/rollback-arena/shared/messages"
)

type fakeLink struct {
	state  network.ClientState
	err    error
	peerID string
	ready  []messages.RoomReady
	inputs []messages.PeerInput
	left   []messages.PeerLeft
	sent   []messages.PeerInput
}

func (f *fakeLink) State() network.ClientState { return f.state }
func (f *fakeLink) LastError() error           { return f.err }
func (f *fakeLink) PeerID() string             { return f.peerID }

func (f *fakeLink) Ready() (messages.RoomReady, bool) {
	if len(f.ready) == 0 {
		return messages.RoomReady{}, false
	}
	msg := f.ready[0]
	f.ready = f.ready[1:]
	return msg, true
}

func (f *fakeLink) SendInput(m messages.PeerInput) error {
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeLink) SendChecksum(messages.ChecksumReport) error { return nil }

func (f *fakeLink) DrainInputs() []messages.PeerInput {
	out := f.inputs
	f.inputs = nil
	return out
}

func (f *fakeLink) DrainChecksums() []messages.ChecksumReport { return nil }

func (f *fakeLink) DrainPeerLeft() []messages.PeerLeft {
	out := f.left
	f.left = nil
	return out
}

func newActive(t *testing.T) (*Lifecycle, *fakeLink) {
	t.Helper()
	link := &fakeLink{state: network.StateJoined, peerID: "me"}
	l := New(link, config.DefaultSim(), config.DefaultNet())

	if err := l.Tick(input.Packet{}); err != nil {
		t.Fatalf("bootstrap tick: %v", err)
	}
	if _, ok := l.Phase().(*Bootstrapping); !ok {
		t.Fatalf("phase = %T, want *Bootstrapping", l.Phase())
	}

	link.state = network.StateReady
	link.ready = append(link.ready, messages.RoomReady{Room: "extreme_arena", Peers: []string{"other", "me"}})
	if err := l.Tick(input.Packet{}); err != nil {
		t.Fatalf("handoff tick: %v", err)
	}
	active, ok := l.Phase().(*Active)
	if !ok {
		t.Fatalf("phase = %T, want *Active", l.Phase())
	}
	if active.Session.LocalHandle() != 1 {
		t.Fatalf("local handle = %d, want 1", active.Session.LocalHandle())
	}
	return l, link
}

func TestLifecycleHandsOffToActiveSession(t *testing.T) {
	l, link := newActive(t)

	for i := 0; i < 3; i++ {
		if err := l.Tick(input.Packet{Buttons: input.Right}); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if len(link.sent) != 3 {
		t.Fatalf("sent %d inputs, want 3", len(link.sent))
	}
	if link.sent[0].Handle != 1 || link.sent[0].Frame != 2 {
		t.Fatalf("first input = handle %d frame %d, want handle 1 frame 2", link.sent[0].Handle, link.sent[0].Frame)
	}
}

func TestLifecycleStallIsNotFatal(t *testing.T) {
	l, _ := newActive(t)
	net := config.DefaultNet()

	// The other peer never sends anything: the session stalls but survives.
	for i := 0; i < net.InputDelay+net.MaxPrediction+5; i++ {
		if err := l.Tick(input.Packet{}); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	active := l.Phase().(*Active)
	if got := active.Session.Stats().Stalls; got != 5 {
		t.Fatalf("stalls = %d, want 5", got)
	}
}

func TestLifecyclePeerLeft(t *testing.T) {
	l, link := newActive(t)
	link.left = append(link.left, messages.PeerLeft{PeerID: "other"})

	if err := l.Tick(input.Packet{}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if !l.Phase().(*Active).PeerLost {
		t.Fatal("PeerLost false after PeerLeft")
	}
	if !strings.Contains(l.Status(), "peer lost") {
		t.Fatalf("status = %q, want it to mention the lost peer", l.Status())
	}
}

func TestLifecycleProtocolErrorIsTerminal(t *testing.T) {
	l, link := newActive(t)
	link.inputs = append(link.inputs, messages.PeerInput{Handle: 0, Frame: 2, Packet: []byte{0xff}})

	err := l.Tick(input.Packet{})
	if !errors.Is(err, input.ErrMalformedPacket) {
		t.Fatalf("err = %v, want ErrMalformedPacket", err)
	}
	failed, ok := l.Phase().(*Failed)
	if !ok {
		t.Fatalf("phase = %T, want *Failed", l.Phase())
	}
	if again := l.Tick(input.Packet{}); again != failed.Err {
		t.Fatalf("tick after failure = %v, want %v", again, failed.Err)
	}
}

func TestLifecycleRejectedJoinFails(t *testing.T) {
	link := &fakeLink{state: network.StateError, err: network.ErrRejected}
	l := New(link, config.DefaultSim(), config.DefaultNet())

	if err := l.Tick(input.Packet{}); !errors.Is(err, network.ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
	if _, ok := l.Phase().(*Failed); !ok {
		t.Fatalf("phase = %T, want *Failed", l.Phase())
	}
}

func TestLifecycleFailsWhenLinkDrops(t *testing.T) {
	l, link := newActive(t)
	link.state = network.StateDisconnected
	link.err = network.ErrLinkClosed

	if err := l.Tick(input.Packet{}); !errors.Is(err, network.ErrLinkClosed) {
		t.Fatalf("err = %v, want ErrLinkClosed", err)
	}
	if _, ok := l.Phase().(*Failed); !ok {
		t.Fatalf("phase = %T, want *Failed", l.Phase())
	}
}
