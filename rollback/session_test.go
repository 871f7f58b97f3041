package rollback

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/automoto/rollback-arena/shared/input"
	"github.com/automoto/rollback-arena/shared/messages"
)

var errRefused = errors.New("refused")

type envelope struct {
	at    int
	input *messages.PeerInput
	sum   *messages.ChecksumReport
}

// fakeTransport delivers in FIFO order once a message is latency ticks old.
type fakeTransport struct {
	clock   *int
	latency int
	peers   []*fakeTransport
	inbox   []envelope
	refuse  int
	sent    []messages.PeerInput
}

func (f *fakeTransport) SendInput(m messages.PeerInput) error {
	if f.refuse > 0 {
		f.refuse--
		return errRefused
	}
	f.sent = append(f.sent, m)
	for _, p := range f.peers {
		msg := m
		p.inbox = append(p.inbox, envelope{at: *f.clock + f.latency, input: &msg})
	}
	return nil
}

func (f *fakeTransport) SendChecksum(r messages.ChecksumReport) error {
	for _, p := range f.peers {
		msg := r
		p.inbox = append(p.inbox, envelope{at: *f.clock + f.latency, sum: &msg})
	}
	return nil
}

func (f *fakeTransport) due() []envelope {
	n := 0
	for n < len(f.inbox) && f.inbox[n].at <= *f.clock {
		n++
	}
	out := f.inbox[:n:n]
	f.inbox = f.inbox[n:]
	return out
}

// DrainInputs and DrainChecksums split one delivery between them, so a
// checksum behind an undelivered input waits with it.
func (f *fakeTransport) DrainInputs() []messages.PeerInput {
	var out []messages.PeerInput
	var keep []envelope
	for _, env := range f.due() {
		if env.input != nil {
			out = append(out, *env.input)
		} else {
			keep = append(keep, env)
		}
	}
	f.inbox = append(keep, f.inbox...)
	return out
}

func (f *fakeTransport) DrainChecksums() []messages.ChecksumReport {
	var out []messages.ChecksumReport
	var keep []envelope
	for _, env := range f.due() {
		if env.sum != nil {
			out = append(out, *env.sum)
		} else {
			keep = append(keep, env)
		}
	}
	f.inbox = append(keep, f.inbox...)
	return out
}

func newPair(t *testing.T, latency, checksumInterval int) (*Session, *Session, *fakeTransport, *fakeTransport, *int) {
	t.Helper()
	clock := new(int)
	ta := &fakeTransport{clock: clock, latency: latency}
	tb := &fakeTransport{clock: clock, latency: latency}
	ta.peers = []*fakeTransport{tb}
	tb.peers = []*fakeTransport{ta}

	cfgA := testConfig(0)
	cfgA.ChecksumInterval = checksumInterval
	cfgB := testConfig(1)
	cfgB.ChecksumInterval = checksumInterval

	a, err := NewSession(cfgA, ta)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	b, err := NewSession(cfgB, tb)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return a, b, ta, tb, clock
}

func tickSession(s *Session) error {
	f := s.CurrentFrame() + 2
	return s.Tick(scripted(s.LocalHandle(), f))
}

func TestSessionsConvergeUnderLatency(t *testing.T) {
	a, b, ta, tb, clock := newPair(t, 3, 10)

	for i := 0; i < 300; i++ {
		*clock++
		if err := tickSession(a); err != nil {
			t.Fatalf("tick %d peer a: %v", i, err)
		}
		if err := tickSession(b); err != nil {
			t.Fatalf("tick %d peer b: %v", i, err)
		}
	}

	ta.latency, tb.latency = 0, 0
	for i := 0; i < 10; i++ {
		*clock++
		if err := tickSession(a); err != nil {
			t.Fatalf("settle tick %d peer a: %v", i, err)
		}
		if err := tickSession(b); err != nil {
			t.Fatalf("settle tick %d peer b: %v", i, err)
		}
	}

	sa, sb := a.Stats(), b.Stats()
	if sa.Stalls != 0 || sb.Stalls != 0 {
		t.Fatalf("stalls a=%d b=%d, want none", sa.Stalls, sb.Stalls)
	}
	if sa.Rollbacks+sb.Rollbacks == 0 {
		t.Fatal("latency above the input delay should have caused rollbacks")
	}
	if sa.CurrentFrame != sb.CurrentFrame {
		t.Fatalf("frames a=%d b=%d, want equal", sa.CurrentFrame, sb.CurrentFrame)
	}
	if !bytes.Equal(stateBytes(t, a.State()), stateBytes(t, b.State())) {
		t.Fatal("peers ended on different states")
	}
}

func TestSessionMalformedPacketIsFatal(t *testing.T) {
	a, _, ta, _, clock := newPair(t, 0, 0)
	ta.inbox = append(ta.inbox, envelope{
		at:    *clock,
		input: &messages.PeerInput{Handle: 1, Frame: 2, Packet: []byte{1, 2, 3}},
	})

	err := tickSession(a)
	if !errors.Is(err, input.ErrMalformedPacket) {
		t.Fatalf("err = %v, want ErrMalformedPacket", err)
	}
	if !IsFatal(err) {
		t.Fatal("malformed packet should be fatal")
	}
}

func TestSessionRetriesUnsentInputsInOrder(t *testing.T) {
	a, _, ta, _, clock := newPair(t, 0, 0)
	ta.refuse = 2

	for i, wantPending := range []int{1, 2, 0} {
		*clock++
		if err := tickSession(a); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if got := a.Pending(); got != wantPending {
			t.Fatalf("tick %d: pending = %d, want %d", i, got, wantPending)
		}
	}

	if len(ta.sent) != 3 {
		t.Fatalf("sent %d inputs, want 3", len(ta.sent))
	}
	for i, m := range ta.sent {
		if want := int32(i + 2); m.Frame != want {
			t.Fatalf("sent[%d].Frame = %d, want %d", i, m.Frame, want)
		}
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrPredictionThreshold, false},
		{fmt.Errorf("tick: %w", ErrPredictionThreshold), false},
		{fmt.Errorf("tick: %w", ErrDesync), true},
		{ErrConflictingInput, true},
	}
	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.want {
			t.Fatalf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
