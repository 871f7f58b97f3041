package rollback

import (
	"errors"
	"fmt"
	"log"

	"github.com/automoto/rollback-arena/shared/input"
	"github.com/automoto/rollback-arena/shared/messages"
	"github.com/automoto/rollback-arena/sim"
)

// Transport moves session messages between peers. Implementations receive on
// their own goroutines and only queue; Drain* must not block.
type Transport interface {
	SendInput(messages.PeerInput) error
	SendChecksum(messages.ChecksumReport) error
	DrainInputs() []messages.PeerInput
	DrainChecksums() []messages.ChecksumReport
}

// Session ties an Engine to a Transport. Tick is the whole per-frame
// protocol: take in what arrived, queue and send local input, simulate.
type Session struct {
	engine    *Engine
	transport Transport

	// Local inputs the transport refused; resent in order before new ones.
	unsent []messages.PeerInput
}

func NewSession(cfg Config, transport Transport) (*Session, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Session{engine: engine, transport: transport}, nil
}

// Tick advances the session by one frame using the local player's input.
// ErrPredictionThreshold means the peers are too far behind and nothing was
// simulated; every other error is fatal to the session.
func (s *Session) Tick(local input.Packet) error {
	if err := s.receive(); err != nil {
		return err
	}

	frame, err := s.engine.AddLocalInput(local)
	if err != nil {
		s.flush()
		return err
	}

	data, _ := local.MarshalBinary()
	s.unsent = append(s.unsent, messages.PeerInput{
		Handle: s.engine.LocalHandle(),
		Frame:  int32(frame),
		Packet: data,
	})
	s.flush()

	if err := s.engine.AdvanceFrame(); err != nil {
		return err
	}

	for _, report := range s.engine.DrainChecksums() {
		if err := s.transport.SendChecksum(report); err != nil {
			log.Printf("[rollback] checksum for frame %d not sent: %v", report.Frame, err)
		}
	}
	return nil
}

// receive feeds everything the transport queued into the engine.
func (s *Session) receive() error {
	for _, msg := range s.transport.DrainInputs() {
		p, err := input.Decode(msg.Packet)
		if err != nil {
			return fmt.Errorf("input from handle %d frame %d: %w", msg.Handle, msg.Frame, err)
		}
		if err := s.engine.AddRemoteInput(msg.Handle, sim.Frame(msg.Frame), p); err != nil {
			return err
		}
	}
	for _, report := range s.transport.DrainChecksums() {
		if err := s.engine.AddRemoteChecksum(report); err != nil {
			return err
		}
	}
	return nil
}

// flush sends queued local inputs in frame order, stopping at the first
// failure so the peer never sees a gap.
func (s *Session) flush() {
	sent := 0
	for _, msg := range s.unsent {
		if err := s.transport.SendInput(msg); err != nil {
			if sent == 0 {
				log.Printf("[rollback] input for frame %d not sent, will retry: %v", msg.Frame, err)
			}
			break
		}
		sent++
	}
	s.unsent = append(s.unsent[:0], s.unsent[sent:]...)
}

// IsFatal reports whether err from Tick ends the session.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrPredictionThreshold)
}

func (s *Session) Engine() *Engine         { return s.engine }
func (s *Session) State() sim.State        { return s.engine.State() }
func (s *Session) Stats() Stats            { return s.engine.Stats() }
func (s *Session) Pending() int            { return len(s.unsent) }
func (s *Session) LocalHandle() int        { return s.engine.LocalHandle() }
func (s *Session) CurrentFrame() sim.Frame { return s.engine.CurrentFrame() }
