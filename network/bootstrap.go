package network

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/shared/messages"
)

// ErrQuorumTimeout is returned by Poll when the room did not fill up within
// the configured bootstrap timeout.
var ErrQuorumTimeout = errors.New("timed out waiting for peers")

// LinkError returns the terminal error of a link that has failed or dropped,
// or nil while it is still usable. It must only be asked after Connect.
func LinkError(d Discovery) error {
	switch d.State() {
	case StateError:
		if err := d.LastError(); err != nil {
			return err
		}
		return errNotConnected
	case StateDisconnected:
		if err := d.LastError(); err != nil {
			return err
		}
		return ErrLinkClosed
	}
	return nil
}

// Discovery is what Bootstrap needs from the signaling link. *Client
// implements it.
type Discovery interface {
	State() ClientState
	LastError() error
	PeerID() string
	Ready() (messages.RoomReady, bool)
}

// Handoff describes a session that is ready to run. Peers are in join order:
// a peer's index is its player handle.
type Handoff struct {
	Room        string
	Peers       []string
	LocalHandle int
}

func (h Handoff) NumPlayers() int { return len(h.Peers) }

// Bootstrap waits for the signaling server to fill the room. Poll it once per
// tick; it never blocks. After it has handed off a session, or failed, it is
// inert and Poll keeps returning the same outcome.
type Bootstrap struct {
	discovery Discovery
	quorum    int
	timeout   time.Duration // 0 waits forever
	now       func() time.Time

	started time.Time
	done    bool
	err     error
}

func NewBootstrap(d Discovery, cfg config.NetConfig) *Bootstrap {
	return newBootstrap(d, cfg, time.Now)
}

func newBootstrap(d Discovery, cfg config.NetConfig, now func() time.Time) *Bootstrap {
	return &Bootstrap{
		discovery: d,
		quorum:    cfg.Quorum,
		timeout:   cfg.BootstrapTimeout,
		now:       now,
		started:   now(),
	}
}

// Poll checks for readiness. It returns the handoff exactly once; every later
// call returns ok == false. A non-nil error is terminal.
func (b *Bootstrap) Poll() (Handoff, bool, error) {
	if b.done || b.err != nil {
		return Handoff{}, false, b.err
	}

	if err := LinkError(b.discovery); err != nil {
		b.err = fmt.Errorf("bootstrap: %w", err)
		return Handoff{}, false, b.err
	}

	if ready, ok := b.discovery.Ready(); ok {
		h, err := b.handoff(ready)
		if err != nil {
			b.err = err
			return Handoff{}, false, err
		}
		b.done = true
		log.Printf("[bootstrap] room %q ready, local handle %d of %d", h.Room, h.LocalHandle, h.NumPlayers())
		return h, true, nil
	}

	if b.timeout > 0 {
		if waited := b.now().Sub(b.started); waited >= b.timeout {
			b.err = fmt.Errorf("%w: %d peers after %s", ErrQuorumTimeout, b.quorum, waited.Round(time.Millisecond))
			return Handoff{}, false, b.err
		}
	}
	return Handoff{}, false, nil
}

func (b *Bootstrap) handoff(ready messages.RoomReady) (Handoff, error) {
	if len(ready.Peers) != b.quorum {
		return Handoff{}, fmt.Errorf("bootstrap: room has %d peers, want %d", len(ready.Peers), b.quorum)
	}
	self := b.discovery.PeerID()
	local := -1
	for i, id := range ready.Peers {
		if id == self {
			if local >= 0 {
				return Handoff{}, fmt.Errorf("bootstrap: peer %s listed twice", id)
			}
			local = i
		}
	}
	if local < 0 {
		return Handoff{}, fmt.Errorf("bootstrap: local peer %q not in room roster", self)
	}
	return Handoff{
		Room:        ready.Room,
		Peers:       append([]string(nil), ready.Peers...),
		LocalHandle: local,
	}, nil
}

// Waiting reports whether Poll may still hand off a session.
func (b *Bootstrap) Waiting() bool {
	return !b.done && b.err == nil
}

// Elapsed is how long the bootstrap has been waiting.
func (b *Bootstrap) Elapsed() time.Duration {
	return b.now().Sub(b.started)
}
