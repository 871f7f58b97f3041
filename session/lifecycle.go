// Package session owns the one live match of the process. It starts out
// bootstrapping on the signaling link and, once the room fills, switches to an
// active rollback session over the same link.
package session

import (
	"fmt"
	"log"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/network"
	"github.com/automoto/rollback-arena/rollback"
	"github.com/automoto/rollback-arena/shared/input"
	"github.com/automoto/rollback-arena/shared/messages"
)

// Link is the signaling connection: discovery first, then session transport.
// *network.Client implements it.
type Link interface {
	network.Discovery
	rollback.Transport
	DrainPeerLeft() []messages.PeerLeft
}

// Phase is one arm of the lifecycle variant: *Bootstrapping, *Active or *Failed.
type Phase interface {
	phase()
}

// Bootstrapping waits for the room to reach its quorum.
type Bootstrapping struct {
	Bootstrap *network.Bootstrap
}

// Active runs the rollback session.
type Active struct {
	Session  *rollback.Session
	Handoff  network.Handoff
	PeerLost bool // a peer left; progress stalls at the prediction threshold
}

// Failed is terminal.
type Failed struct {
	Err error
}

func (*Bootstrapping) phase() {}
func (*Active) phase()        {}
func (*Failed) phase()        {}

// Lifecycle moves the match between phases. Like the engine it wraps, it is
// driven by the game loop only.
type Lifecycle struct {
	link  Link
	sim   config.SimConfig
	net   config.NetConfig
	phase Phase
}

func New(link Link, simCfg config.SimConfig, netCfg config.NetConfig) *Lifecycle {
	return &Lifecycle{
		link:  link,
		sim:   simCfg,
		net:   netCfg,
		phase: &Bootstrapping{Bootstrap: network.NewBootstrap(link, netCfg)},
	}
}

// Phase returns the current phase. Switch on its concrete type.
func (l *Lifecycle) Phase() Phase { return l.phase }

// Tick advances whatever phase is current by one frame. local is ignored
// while bootstrapping. A returned error is terminal and the lifecycle is
// Failed from then on.
func (l *Lifecycle) Tick(local input.Packet) error {
	switch p := l.phase.(type) {
	case *Bootstrapping:
		return l.tickBootstrap(p)
	case *Active:
		return l.tickActive(p, local)
	case *Failed:
		return p.Err
	}
	return nil
}

func (l *Lifecycle) tickBootstrap(p *Bootstrapping) error {
	h, ok, err := p.Bootstrap.Poll()
	if err != nil {
		return l.fail(err)
	}
	if !ok {
		return nil
	}

	cfg := rollback.ConfigFrom(l.sim, l.net, h.NumPlayers(), h.LocalHandle)
	s, err := rollback.NewSession(cfg, l.link)
	if err != nil {
		return l.fail(fmt.Errorf("start session: %w", err))
	}
	l.phase = &Active{Session: s, Handoff: h}
	return nil
}

func (l *Lifecycle) tickActive(p *Active, local input.Packet) error {
	// Every input travels over the link, so without it no frame can be
	// confirmed again.
	if err := network.LinkError(l.link); err != nil {
		return l.fail(fmt.Errorf("session: %w", err))
	}

	for _, left := range l.link.DrainPeerLeft() {
		log.Printf("[session] peer %s left the room", left.PeerID)
		p.PeerLost = true
	}

	// A stall is counted in the session stats and retried next tick.
	if err := p.Session.Tick(local); rollback.IsFatal(err) {
		return l.fail(err)
	}
	return nil
}

func (l *Lifecycle) fail(err error) error {
	log.Printf("[session] failed: %v", err)
	l.phase = &Failed{Err: err}
	return err
}

// Status is a one-line description for the HUD.
func (l *Lifecycle) Status() string {
	switch p := l.phase.(type) {
	case *Bootstrapping:
		return fmt.Sprintf("%s (%ds)", l.link.State(), int(p.Bootstrap.Elapsed().Seconds()))
	case *Active:
		st := p.Session.Stats()
		status := fmt.Sprintf("frame %d confirmed %d rollbacks %d", st.CurrentFrame, st.ConfirmedFrame, st.Rollbacks)
		if p.PeerLost {
			status += " - peer lost"
		}
		return status
	case *Failed:
		return "error: " + p.Err.Error()
	}
	return ""
}
