// Package rollback runs the simulation ahead of the network: remote inputs
// that have not arrived yet are predicted, and when the real input turns out
// different the engine restores the snapshot of that frame and replays.
package rollback

import (
	"errors"
	"fmt"
	"log"

	"github.com/automoto/rollback-arena/config"
	"github.com/automoto/rollback-arena/shared/input"
	"github.com/automoto/rollback-arena/shared/messages"
	"github.com/automoto/rollback-arena/sim"
)

var (
	// Protocol errors. Any of these ends the session.
	ErrFrameOrder       = errors.New("input frame out of order")
	ErrConflictingInput = errors.New("conflicting input for frame")
	ErrInvalidHandle    = errors.New("invalid player handle")
	ErrMissingSnapshot  = errors.New("snapshot not available")
	ErrDesync           = errors.New("desync detected")

	// ErrPredictionThreshold means the engine is MaxPrediction frames ahead
	// of the slowest peer. Not fatal: skip this tick and try again.
	ErrPredictionThreshold = errors.New("prediction threshold reached")
)

// FrameStatus is where a frame is in its lifecycle.
type FrameStatus int

const (
	FrameFuture      FrameStatus = iota // not simulated yet
	FrameSpeculative                    // simulated with at least one predicted input
	FrameConfirmed                      // every input real, snapshot still buffered
	FrameRetired                        // fell out of the rollback window
)

func (s FrameStatus) String() string {
	switch s {
	case FrameFuture:
		return "future"
	case FrameSpeculative:
		return "speculative"
	case FrameConfirmed:
		return "confirmed"
	case FrameRetired:
		return "retired"
	}
	return "unknown"
}

// Config describes one running session.
type Config struct {
	Sim              config.SimConfig
	NumPlayers       int
	LocalHandle      int
	InputDelay       int
	MaxPrediction    int
	ChecksumInterval int // 0 disables desync detection
}

// ConfigFrom builds an engine Config from the global tuning.
func ConfigFrom(simCfg config.SimConfig, netCfg config.NetConfig, numPlayers, localHandle int) Config {
	return Config{
		Sim:              simCfg,
		NumPlayers:       numPlayers,
		LocalHandle:      localHandle,
		InputDelay:       netCfg.InputDelay,
		MaxPrediction:    netCfg.MaxPrediction,
		ChecksumInterval: netCfg.ChecksumInterval,
	}
}

func (c Config) validate() error {
	if c.NumPlayers < 1 {
		return fmt.Errorf("need at least one player, got %d", c.NumPlayers)
	}
	if c.LocalHandle < 0 || c.LocalHandle >= c.NumPlayers {
		return fmt.Errorf("%w: local handle %d of %d", ErrInvalidHandle, c.LocalHandle, c.NumPlayers)
	}
	if c.InputDelay < 0 {
		return errors.New("input delay must not be negative")
	}
	if c.MaxPrediction < 1 {
		return errors.New("max prediction must be at least 1")
	}
	if c.ChecksumInterval < 0 {
		return errors.New("checksum interval must not be negative")
	}
	return c.Sim.Validate()
}

// Stats is a read-only summary for status displays.
type Stats struct {
	CurrentFrame   sim.Frame
	ConfirmedFrame sim.Frame
	Rollbacks      int
	Resimulated    int // frames replayed across all rollbacks
	Stalls         int // ticks refused by the prediction threshold
}

// Engine owns the simulation state, the snapshot ring and the per-player
// input queues. It is not safe for concurrent use: the game loop drives it and
// network goroutines only hand it inputs through a Transport.
type Engine struct {
	cfg Config

	state   sim.State // state at the start of current
	current sim.Frame // next frame to simulate

	queues    []*inputQueue
	snapshots *snapshotRing

	// Earliest frame whose real input differs from what was simulated.
	firstIncorrect sim.Frame

	// Desync detection
	localSums    map[sim.Frame]uint64
	remoteSums   map[sim.Frame][]messages.ChecksumReport
	nextChecksum sim.Frame
	outbox       []messages.ChecksumReport

	stats Stats
}

// NewEngine creates an engine at frame 0. The first InputDelay frames are
// filled with empty input for every player, on every peer alike.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// A remote peer can be MaxPrediction frames past our newest local input
	// and send InputDelay further ahead still; rollback needs inputs back to
	// MaxPrediction frames behind us.
	queueSize := 2*(cfg.MaxPrediction+2*cfg.InputDelay) + 8

	e := &Engine{
		cfg:            cfg,
		state:          sim.New(cfg.Sim, cfg.NumPlayers),
		queues:         make([]*inputQueue, cfg.NumPlayers),
		snapshots:      newSnapshotRing(cfg.MaxPrediction + 2),
		firstIncorrect: sim.NullFrame,
		localSums:      make(map[sim.Frame]uint64),
		remoteSums:     make(map[sim.Frame][]messages.ChecksumReport),
	}
	for h := range e.queues {
		e.queues[h] = newInputQueue(queueSize)
		for f := 0; f < cfg.InputDelay; f++ {
			e.queues[h].store(sim.Frame(f), input.Packet{})
		}
	}
	if cfg.ChecksumInterval > 0 {
		e.nextChecksum = sim.Frame(cfg.ChecksumInterval)
	}
	e.stats.ConfirmedFrame = e.ConfirmedFrame()
	return e, nil
}

func (e *Engine) LocalHandle() int { return e.cfg.LocalHandle }
func (e *Engine) NumPlayers() int  { return e.cfg.NumPlayers }

// CurrentFrame is the next frame to be simulated.
func (e *Engine) CurrentFrame() sim.Frame { return e.current }

// ConfirmedFrame is the newest frame for which every player's real input is
// known, or NullFrame.
func (e *Engine) ConfirmedFrame() sim.Frame {
	confirmed := e.queues[0].lastFrame
	for _, q := range e.queues[1:] {
		if q.lastFrame < confirmed {
			confirmed = q.lastFrame
		}
	}
	return confirmed
}

// State returns a copy of the latest simulated state, speculative or not.
func (e *Engine) State() sim.State {
	return e.state.Clone()
}

// ConfirmedState returns a copy of the newest state built only from real
// inputs, if it is still buffered.
func (e *Engine) ConfirmedState() (sim.State, bool) {
	f := e.ConfirmedFrame() + 1
	if f > e.current {
		f = e.current
	}
	if e.firstIncorrect != sim.NullFrame && e.firstIncorrect < f {
		return sim.State{}, false
	}
	if f == e.current {
		return e.state.Clone(), true
	}
	saved, ok := e.snapshots.get(f)
	if !ok {
		return sim.State{}, false
	}
	return saved.State.Clone(), true
}

func (e *Engine) Stats() Stats {
	s := e.stats
	s.CurrentFrame = e.current
	s.ConfirmedFrame = e.ConfirmedFrame()
	return s
}

// Status reports the lifecycle state of frame f.
func (e *Engine) Status(f sim.Frame) FrameStatus {
	if f >= e.current {
		return FrameFuture
	}
	if f > e.ConfirmedFrame() || (e.firstIncorrect != sim.NullFrame && f >= e.firstIncorrect) {
		return FrameSpeculative
	}
	if _, ok := e.snapshots.get(f); !ok {
		return FrameRetired
	}
	return FrameConfirmed
}

// CanAdvance reports whether another frame may be simulated without running
// past MaxPrediction speculative frames.
func (e *Engine) CanAdvance() bool {
	return int(e.current-e.ConfirmedFrame()) <= e.cfg.MaxPrediction
}

// AddLocalInput queues the local player's input for CurrentFrame+InputDelay
// and returns that frame. Call it once per tick, before AdvanceFrame.
func (e *Engine) AddLocalInput(p input.Packet) (sim.Frame, error) {
	if !e.CanAdvance() {
		e.stats.Stalls++
		return sim.NullFrame, ErrPredictionThreshold
	}
	q := e.queues[e.cfg.LocalHandle]
	f := e.current + sim.Frame(e.cfg.InputDelay)
	if q.lastFrame >= f {
		return sim.NullFrame, fmt.Errorf("%w: local input for frame %d already queued", ErrFrameOrder, f)
	}
	if q.lastFrame != f-1 {
		return sim.NullFrame, fmt.Errorf("%w: local input for frame %d after %d", ErrFrameOrder, f, q.lastFrame)
	}
	q.store(f, p)
	return f, nil
}

// AddRemoteInput records a remote player's real input. Inputs must arrive in
// frame order; a repeat of an already known input is ignored, a different
// one is a protocol violation. If the input contradicts what was predicted
// for an already simulated frame, the next AdvanceFrame rolls back.
func (e *Engine) AddRemoteInput(handle int, f sim.Frame, p input.Packet) error {
	if handle < 0 || handle >= e.cfg.NumPlayers {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, handle)
	}
	if handle == e.cfg.LocalHandle {
		return fmt.Errorf("%w: remote input for local handle %d", ErrConflictingInput, handle)
	}
	q := e.queues[handle]

	if f <= q.lastFrame {
		known, ok := q.get(f)
		if ok && known != p {
			return fmt.Errorf("%w: handle %d frame %d", ErrConflictingInput, handle, f)
		}
		return nil
	}
	if f != q.lastFrame+1 {
		return fmt.Errorf("%w: handle %d sent frame %d after %d", ErrFrameOrder, handle, f, q.lastFrame)
	}
	if int(f-e.current) > e.maxLead() {
		return fmt.Errorf("%w: handle %d frame %d is too far ahead of %d", ErrFrameOrder, handle, f, e.current)
	}

	q.store(f, p)

	if f < e.current {
		saved, ok := e.snapshots.get(f)
		if !ok {
			return fmt.Errorf("%w: frame %d for handle %d", ErrMissingSnapshot, f, handle)
		}
		if saved.Inputs[handle] != p && (e.firstIncorrect == sim.NullFrame || f < e.firstIncorrect) {
			e.firstIncorrect = f
		}
	}
	return nil
}

// maxLead is how far past CurrentFrame an honest remote input can be.
func (e *Engine) maxLead() int {
	return e.cfg.MaxPrediction + 2*e.cfg.InputDelay + 2
}

// AdvanceFrame first replays any frames invalidated by late inputs, then
// simulates CurrentFrame and moves on.
func (e *Engine) AdvanceFrame() error {
	if e.firstIncorrect != sim.NullFrame {
		if err := e.rollback(); err != nil {
			return err
		}
	}
	if !e.CanAdvance() {
		e.stats.Stalls++
		return ErrPredictionThreshold
	}
	if e.queues[e.cfg.LocalHandle].lastFrame < e.current {
		return fmt.Errorf("%w: no local input queued for frame %d", ErrFrameOrder, e.current)
	}

	e.step()
	return e.collectChecksums()
}

// step simulates e.current with the best inputs known right now.
func (e *Engine) step() {
	inputs := make([]input.Packet, e.cfg.NumPlayers)
	for h, q := range e.queues {
		inputs[h], _ = q.inputFor(e.current)
	}
	e.snapshots.save(e.current, e.state, inputs)
	e.state = sim.Step(e.cfg.Sim, e.state, inputs)
	e.current++
}

// rollback restores the snapshot at firstIncorrect and replays every frame up
// to where we were, overwriting the speculative snapshots on the way.
func (e *Engine) rollback() error {
	from := e.firstIncorrect
	target := e.current

	saved, ok := e.snapshots.get(from)
	if !ok {
		return fmt.Errorf("%w: cannot roll back to frame %d", ErrMissingSnapshot, from)
	}

	e.state = saved.State
	e.current = from
	for e.current < target {
		e.step()
	}

	e.firstIncorrect = sim.NullFrame
	e.stats.Rollbacks++
	e.stats.Resimulated += int(target - from)
	return nil
}

// collectChecksums hashes every due frame whose snapshot can no longer change
// and compares it against what the other peers reported.
func (e *Engine) collectChecksums() error {
	if e.cfg.ChecksumInterval <= 0 {
		return nil
	}
	final := e.ConfirmedFrame() + 1
	if final > e.current {
		final = e.current
	}
	for e.nextChecksum <= final {
		f := e.nextChecksum
		e.nextChecksum += sim.Frame(e.cfg.ChecksumInterval)

		var state sim.State
		if f == e.current {
			state = e.state
		} else if saved, ok := e.snapshots.get(f); ok {
			state = saved.State
		} else {
			log.Printf("[rollback] frame %d left the window before it could be checksummed", f)
			continue
		}

		sum, err := state.Checksum()
		if err != nil {
			return err
		}
		e.localSums[f] = sum
		e.outbox = append(e.outbox, messages.ChecksumReport{
			Handle:   e.cfg.LocalHandle,
			Frame:    int32(f),
			Checksum: sum,
		})
		if err := e.compareChecksums(f); err != nil {
			return err
		}
	}
	// Peers that report nothing, or on another interval, never trigger the
	// prune in compareChecksums.
	e.pruneChecksums(final)
	return nil
}

// AddRemoteChecksum records a remote peer's checksum for a frame and checks
// it as soon as the local one exists.
func (e *Engine) AddRemoteChecksum(r messages.ChecksumReport) error {
	if r.Handle < 0 || r.Handle >= e.cfg.NumPlayers || r.Handle == e.cfg.LocalHandle {
		return fmt.Errorf("%w: checksum from handle %d", ErrInvalidHandle, r.Handle)
	}
	if e.cfg.ChecksumInterval <= 0 {
		return nil
	}
	f := sim.Frame(r.Frame)
	e.remoteSums[f] = append(e.remoteSums[f], r)
	return e.compareChecksums(f)
}

func (e *Engine) compareChecksums(f sim.Frame) error {
	local, ok := e.localSums[f]
	if !ok {
		return nil
	}
	for _, r := range e.remoteSums[f] {
		if r.Checksum != local {
			return fmt.Errorf("%w: frame %d local %016x, handle %d reported %016x",
				ErrDesync, f, local, r.Handle, r.Checksum)
		}
	}
	delete(e.remoteSums, f)
	e.pruneChecksums(f)
	return nil
}

// pruneChecksums drops local sums old enough that any honest peer has
// reported them already.
func (e *Engine) pruneChecksums(latest sim.Frame) {
	horizon := latest - sim.Frame(e.cfg.ChecksumInterval*8)
	for f := range e.localSums {
		if f < horizon {
			delete(e.localSums, f)
		}
	}
	for f := range e.remoteSums {
		if f < horizon {
			delete(e.remoteSums, f)
		}
	}
}

// DrainChecksums returns the checksum reports produced since the last call.
func (e *Engine) DrainChecksums() []messages.ChecksumReport {
	out := e.outbox
	e.outbox = nil
	return out
}
