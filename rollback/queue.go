package rollback

import (
	"github.com/automoto/rollback-arena/shared/input"
	"github.com/automoto/rollback-arena/sim"
)

// inputRecord is one slot of an inputQueue.
type inputRecord struct {
	Frame  sim.Frame
	Packet input.Packet
}

// inputQueue is a ring buffer of one player's real inputs indexed by
// frame % size. A slot only counts when its Frame matches the lookup.
type inputQueue struct {
	history   []inputRecord
	lastFrame sim.Frame    // newest frame with a real input; inputs arrive contiguously
	last      input.Packet // input at lastFrame, the prediction for anything later
}

func newInputQueue(size int) *inputQueue {
	q := &inputQueue{
		history:   make([]inputRecord, size),
		lastFrame: sim.NullFrame,
	}
	for i := range q.history {
		q.history[i].Frame = sim.NullFrame
	}
	return q
}

func (q *inputQueue) index(f sim.Frame) int {
	return int(f) % len(q.history)
}

// store records the real input for f. Callers enforce f == lastFrame+1.
func (q *inputQueue) store(f sim.Frame, p input.Packet) {
	q.history[q.index(f)] = inputRecord{Frame: f, Packet: p}
	q.lastFrame = f
	q.last = p
}

// get returns the real input for f, if it is known and still buffered.
func (q *inputQueue) get(f sim.Frame) (input.Packet, bool) {
	if f < 0 || f > q.lastFrame {
		return input.Packet{}, false
	}
	r := q.history[q.index(f)]
	if r.Frame != f {
		return input.Packet{}, false
	}
	return r.Packet, true
}

// inputFor returns the real input for f or, when it has not arrived yet, a
// prediction that repeats the newest real input.
func (q *inputQueue) inputFor(f sim.Frame) (p input.Packet, predicted bool) {
	if real, ok := q.get(f); ok {
		return real, false
	}
	return q.last, true
}

// savedFrame is one slot of the snapshot ring: the state at the start of Frame
// and the inputs Step consumed from it.
type savedFrame struct {
	Frame  sim.Frame
	State  sim.State
	Inputs []input.Packet
}

// snapshotRing holds the last len(slots) frames. Same tagging scheme as
// inputQueue: a slot is valid only for the frame written into it.
type snapshotRing struct {
	slots []savedFrame
}

func newSnapshotRing(size int) *snapshotRing {
	r := &snapshotRing{slots: make([]savedFrame, size)}
	for i := range r.slots {
		r.slots[i].Frame = sim.NullFrame
	}
	return r
}

func (r *snapshotRing) save(f sim.Frame, s sim.State, inputs []input.Packet) {
	slot := &r.slots[int(f)%len(r.slots)]
	slot.Frame = f
	slot.State = s
	slot.Inputs = append(slot.Inputs[:0], inputs...)
}

func (r *snapshotRing) get(f sim.Frame) (*savedFrame, bool) {
	if f < 0 {
		return nil, false
	}
	slot := &r.slots[int(f)%len(r.slots)]
	if slot.Frame != f {
		return nil, false
	}
	return slot, true
}

// oldest returns the oldest frame still held given the newest saved frame.
func (r *snapshotRing) oldest(newest sim.Frame) sim.Frame {
	o := newest - sim.Frame(len(r.slots)) + 1
	if o < 0 {
		return 0
	}
	return o
}
