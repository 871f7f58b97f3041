package server

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/automoto/rollback-arena/shared/messages"
)

// MaxQuorum caps how many peers a room may ask for.
const MaxQuorum = 8

// Peer is one connected websocket client. *router.NetworkClient implements it.
type Peer interface {
	Id() string
	SendMessage(msg any) error
}

type room struct {
	name    string
	quorum  int
	config  uint64
	members []Peer // join order; index is the player handle once started
	started bool
	created time.Time
}

// handleOf returns p's index in members. Once the room has started a leaver's
// slot stays behind as nil so the handles of later joiners never shift.
func (r *room) handleOf(p Peer) int {
	for i, m := range r.members {
		if m != nil && m.Id() == p.Id() {
			return i
		}
	}
	return -1
}

// remaining counts members that have not left.
func (r *room) remaining() int {
	n := 0
	for _, m := range r.members {
		if m != nil {
			n++
		}
	}
	return n
}

// Rooms pairs peers by room name. A room starts once it has as many members
// as its quorum; from then on it only relays traffic between them.
type Rooms struct {
	mu      sync.Mutex
	version string // empty accepts any client version
	ttl     time.Duration
	rooms   map[string]*room
	byPeer  map[string]*room
}

func NewRooms(version string, ttl time.Duration) *Rooms {
	return &Rooms{
		version: version,
		ttl:     ttl,
		rooms:   make(map[string]*room),
		byPeer:  make(map[string]*room),
	}
}

// Join adds p to the requested room, answering with JoinAccepted or
// JoinRejected. The peer that completes the quorum triggers RoomReady for
// everyone in the room.
func (rs *Rooms) Join(p Peer, req messages.JoinRequest) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if reason := rs.checkJoin(p, req); reason != "" {
		log.Printf("[signal] rejected %s from room %q: %s", p.Id(), req.Room, reason)
		send(p, messages.JoinRejected{Reason: reason})
		return
	}

	r, ok := rs.rooms[req.Room]
	if !ok {
		r = &room{name: req.Room, quorum: req.Quorum, config: req.Config, created: time.Now()}
		rs.rooms[req.Room] = r
	}
	r.members = append(r.members, p)
	rs.byPeer[p.Id()] = r

	log.Printf("[signal] %s joined room %q (%d/%d)", p.Id(), r.name, len(r.members), r.quorum)
	send(p, messages.JoinAccepted{PeerID: p.Id(), Room: r.name})

	if len(r.members) < r.quorum {
		return
	}
	r.started = true
	ready := messages.RoomReady{Room: r.name, Peers: make([]string, len(r.members))}
	for i, m := range r.members {
		ready.Peers[i] = m.Id()
	}
	log.Printf("[signal] room %q started", r.name)
	for _, m := range r.members {
		send(m, ready)
	}
}

func (rs *Rooms) checkJoin(p Peer, req messages.JoinRequest) string {
	if rs.version != "" && req.Version != rs.version {
		return fmt.Sprintf("version mismatch: server %s, client %s", rs.version, req.Version)
	}
	if req.Room == "" {
		return "no room name"
	}
	if req.Quorum < 2 || req.Quorum > MaxQuorum {
		return fmt.Sprintf("quorum must be between 2 and %d", MaxQuorum)
	}
	if _, joined := rs.byPeer[p.Id()]; joined {
		return "already in a room"
	}
	r, ok := rs.rooms[req.Room]
	if !ok {
		return ""
	}
	if r.started {
		return "room already running"
	}
	if r.quorum != req.Quorum {
		return fmt.Sprintf("room needs %d peers, client asked for %d", r.quorum, req.Quorum)
	}
	if r.config != req.Config {
		return fmt.Sprintf("game settings differ from the room (%016x, client %016x)", r.config, req.Config)
	}
	return ""
}

// RelayInput forwards a peer's input to the rest of its running room. Inputs
// claiming another player's handle are dropped.
func (rs *Rooms) RelayInput(from Peer, msg messages.PeerInput) {
	rs.relay(from, msg.Handle, msg)
}

// RelayChecksum forwards a checksum report like RelayInput.
func (rs *Rooms) RelayChecksum(from Peer, msg messages.ChecksumReport) {
	rs.relay(from, msg.Handle, msg)
}

func (rs *Rooms) relay(from Peer, handle int, msg any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r, ok := rs.byPeer[from.Id()]
	if !ok || !r.started {
		return
	}
	if own := r.handleOf(from); own != handle {
		log.Printf("[signal] %s (handle %d) sent %T for handle %d, dropped", from.Id(), own, msg, handle)
		return
	}
	for _, m := range r.members {
		if m != nil && m.Id() != from.Id() {
			send(m, msg)
		}
	}
}

// Leave removes p from its room. Members of a running room are told with
// PeerLeft; a room with no members left is forgotten.
func (rs *Rooms) Leave(p Peer) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r, ok := rs.byPeer[p.Id()]
	if !ok {
		return
	}
	delete(rs.byPeer, p.Id())

	if i := r.handleOf(p); i >= 0 {
		if r.started {
			r.members[i] = nil
		} else {
			r.members = append(r.members[:i], r.members[i+1:]...)
		}
	}
	log.Printf("[signal] %s left room %q", p.Id(), r.name)

	if r.started {
		for _, m := range r.members {
			if m != nil {
				send(m, messages.PeerLeft{PeerID: p.Id()})
			}
		}
	}
	if r.remaining() == 0 {
		delete(rs.rooms, r.name)
	}
}

// Expire rejects and forgets rooms that have been waiting for their quorum
// longer than the TTL. Running rooms are left alone.
func (rs *Rooms) Expire(now time.Time) {
	if rs.ttl <= 0 {
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for name, r := range rs.rooms {
		if r.started || now.Sub(r.created) < rs.ttl {
			continue
		}
		log.Printf("[signal] expired room %q (%d/%d, waited %s)",
			name, len(r.members), r.quorum, now.Sub(r.created).Round(time.Second))
		for _, m := range r.members {
			send(m, messages.JoinRejected{Reason: "room expired before it filled"})
			delete(rs.byPeer, m.Id())
		}
		delete(rs.rooms, name)
	}
}

// Count returns the number of rooms and connected members.
func (rs *Rooms) Count() (rooms, peers int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.rooms), len(rs.byPeer)
}

func send(p Peer, msg any) {
	if err := p.SendMessage(msg); err != nil {
		log.Printf("[signal] send %T to %s: %v", msg, p.Id(), err)
	}
}
