package messages

// JoinRequest is sent by a peer right after connecting to the signaling server.
type JoinRequest struct {
	Version string
	Room    string
	Quorum  int    // peers the room needs before it starts
	Config  uint64 // config.Fingerprint; every peer in a room must agree
}

// JoinAccepted tells a peer its identity inside the room.
type JoinAccepted struct {
	PeerID string
	Room   string
}

// JoinRejected carries the reason a join was refused.
type JoinRejected struct {
	Reason string
}

// RoomReady is broadcast once the quorum is reached. Peers are listed in join
// order; a peer's index in Peers is its player handle.
type RoomReady struct {
	Room  string
	Peers []string
}

// PeerLeft is broadcast to the remaining members when a peer disconnects.
type PeerLeft struct {
	PeerID string
}

// Keepalive keeps an otherwise idle connection open. The server ignores it.
type Keepalive struct{}
