package messages

// PeerInput carries one player's input for one frame. Packet is the opaque
// 12 byte wire form from shared/input; receivers must decode it strictly.
type PeerInput struct {
	Handle int
	Frame  int32
	Packet []byte
}

// ChecksumReport carries the sender's hash of its confirmed state at the
// start of Frame.
type ChecksumReport struct {
	Handle   int
	Frame    int32
	Checksum uint64
}
