package sim

import (
	"fmt"
	"hash/fnv"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

var msgpackHandle = &codec.MsgpackHandle{}

// stateWire has State's layout without its methods, so the codec does not
// find MarshalBinary and recurse into it.
type stateWire State

// MarshalBinary serializes the state. Slices are ordered and there are no
// maps, so equal states always produce equal bytes.
func (s State) MarshalBinary() ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, msgpackHandle).Encode(stateWire(s)); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return out, nil
}

func (s *State) UnmarshalBinary(data []byte) error {
	var decoded stateWire
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(&decoded); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	*s = State(decoded)
	return nil
}

// Checksum hashes the serialized state. Two peers with the same confirmed
// history must report the same value for the same frame.
func (s State) Checksum() (uint64, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64(), nil
}
