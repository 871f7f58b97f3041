// Package input defines the per-frame input packet exchanged between peers.
// It has no dependencies on ebiten or the network layer so both the client
// and the relay server can share it.
package input

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Action flags packed into Packet.Buttons.
const (
	Up    uint32 = 1 << 0
	Down  uint32 = 1 << 1
	Left  uint32 = 1 << 2
	Right uint32 = 1 << 3
	Fire  uint32 = 1 << 4

	knownButtons = Up | Down | Left | Right | Fire
)

// Size is the encoded length of a Packet: aim X, aim Y, buttons.
const Size = 12

var ErrMalformedPacket = errors.New("malformed input packet")

// Packet is one player's input for one frame. The zero value is "nothing
// pressed". Aim is only meaningful (and only non-zero) when Fire is set.
type Packet struct {
	AimX    float32
	AimY    float32
	Buttons uint32
}

var (
	_ encoding.BinaryMarshaler   = Packet{}
	_ encoding.BinaryUnmarshaler = (*Packet)(nil)
)

// RawControls is the device state after polling, before packing.
type RawControls struct {
	Up, Down, Left, Right bool
	Fire                  bool
	AimX, AimY            float32 // world coordinates of the cursor
}

// Encode packs raw controls into a Packet. Aim is dropped unless Fire is held
// so that identical logical input always yields identical bytes.
func Encode(c RawControls) Packet {
	var p Packet
	if c.Up {
		p.Buttons |= Up
	}
	if c.Down {
		p.Buttons |= Down
	}
	if c.Left {
		p.Buttons |= Left
	}
	if c.Right {
		p.Buttons |= Right
	}
	if c.Fire {
		p.Buttons |= Fire
		p.AimX = c.AimX
		p.AimY = c.AimY
	}
	return p
}

// Controls is the inverse of Encode for canonical packets.
func (p Packet) Controls() RawControls {
	return RawControls{
		Up:    p.Buttons&Up != 0,
		Down:  p.Buttons&Down != 0,
		Left:  p.Buttons&Left != 0,
		Right: p.Buttons&Right != 0,
		Fire:  p.Buttons&Fire != 0,
		AimX:  p.AimX,
		AimY:  p.AimY,
	}
}

// AppendBinary appends the 12 byte little-endian wire form of p to b.
func (p Packet) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.AimX))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.AimY))
	return binary.LittleEndian.AppendUint32(b, p.Buttons)
}

func (p Packet) MarshalBinary() ([]byte, error) {
	return p.AppendBinary(make([]byte, 0, Size)), nil
}

// UnmarshalBinary decodes exactly Size bytes. Anything that Encode could not
// have produced is rejected: peers that disagree on the wire format are
// already desynchronized.
func (p *Packet) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedPacket, len(data), Size)
	}
	aimXBits := binary.LittleEndian.Uint32(data[0:4])
	aimYBits := binary.LittleEndian.Uint32(data[4:8])
	buttons := binary.LittleEndian.Uint32(data[8:12])

	if buttons&^knownButtons != 0 {
		return fmt.Errorf("%w: unknown button bits %#x", ErrMalformedPacket, buttons&^knownButtons)
	}
	if buttons&Fire == 0 && (aimXBits != 0 || aimYBits != 0) {
		return fmt.Errorf("%w: aim set without fire", ErrMalformedPacket)
	}
	aimX := math.Float32frombits(aimXBits)
	aimY := math.Float32frombits(aimYBits)
	if isNaNOrInf(aimX) || isNaNOrInf(aimY) {
		return fmt.Errorf("%w: non-finite aim", ErrMalformedPacket)
	}

	*p = Packet{AimX: aimX, AimY: aimY, Buttons: buttons}
	return nil
}

// Decode is UnmarshalBinary as a function.
func Decode(data []byte) (Packet, error) {
	var p Packet
	err := p.UnmarshalBinary(data)
	return p, err
}

func isNaNOrInf(f float32) bool {
	return math.IsNaN(float64(f)) || math.IsInf(float64(f), 0)
}
