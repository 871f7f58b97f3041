package config

import (
	"encoding/binary"
	"hash/fnv"
)

// Fingerprint hashes every setting that peers of one session must share: the
// whole SimConfig plus the input delay and checksum interval. Transport-only
// settings such as the signal URL or bootstrap timeout are left out.
func Fingerprint(s SimConfig, n NetConfig) uint64 {
	h := fnv.New64a()
	le := binary.LittleEndian
	fields := []any{
		s.HalfExtentX, s.HalfExtentY,
		s.MoveSpeed,
		int64(s.FrameDuration), int64(s.FireCooldown),
		s.BulletSpeed, s.BulletMaxRange,
		int32(len(s.Spawns)), s.Spawns,
		int32(n.InputDelay), int32(n.ChecksumInterval),
	}
	for _, f := range fields {
		// Writes to a hash never fail and every field is fixed size.
		_ = binary.Write(h, le, f)
	}
	return h.Sum64()
}
