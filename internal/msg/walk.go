package msg

import "github.com/coemu/server/internal/net/packet"

// MovementType distinguishes a walk from a run in the same packet.
type MovementType uint8

const (
	MoveWalk  MovementType = 0
	MoveRun   MovementType = 1
	MoveShift MovementType = 2
)

// Walk is one ground movement step: a direction, not a coordinate. The
// server validates the destination tile and echoes the packet back to
// complete the step, and forwards it to observers.
type Walk struct {
	CharacterID uint32
	Direction   uint8
	Movement    MovementType
}

func (m *Walk) PacketID() uint16 { return IDWalk }

func (m *Walk) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.CharacterID)
	w.WriteU8(m.Direction)
	w.WriteU8(uint8(m.Movement))
	return w.Bytes()
}

func (m *Walk) Unmarshal(r *packet.Reader) error {
	m.CharacterID = r.ReadU32()
	m.Direction = r.ReadU8()
	m.Movement = MovementType(r.ReadU8())
	return r.Err()
}
