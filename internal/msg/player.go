package msg

import "github.com/coemu/server/internal/net/packet"

// Player is the spawn packet: everything an observing client needs to render
// another character that entered its screen.
type Player struct {
	CharacterID    int32
	Mesh           int32
	StatusFlags    int64
	SyndicateID    int16
	Reserved0      uint8
	SyndicateRank  uint8
	Garment        int32
	Helmet         int32
	Armor          int32
	RightHand      int32
	LeftHand       int32
	Reserved1      int32
	HealthPoints   uint16
	Level          int16
	X              uint16
	Y              uint16
	HairStyle      int16
	Direction      uint8
	Action         uint8
	Metempsychosis int16
	Level2         int16
	Reserved2      int32
	NobilityRank   int32
	CharacterID2   int32
	NobilityPos    int32
	CharacterName  string
}

func (m *Player) PacketID() uint16 { return IDPlayer }

func (m *Player) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteI32(m.CharacterID)
	w.WriteI32(m.Mesh)
	w.WriteI64(m.StatusFlags)
	w.WriteI16(m.SyndicateID)
	w.WriteU8(m.Reserved0)
	w.WriteU8(m.SyndicateRank)
	w.WriteI32(m.Garment)
	w.WriteI32(m.Helmet)
	w.WriteI32(m.Armor)
	w.WriteI32(m.RightHand)
	w.WriteI32(m.LeftHand)
	w.WriteI32(m.Reserved1)
	w.WriteU16(m.HealthPoints)
	w.WriteI16(m.Level)
	w.WriteU16(m.X)
	w.WriteU16(m.Y)
	w.WriteI16(m.HairStyle)
	w.WriteU8(m.Direction)
	w.WriteU8(m.Action)
	w.WriteI16(m.Metempsychosis)
	w.WriteI16(m.Level2)
	w.WriteI32(m.Reserved2)
	w.WriteI32(m.NobilityRank)
	w.WriteI32(m.CharacterID2)
	w.WriteI32(m.NobilityPos)
	w.WriteU8(1)
	w.WriteString(m.CharacterName)
	return w.Bytes()
}

func (m *Player) Unmarshal(r *packet.Reader) error {
	m.CharacterID = r.ReadI32()
	m.Mesh = r.ReadI32()
	m.StatusFlags = r.ReadI64()
	m.SyndicateID = r.ReadI16()
	m.Reserved0 = r.ReadU8()
	m.SyndicateRank = r.ReadU8()
	m.Garment = r.ReadI32()
	m.Helmet = r.ReadI32()
	m.Armor = r.ReadI32()
	m.RightHand = r.ReadI32()
	m.LeftHand = r.ReadI32()
	m.Reserved1 = r.ReadI32()
	m.HealthPoints = r.ReadU16()
	m.Level = r.ReadI16()
	m.X = r.ReadU16()
	m.Y = r.ReadU16()
	m.HairStyle = r.ReadI16()
	m.Direction = r.ReadU8()
	m.Action = r.ReadU8()
	m.Metempsychosis = r.ReadI16()
	m.Level2 = r.ReadI16()
	m.Reserved2 = r.ReadI32()
	m.NobilityRank = r.ReadI32()
	m.CharacterID2 = r.ReadI32()
	m.NobilityPos = r.ReadI32()
	r.ReadU8() // list count, always 1
	m.CharacterName = r.ReadString()
	return r.Err()
}
