package msg

import "github.com/coemu/server/internal/net/packet"

// UserInfo initializes the client interface with the character loaded for
// this account. Sent right after the login ANSWER_OK.
type UserInfo struct {
	CharacterID     uint32
	Mesh            uint32
	HairStyle       uint16
	Silver          uint32
	CPs             uint32
	Experience      uint64
	Reserved0       uint64
	Reserved1       uint64
	Strength        uint16
	Agility         uint16
	Vitality        uint16
	Spirit          uint16
	AttributePoints uint16
	HealthPoints    uint16
	ManaPoints      uint16
	KillPoints      uint16
	Level           uint8
	Class           uint8
	PreviousClass   uint8
	Rebirths        uint8
	ShowName        bool
	CharacterName   string
	Spouse          string
}

func (m *UserInfo) PacketID() uint16 { return IDUserInfo }

func (m *UserInfo) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.CharacterID)
	w.WriteU32(m.Mesh)
	w.WriteU16(m.HairStyle)
	w.WriteU32(m.Silver)
	w.WriteU32(m.CPs)
	w.WriteU64(m.Experience)
	w.WriteU64(m.Reserved0)
	w.WriteU64(m.Reserved1)
	w.WriteU16(m.Strength)
	w.WriteU16(m.Agility)
	w.WriteU16(m.Vitality)
	w.WriteU16(m.Spirit)
	w.WriteU16(m.AttributePoints)
	w.WriteU16(m.HealthPoints)
	w.WriteU16(m.ManaPoints)
	w.WriteU16(m.KillPoints)
	w.WriteU8(m.Level)
	w.WriteU8(m.Class)
	w.WriteU8(m.PreviousClass)
	w.WriteU8(m.Rebirths)
	w.WriteBool(m.ShowName)
	w.WriteU8(2)
	w.WriteString(m.CharacterName)
	w.WriteString(m.Spouse)
	return w.Bytes()
}

func (m *UserInfo) Unmarshal(r *packet.Reader) error {
	m.CharacterID = r.ReadU32()
	m.Mesh = r.ReadU32()
	m.HairStyle = r.ReadU16()
	m.Silver = r.ReadU32()
	m.CPs = r.ReadU32()
	m.Experience = r.ReadU64()
	m.Reserved0 = r.ReadU64()
	m.Reserved1 = r.ReadU64()
	m.Strength = r.ReadU16()
	m.Agility = r.ReadU16()
	m.Vitality = r.ReadU16()
	m.Spirit = r.ReadU16()
	m.AttributePoints = r.ReadU16()
	m.HealthPoints = r.ReadU16()
	m.ManaPoints = r.ReadU16()
	m.KillPoints = r.ReadU16()
	m.Level = r.ReadU8()
	m.Class = r.ReadU8()
	m.PreviousClass = r.ReadU8()
	m.Rebirths = r.ReadU8()
	m.ShowName = r.ReadBool()
	r.ReadU8() // list count, always 2
	m.CharacterName = r.ReadString()
	m.Spouse = r.ReadString()
	return r.Err()
}
