package msg

import "github.com/coemu/server/internal/net/packet"

// ActionType is the subtype of the general action packet. The client uses
// it as a request/response protocol during login and movement.
type ActionType uint16

const (
	ActionSetLocation      ActionType = 74
	ActionSetInventory     ActionType = 75
	ActionSetAssociates    ActionType = 76
	ActionSetProficiencies ActionType = 77
	ActionSetMagicSpells   ActionType = 78
	ActionSetDirection     ActionType = 79
	ActionSetAction        ActionType = 80
	ActionUsePortal        ActionType = 85
	ActionSetMapARGB       ActionType = 104
	ActionTeleport         ActionType = 108
	ActionSetLoginComplete ActionType = 130
	ActionLeaveMap         ActionType = 132
	ActionJump             ActionType = 133
	ActionRemoveEntity     ActionType = 135
)

// Action is a general action performed by or answered to the client.
type Action struct {
	ClientTimestamp uint32
	CharacterID     uint32
	Param0          uint32
	Param1          uint16
	Param2          uint16
	Param3          uint16
	Type            ActionType
}

func (m *Action) PacketID() uint16 { return IDAction }

func (m *Action) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.ClientTimestamp)
	w.WriteU32(m.CharacterID)
	w.WriteU32(m.Param0)
	w.WriteU16(m.Param1)
	w.WriteU16(m.Param2)
	w.WriteU16(m.Param3)
	w.WriteU16(uint16(m.Type))
	return w.Bytes()
}

func (m *Action) Unmarshal(r *packet.Reader) error {
	m.ClientTimestamp = r.ReadU32()
	m.CharacterID = r.ReadU32()
	m.Param0 = r.ReadU32()
	m.Param1 = r.ReadU16()
	m.Param2 = r.ReadU16()
	m.Param3 = r.ReadU16()
	m.Type = ActionType(r.ReadU16())
	return r.Err()
}

// NewAction builds a server-initiated action with Param0 packed and the
// coordinate params zeroed unless set by the caller.
func NewAction(characterID, param0 uint32, param1 uint16, ty ActionType) *Action {
	return &Action{
		CharacterID: characterID,
		Param0:      param0,
		Param1:      param1,
		Type:        ty,
	}
}
