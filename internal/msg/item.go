package msg

import "github.com/coemu/server/internal/net/packet"

// ItemAction is the subtype of the item packet. Only the ping action is
// load-bearing in the core; everything else is answered with an echo and a
// service notice.
type ItemAction uint32

const (
	ItemActionBuy       ItemAction = 1
	ItemActionSell      ItemAction = 2
	ItemActionDrop      ItemAction = 3
	ItemActionUse       ItemAction = 4
	ItemActionEquip     ItemAction = 5
	ItemActionUnequip   ItemAction = 6
	ItemActionRepair    ItemAction = 14
	ItemActionRepairAll ItemAction = 15
	ItemActionPing      ItemAction = 27
)

// Item is a client item interaction, also used as the ping carrier.
type Item struct {
	CharacterID     uint32
	Param0          uint32
	Action          ItemAction
	ClientTimestamp uint32
	Param1          uint32
}

func (m *Item) PacketID() uint16 { return IDItem }

func (m *Item) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.CharacterID)
	w.WriteU32(m.Param0)
	w.WriteU32(uint32(m.Action))
	w.WriteU32(m.ClientTimestamp)
	w.WriteU32(m.Param1)
	return w.Bytes()
}

func (m *Item) Unmarshal(r *packet.Reader) error {
	m.CharacterID = r.ReadU32()
	m.Param0 = r.ReadU32()
	m.Action = ItemAction(r.ReadU32())
	m.ClientTimestamp = r.ReadU32()
	m.Param1 = r.ReadU32()
	return r.Err()
}

// ItemInfo describes one item instance to the client.
type ItemInfo struct {
	CharacterID   uint32
	ItemID        uint32
	Durability    uint16
	MaxDurability uint16
	Action        uint8
	Ident         uint8
	Position      uint8
	Reserved0     uint8
	Reserved1     uint32
	GemOne        uint8
	GemTwo        uint8
	RebornEffect  uint8
	Magic         uint8
	Plus          uint8
	Bless         uint8
	Enchant       uint8
	Reserved2     uint8
	Restrain      uint32
	Reserved3     uint32
	Reserved4     uint32
}

func (m *ItemInfo) PacketID() uint16 { return IDItemInfo }

func (m *ItemInfo) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.CharacterID)
	w.WriteU32(m.ItemID)
	w.WriteU16(m.Durability)
	w.WriteU16(m.MaxDurability)
	w.WriteU8(m.Action)
	w.WriteU8(m.Ident)
	w.WriteU8(m.Position)
	w.WriteU8(m.Reserved0)
	w.WriteU32(m.Reserved1)
	w.WriteU8(m.GemOne)
	w.WriteU8(m.GemTwo)
	w.WriteU8(m.RebornEffect)
	w.WriteU8(m.Magic)
	w.WriteU8(m.Plus)
	w.WriteU8(m.Bless)
	w.WriteU8(m.Enchant)
	w.WriteU8(m.Reserved2)
	w.WriteU32(m.Restrain)
	w.WriteU32(m.Reserved3)
	w.WriteU32(m.Reserved4)
	return w.Bytes()
}
