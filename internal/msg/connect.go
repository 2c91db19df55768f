package msg

import "github.com/coemu/server/internal/net/packet"

// Connect is the client's first packet on the game server: the login token
// minted by the transfer RPC plus the client's build and language. The
// cipher rekeys from the token right after this packet is accepted.
type Connect struct {
	Token        uint64
	BuildVersion uint16
	Language     string
	FileContents uint32
}

func (m *Connect) PacketID() uint16 { return IDConnect }

func (m *Connect) Unmarshal(r *packet.Reader) error {
	m.Token = r.ReadU64()
	m.BuildVersion = r.ReadU16()
	m.Language = r.ReadFixedString(10)
	m.FileContents = r.ReadU32()
	return r.Err()
}

func (m *Connect) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU64(m.Token)
	w.WriteU16(m.BuildVersion)
	w.WriteFixedString(m.Language, 10)
	w.WriteU32(m.FileContents)
	return w.Bytes()
}

// Transfer carries the authenticated account from the account server to the
// game server over the private RPC channel, and the minted token back.
type Transfer struct {
	AccountID uint32
	RealmID   uint32
	Token     uint64
}

func (m *Transfer) PacketID() uint16 { return IDTransfer }

func (m *Transfer) Unmarshal(r *packet.Reader) error {
	m.AccountID = r.ReadU32()
	m.RealmID = r.ReadU32()
	m.Token = r.ReadU64()
	return r.Err()
}

func (m *Transfer) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.AccountID)
	w.WriteU32(m.RealmID)
	w.WriteU64(m.Token)
	return w.Bytes()
}
