package msg

import "github.com/coemu/server/internal/net/packet"

// TalkChannel selects where the client prints a chat line. A few channels
// double as control signals: Login and Register carry the ANSWER_OK /
// NEW_ROLE handshake strings.
type TalkChannel uint16

const (
	ChannelTalk     TalkChannel = 2000
	ChannelWhisper  TalkChannel = 2001
	ChannelAction   TalkChannel = 2002
	ChannelTeam     TalkChannel = 2003
	ChannelGuild    TalkChannel = 2004
	ChannelSpouse   TalkChannel = 2006
	ChannelSystem   TalkChannel = 2007
	ChannelYell     TalkChannel = 2008
	ChannelFriend   TalkChannel = 2009
	ChannelCenter   TalkChannel = 2011
	ChannelTopLeft  TalkChannel = 2012
	ChannelGhost    TalkChannel = 2013
	ChannelService  TalkChannel = 2014
	ChannelTip      TalkChannel = 2015
	ChannelWorld    TalkChannel = 2021
	ChannelRegister TalkChannel = 2100
	ChannelLogin    TalkChannel = 2101
	ChannelShop     TalkChannel = 2102
)

// TalkStyle overrides how chat text renders.
type TalkStyle uint16

const (
	StyleNormal TalkStyle = 0
	StyleScroll TalkStyle = 1
	StyleFlash  TalkStyle = 2
	StyleBlast  TalkStyle = 3
)

// Talk is a chat line between players, or from the system to a player. It is
// also the vehicle for login-state control strings outside the world.
type Talk struct {
	Color         uint32
	Channel       TalkChannel
	Style         TalkStyle
	CharacterID   uint32
	RecipientMesh uint32
	SenderMesh    uint32
	Sender        string
	Recipient     string
	Suffix        string
	Message       string
}

func (m *Talk) PacketID() uint16 { return IDTalk }

func (m *Talk) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.Color)
	w.WriteU16(uint16(m.Channel))
	w.WriteU16(uint16(m.Style))
	w.WriteU32(m.CharacterID)
	w.WriteU32(m.RecipientMesh)
	w.WriteU32(m.SenderMesh)
	w.WriteU8(4)
	w.WriteString(m.Sender)
	w.WriteString(m.Recipient)
	w.WriteString(m.Suffix)
	w.WriteString(m.Message)
	return w.Bytes()
}

func (m *Talk) Unmarshal(r *packet.Reader) error {
	m.Color = r.ReadU32()
	m.Channel = TalkChannel(r.ReadU16())
	m.Style = TalkStyle(r.ReadU16())
	m.CharacterID = r.ReadU32()
	m.RecipientMesh = r.ReadU32()
	m.SenderMesh = r.ReadU32()
	r.ReadU8() // list count, always 4
	m.Sender = r.ReadString()
	m.Recipient = r.ReadString()
	m.Suffix = r.ReadString()
	m.Message = r.ReadString()
	return r.Err()
}

// SystemTalk builds a white system line addressed to everyone.
func SystemTalk(characterID uint32, channel TalkChannel, message string) *Talk {
	return &Talk{
		Color:       0x00FFFFFF,
		Channel:     channel,
		Style:       StyleNormal,
		CharacterID: characterID,
		Sender:      System,
		Recipient:   AllUsers,
		Message:     message,
	}
}

// LoginOK tells the client to continue loading into the world.
func LoginOK() *Talk { return SystemTalk(0, ChannelLogin, AnswerOK) }

// LoginNewRole sends the client to character creation.
func LoginNewRole() *Talk { return SystemTalk(0, ChannelLogin, NewRole) }

// LoginInvalid rejects a bad or reused token.
func LoginInvalid() *Talk { return SystemTalk(0, ChannelLogin, "Login Invalid") }

// RegisterOK confirms character creation.
func RegisterOK() *Talk { return SystemTalk(0, ChannelRegister, AnswerOK) }

// RegisterInvalid rejects a bad creation request.
func RegisterInvalid() *Talk { return SystemTalk(0, ChannelRegister, "Register Invalid") }

// RegisterNameTaken rejects a duplicate character name.
func RegisterNameTaken() *Talk {
	return SystemTalk(0, ChannelRegister, "Character name taken, try another one.")
}
