package msg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coemu/server/internal/net/packet"
)

func mustTime(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2024-01-15T10:30:00Z")
	require.NoError(t, err)
	return ts
}

func TestConnectExLayout(t *testing.T) {
	m := &ConnectEx{Token: 0x1122334455667788, IP: "10.0.0.2", Port: 5816}
	b := m.Marshal()
	require.Len(t, b, 28)

	r := packet.NewReader(b)
	assert.Equal(t, uint64(0x1122334455667788), r.ReadU64())
	assert.Equal(t, "10.0.0.2", r.ReadFixedString(16))
	assert.Equal(t, uint32(5816), r.ReadU32())
	require.NoError(t, r.Err())
}

func TestConnectRejectionLayout(t *testing.T) {
	b := Reject(RejectionInvalidPassword).Marshal()
	require.Len(t, b, 24)

	r := packet.NewReader(b)
	assert.Zero(t, r.ReadU32())
	assert.Equal(t, uint32(1), r.ReadU32())
	assert.Equal(t, "", r.ReadFixedString(16))
}

func TestTransferRoundTrip(t *testing.T) {
	m := &Transfer{AccountID: 7, RealmID: 3, Token: 0xCAFEBABE12345678}
	var out Transfer
	require.NoError(t, out.Unmarshal(packet.NewReader(m.Marshal())))
	assert.Equal(t, *m, out)
}

func TestConnectRoundTrip(t *testing.T) {
	m := &Connect{Token: 42, BuildVersion: 5017, Language: "En", FileContents: 0x11223344}
	var out Connect
	require.NoError(t, out.Unmarshal(packet.NewReader(m.Marshal())))
	assert.Equal(t, *m, out)
}

func TestTalkRoundTrip(t *testing.T) {
	m := SystemTalk(1007, ChannelLogin, AnswerOK)
	var out Talk
	require.NoError(t, out.Unmarshal(packet.NewReader(m.Marshal())))
	assert.Equal(t, *m, out)
	assert.Equal(t, System, out.Sender)
	assert.Equal(t, AllUsers, out.Recipient)
}

func TestWalkRoundTrip(t *testing.T) {
	m := &Walk{CharacterID: 1000001, Direction: 3, Movement: MoveRun}
	var out Walk
	require.NoError(t, out.Unmarshal(packet.NewReader(m.Marshal())))
	assert.Equal(t, *m, out)
}

func TestActionRoundTrip(t *testing.T) {
	m := &Action{ClientTimestamp: 99, CharacterID: 1000001, Param0: 1010,
		Param1: 61, Param2: 109, Type: ActionSetLocation}
	var out Action
	require.NoError(t, out.Unmarshal(packet.NewReader(m.Marshal())))
	assert.Equal(t, *m, out)
}

func TestAccountDecode(t *testing.T) {
	// Fixed username/realm fields plus the RC5-encrypted password "1".
	w := packet.NewWriter()
	w.WriteFixedString("shekohex", 16)
	w.WriteBytes([]byte{
		0x1C, 0xFD, 0x41, 0xC9, 0xA1, 0x69, 0xAA, 0xB6,
		0x0D, 0xA6, 0x08, 0x4D, 0xF3, 0x67, 0xEB, 0x73,
	})
	w.WriteFixedString("CoEmu", 16)

	var m Account
	require.NoError(t, m.Unmarshal(packet.NewReader(w.Bytes())))
	assert.Equal(t, "shekohex", m.Username)
	assert.Equal(t, "1", m.Password)
	assert.Equal(t, "CoEmu", m.Realm)
}

func TestAccountDecodeShortBody(t *testing.T) {
	var m Account
	err := m.Unmarshal(packet.NewReader(make([]byte, 20)))
	assert.ErrorIs(t, err, packet.ErrEOF)
}

func TestDialogBuild(t *testing.T) {
	steps := NewDialog("Hello there.").
		WithOption(1, "Buy").
		WithOption(255, "Never mind").
		Build(47)
	require.Len(t, steps, 5)
	assert.Equal(t, DialogText, steps[0].Action)
	assert.Equal(t, DialogLink, steps[1].Action)
	assert.Equal(t, uint8(255), steps[2].OptionID)
	assert.Equal(t, DialogAvatar, steps[3].Action)
	assert.Equal(t, uint16(47), steps[3].Avatar)
	assert.Equal(t, DialogCreate, steps[4].Action)
}

func TestNpcInfoOptionalName(t *testing.T) {
	bare := (&NpcInfo{ID: 100001, X: 61, Y: 109, Look: 2060}).Marshal()
	named := (&NpcInfo{ID: 100001, X: 61, Y: 109, Look: 2060, HasName: true, Name: "Merchant"}).Marshal()
	assert.Len(t, bare, 15)
	assert.Len(t, named, 15+1+len("Merchant"))
}

func TestServerTimeEncoding(t *testing.T) {
	m := ServerTime(mustTime(t))
	r := packet.NewReader(m.Marshal())
	assert.Equal(t, uint32(DataSetServerTime), r.ReadU32())
	assert.Equal(t, int32(2024-1900), r.ReadI32())
	assert.Equal(t, int32(0), r.ReadI32()) // January, zero-based
}
