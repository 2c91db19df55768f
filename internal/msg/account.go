package msg

import "github.com/coemu/server/internal/net/packet"

// Account is the client's login request to the account server. The password
// field arrives RC5-encrypted; the reader decrypts it before hashing and
// comparison.
type Account struct {
	Username string
	Password string
	Realm    string
}

func (m *Account) PacketID() uint16 { return IDAccount }

func (m *Account) Unmarshal(r *packet.Reader) error {
	m.Username = r.ReadFixedString(16)
	m.Password = r.ReadPassword()
	m.Realm = r.ReadFixedString(16)
	return r.Err()
}

// RejectionCode values spawn specific error dialogs in the client; the
// numbers are fixed by the client build.
type RejectionCode uint32

const (
	RejectionClear                   RejectionCode = 0
	RejectionInvalidPassword         RejectionCode = 1
	RejectionReady                   RejectionCode = 2
	RejectionServerDown              RejectionCode = 10
	RejectionTryAgainLater           RejectionCode = 11
	RejectionAccountBanned           RejectionCode = 12
	RejectionServerBusy              RejectionCode = 20
	RejectionAccountLocked           RejectionCode = 22
	RejectionAccountNotActivated     RejectionCode = 30
	RejectionAccountActivationFailed RejectionCode = 31
	RejectionServerTimedOut          RejectionCode = 42
	RejectionMaxLoginAttempts        RejectionCode = 51
	RejectionServerLocked            RejectionCode = 70
	RejectionServerOldProtocol       RejectionCode = 73
)

// ConnectEx forwards an authenticated client to its realm: the one-shot
// login token and the game server's public address.
type ConnectEx struct {
	Token uint64
	IP    string
	Port  uint32
}

func (m *ConnectEx) PacketID() uint16 { return IDConnectEx }

func (m *ConnectEx) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU64(m.Token)
	w.WriteFixedString(m.IP, 16)
	w.WriteU32(m.Port)
	return w.Bytes()
}

// ConnectRejection is the failure shape of packet 1055; the code selects the
// client's error dialog.
type ConnectRejection struct {
	Reserved uint32
	Code     RejectionCode
	Message  string
}

func (m *ConnectRejection) PacketID() uint16 { return IDConnectEx }

func (m *ConnectRejection) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.Reserved)
	w.WriteU32(uint32(m.Code))
	w.WriteFixedString(m.Message, 16)
	return w.Bytes()
}

// Reject builds the standard rejection for a code.
func Reject(code RejectionCode) *ConnectRejection {
	return &ConnectRejection{Code: code}
}
