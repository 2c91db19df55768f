package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coemu/server/internal/config"
	"github.com/coemu/server/internal/crypto"
	"github.com/coemu/server/internal/msg"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/persist"
	"github.com/coemu/server/internal/token"
	"github.com/coemu/server/internal/world"
)

// fakeAccounts is an in-memory AccountStore.
type fakeAccounts struct {
	rows map[string]*persist.AccountRow
}

func (f *fakeAccounts) FindByUsername(_ context.Context, username string) (*persist.AccountRow, error) {
	return f.rows[username], nil
}

func (f *fakeAccounts) ValidatePassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

func (f *fakeAccounts) UpdateLastIP(context.Context, uint32, string) error { return nil }

// fakeRealms is an in-memory RealmStore.
type fakeRealms struct {
	rows map[string]*persist.RealmRow
}

func (f *fakeRealms) FindByName(_ context.Context, name string) (*persist.RealmRow, error) {
	return f.rows[name], nil
}

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// testClient is the far end of a session pair: codec halves plus the
// session under test.
type testClient struct {
	sess *gamenet.Session
	enc  *gamenet.Encoder
	dec  *gamenet.Decoder
	conn net.Conn
}

// newTestClient builds a session over a pipe, running only the write loop;
// tests dispatch inbound packets directly through the registry the way the
// read loop would.
func newTestClient(t *testing.T) *testClient {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})
	sess := gamenet.NewSession(serverConn, 1, 64, crypto.NopCipher{}, zap.NewNop())
	sess.Start()
	clientConn.SetDeadline(time.Now().Add(5 * time.Second))
	return &testClient{
		sess: sess,
		enc:  gamenet.NewEncoder(clientConn, crypto.NopCipher{}),
		dec:  gamenet.NewDecoder(clientConn, crypto.NopCipher{}),
		conn: clientConn,
	}
}

// dispatch feeds a packet through the registry and mirrors the connection
// task's error rendering.
func (c *testClient) dispatch(t *testing.T, reg *packet.Registry, id uint16, body []byte) {
	t.Helper()
	err := reg.Dispatch(context.Background(), c.sess, c.sess.State(), id, body)
	if err != nil {
		pid, pbody, ok := RenderError(err)
		require.True(t, ok, "unrenderable handler error: %v", err)
		require.NoError(t, c.sess.Send(pid, pbody))
	}
}

func (c *testClient) readPacket(t *testing.T) (uint16, *packet.Reader) {
	t.Helper()
	id, body, err := c.dec.ReadFrame()
	require.NoError(t, err)
	return id, packet.NewReader(body)
}

// startRPCServer runs a real transfer RPC listener backed by the game
// deps' token store and returns its address.
func startRPCServer(t *testing.T, game *Game) (string, uint16) {
	t.Helper()
	srv, err := gamenet.NewServer("127.0.0.1:0", gamenet.ServerConfig{
		NewCipher:    func() crypto.Cipher { return crypto.NopCipher{} },
		Registry:     NewRPCRegistry(game, zap.NewNop()),
		RenderError:  RenderError,
		OutQueueSize: 16,
		Log:          zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)
	go srv.Serve(context.Background())

	addr := srv.Addr().(*net.TCPAddr)
	return addr.IP.String(), uint16(addr.Port)
}

func newGameDeps(t *testing.T) *Game {
	t.Helper()
	return &Game{
		Config: &config.Config{},
		World:  world.NewWorld(zap.NewNop()),
		Tokens: token.NewStore(),
		Log:    zap.NewNop(),
	}
}

func newAuthDeps(t *testing.T, rpcIP string, rpcPort uint16, passwordHash string) *Auth {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth.TransferTimeout = 2 * time.Second
	return &Auth{
		Config: cfg,
		Accounts: &fakeAccounts{rows: map[string]*persist.AccountRow{
			"shekohex": {ID: 7, Username: "shekohex", PasswordHash: passwordHash},
		}},
		Realms: &fakeRealms{rows: map[string]*persist.RealmRow{
			"CoEmu": {
				ID: 3, Name: "CoEmu",
				GameIP: "10.0.0.2", GamePort: 5816,
				RPCIP: rpcIP, RPCPort: rpcPort,
			},
		}},
		Log: zap.NewNop(),
	}
}

func accountBody(t *testing.T, username, password, realm string) []byte {
	t.Helper()
	w := packet.NewWriter()
	w.WriteFixedString(username, 16)
	// The test cipher path skips RC5: encrypt is not implemented
	// server-side, so fakes validate against the raw field bytes run
	// through the password reader. Use the captured ciphertext for "1".
	if password == "1" {
		w.WriteBytes([]byte{
			0x1C, 0xFD, 0x41, 0xC9, 0xA1, 0x69, 0xAA, 0xB6,
			0x0D, 0xA6, 0x08, 0x4D, 0xF3, 0x67, 0xEB, 0x73,
		})
	} else {
		// Any other password arrives as RC5 garbage and fails validation,
		// which is exactly what the wrong-password path needs.
		w.WriteFixedString(password, 16)
	}
	w.WriteFixedString(realm, 16)
	return w.Bytes()
}

func TestAuthSuccessPath(t *testing.T) {
	game := newGameDeps(t)
	rpcIP, rpcPort := startRPCServer(t, game)
	auth := newAuthDeps(t, rpcIP, rpcPort, hashPassword(t, "1"))
	reg := NewAuthRegistry(auth, zap.NewNop())

	c := newTestClient(t)
	c.dispatch(t, reg, msg.IDAccount, accountBody(t, "shekohex", "1", "CoEmu"))

	id, r := c.readPacket(t)
	require.Equal(t, msg.IDConnectEx, id)
	tok := r.ReadU64()
	assert.NotZero(t, tok)
	assert.Equal(t, "10.0.0.2", r.ReadFixedString(16))
	assert.Equal(t, uint32(5816), r.ReadU32())
	require.NoError(t, r.Err())

	// The RPC store holds the token exactly once.
	login, ok := game.Tokens.ConsumeLogin(tok)
	require.True(t, ok)
	assert.Equal(t, uint32(7), login.AccountID)
	assert.Equal(t, uint32(3), login.RealmID)
	_, ok = game.Tokens.ConsumeLogin(tok)
	assert.False(t, ok)
}

func TestAuthWrongPassword(t *testing.T) {
	game := newGameDeps(t)
	rpcIP, rpcPort := startRPCServer(t, game)
	auth := newAuthDeps(t, rpcIP, rpcPort, hashPassword(t, "1"))
	reg := NewAuthRegistry(auth, zap.NewNop())

	c := newTestClient(t)
	c.dispatch(t, reg, msg.IDAccount, accountBody(t, "shekohex", "wrong", "CoEmu"))

	id, r := c.readPacket(t)
	require.Equal(t, msg.IDConnectEx, id)
	assert.Zero(t, r.ReadU32())                // reserved
	assert.Equal(t, uint32(1), r.ReadU32())    // InvalidPassword
	assert.Equal(t, "", r.ReadFixedString(16)) // no message

	// No transfer happened, so no token was stored.
	assert.Zero(t, game.Tokens.LoginCount())
}

func TestAuthUnknownRealm(t *testing.T) {
	game := newGameDeps(t)
	rpcIP, rpcPort := startRPCServer(t, game)
	auth := newAuthDeps(t, rpcIP, rpcPort, hashPassword(t, "1"))
	reg := NewAuthRegistry(auth, zap.NewNop())

	c := newTestClient(t)
	c.dispatch(t, reg, msg.IDAccount, accountBody(t, "shekohex", "1", "Nowhere"))

	id, r := c.readPacket(t)
	require.Equal(t, msg.IDConnectEx, id)
	r.ReadU32()
	assert.Equal(t, uint32(msg.RejectionTryAgainLater), r.ReadU32())
}

func TestAuthRealmDown(t *testing.T) {
	game := newGameDeps(t)
	// A port nobody listens on: grab one and close it again.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()

	auth := newAuthDeps(t, "127.0.0.1", port, hashPassword(t, "1"))
	reg := NewAuthRegistry(auth, zap.NewNop())

	c := newTestClient(t)
	c.dispatch(t, reg, msg.IDAccount, accountBody(t, "shekohex", "1", "CoEmu"))

	id, r := c.readPacket(t)
	require.Equal(t, msg.IDConnectEx, id)
	r.ReadU32()
	assert.Equal(t, uint32(msg.RejectionServerDown), r.ReadU32())
	assert.Zero(t, game.Tokens.LoginCount())
}
