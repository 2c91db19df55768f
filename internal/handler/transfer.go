package handler

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/crypto"
	"github.com/coemu/server/internal/msg"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/persist"
)

// transfer performs the account→realm token exchange over the realm's RPC
// endpoint. The channel runs the regular frame codec with the no-op cipher.
// On failure the returned packet is the rejection to forward to the client.
func (d *Auth) transfer(ctx context.Context, accountID uint32, realm *persist.RealmRow) (msg.Outgoing, error) {
	timeout := d.Config.Auth.TransferTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	addr := net.JoinHostPort(realm.RPCIP, fmt.Sprint(realm.RPCPort))

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return msg.Reject(msg.RejectionServerDown), fmt.Errorf("dial realm %s: %w", addr, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	enc := gamenet.NewEncoder(conn, crypto.NopCipher{})
	dec := gamenet.NewDecoder(conn, crypto.NopCipher{})

	req := &msg.Transfer{AccountID: accountID, RealmID: realm.ID}
	if err := enc.WriteFrame(req.PacketID(), req.Marshal()); err != nil {
		return msg.Reject(msg.RejectionServerTimedOut), fmt.Errorf("send transfer: %w", err)
	}

	id, body, err := dec.ReadFrame()
	if err != nil {
		return msg.Reject(msg.RejectionServerTimedOut), fmt.Errorf("await transfer answer: %w", err)
	}
	if id != msg.IDTransfer {
		return msg.Reject(msg.RejectionServerTimedOut), fmt.Errorf("unexpected rpc answer id %d", id)
	}
	var res msg.Transfer
	if err := res.Unmarshal(packet.NewReader(body)); err != nil {
		return msg.Reject(msg.RejectionServerTimedOut), fmt.Errorf("decode transfer answer: %w", err)
	}

	return &msg.ConnectEx{
		Token: res.Token,
		IP:    realm.GameIP,
		Port:  uint32(realm.GamePort),
	}, nil
}

// NewRPCRegistry builds the game server's private RPC packet table.
func NewRPCRegistry(d *Game, log *zap.Logger) *packet.Registry {
	reg := packet.NewRegistry(log)
	reg.Register(msg.IDTransfer, nil, d.handleTransfer)
	return reg
}

// handleTransfer mints a single-use login token for the account the auth
// server vouched for, answers with it, and drops the RPC connection.
func (d *Game) handleTransfer(_ context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Transfer
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	m.Token = d.Tokens.GenerateLogin(m.AccountID, m.RealmID)
	d.Log.Debug("login token minted",
		zap.Uint32("account", m.AccountID),
		zap.Uint32("realm", m.RealmID),
	)
	if err := send(sess, &m); err != nil {
		return err
	}
	sess.Shutdown()
	return nil
}
