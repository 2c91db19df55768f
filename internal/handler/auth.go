package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/msg"
	"github.com/coemu/server/internal/net/packet"
)

// NewAuthRegistry builds the account server's packet table.
func NewAuthRegistry(d *Auth, log *zap.Logger) *packet.Registry {
	reg := packet.NewRegistry(log)
	reg.Register(msg.IDAccount, []packet.SessionState{packet.StateConnected}, d.handleAccount)
	reg.Register(msg.IDConnect, nil, d.handleConnect)
	return reg
}

// handleAccount runs the login flow: credentials, realm, transfer, redirect.
// Every failure maps to a rejection code the client renders as a dialog.
func (d *Auth) handleAccount(ctx context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Account
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	account, err := d.Accounts.FindByUsername(ctx, m.Username)
	if err != nil {
		d.Log.Error("account lookup failed", zap.String("username", m.Username), zap.Error(err))
		return ErrorPacket(msg.Reject(msg.RejectionTryAgainLater))
	}
	if account == nil || !d.Accounts.ValidatePassword(account.PasswordHash, m.Password) {
		d.Log.Info("login rejected",
			zap.String("username", m.Username),
			zap.String("ip", sess.IP),
		)
		return ErrorPacket(msg.Reject(msg.RejectionInvalidPassword))
	}

	realm, err := d.Realms.FindByName(ctx, m.Realm)
	if err != nil {
		d.Log.Error("realm lookup failed", zap.String("realm", m.Realm), zap.Error(err))
		return ErrorPacket(msg.Reject(msg.RejectionTryAgainLater))
	}
	if realm == nil {
		d.Log.Info("unknown realm requested", zap.String("realm", m.Realm))
		return ErrorPacket(msg.Reject(msg.RejectionTryAgainLater))
	}

	sess.AccountID = account.ID
	sess.RealmID = realm.ID
	if err := d.Accounts.UpdateLastIP(ctx, account.ID, sess.IP); err != nil {
		d.Log.Warn("failed to record login ip", zap.Error(err))
	}

	creds, err := d.transfer(ctx, account.ID, realm)
	if err != nil {
		// transfer already picked the rejection; shut down after it is
		// flushed so the dialog reaches the client.
		sendErr := send(sess, creds)
		sess.Shutdown()
		if sendErr != nil {
			return sendErr
		}
		d.Log.Warn("transfer failed",
			zap.String("realm", m.Realm),
			zap.Uint32("account", account.ID),
			zap.Error(err),
		)
		return nil
	}

	d.Log.Info("account authenticated",
		zap.String("username", m.Username),
		zap.String("realm", m.Realm),
		zap.Uint32("account", account.ID),
	)
	return send(sess, creds)
}

// handleConnect is the client detaching from the account server after it
// received its redirect; there is nothing left to do but hang up.
func (d *Auth) handleConnect(_ context.Context, s any, _ *packet.Reader) error {
	sess := session(s)
	sess.Shutdown()
	return nil
}
