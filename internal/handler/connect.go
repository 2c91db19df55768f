package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/msg"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/persist"
	"github.com/coemu/server/internal/world"
)

// NewGameRegistry builds the game server's client-facing packet table.
func NewGameRegistry(d *Game, log *zap.Logger) *packet.Registry {
	reg := packet.NewRegistry(log)
	inWorld := []packet.SessionState{packet.StateInWorld}
	reg.Register(msg.IDConnect, []packet.SessionState{packet.StateConnected}, d.handleConnect)
	reg.Register(msg.IDRegister, []packet.SessionState{packet.StateCreating}, d.handleRegister)
	reg.Register(msg.IDTalk, inWorld, d.handleTalk)
	reg.Register(msg.IDWalk, inWorld, d.handleWalk)
	reg.Register(msg.IDAction, inWorld, d.handleAction)
	reg.Register(msg.IDItem, inWorld, d.handleItem)
	reg.Register(msg.IDNpc, inWorld, d.handleNpc)
	reg.Register(msg.IDTaskDialog, inWorld, d.handleTaskDialog)
	return reg
}

// handleConnect redeems the login token from the transfer, rekeys the
// cipher, and either loads the account's character or opens the creation
// flow.
func (d *Game) handleConnect(ctx context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Connect
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	login, ok := d.Tokens.ConsumeLogin(m.Token)
	if !ok {
		d.Log.Warn("invalid login token", zap.String("ip", sess.IP))
		if err := send(sess, msg.LoginInvalid()); err != nil {
			return err
		}
		sess.Shutdown()
		return nil
	}

	// Rekey before any reply: the client switches keystreams right after
	// sending this packet, and the message queue keeps the order.
	if err := sess.GenerateKeys(m.Token); err != nil {
		return err
	}
	sess.AccountID = login.AccountID
	sess.RealmID = login.RealmID

	row, err := d.Characters.FindByAccount(ctx, login.AccountID)
	if err != nil {
		d.Log.Error("character load failed", zap.Uint32("account", login.AccountID), zap.Error(err))
		return ErrorPacket(msg.SystemTalk(0, msg.ChannelLogin, "Try again later"))
	}
	if row == nil {
		// No character yet: stash a creation token and park the session in
		// the creation state.
		d.Tokens.StoreCreation(uint32(m.Token), login.AccountID, login.RealmID)
		sess.SetState(packet.StateCreating)
		return send(sess, msg.LoginNewRole())
	}

	me := world.NewCharacter(sess, characterData(row))
	if err := d.World.Attach(me, row.MapID); err != nil {
		d.Log.Error("attach failed",
			zap.Uint32("character", row.ID),
			zap.Uint32("map", row.MapID),
			zap.Error(err),
		)
		return ErrorPacket(msg.SystemTalk(0, msg.ChannelLogin, "Try again later"))
	}
	sess.CharID = row.ID
	sess.SetState(packet.StateInWorld)

	d.Log.Info("character entering world",
		zap.Uint32("account", login.AccountID),
		zap.Uint32("character", row.ID),
		zap.String("name", row.Name),
	)
	if err := send(sess, msg.LoginOK()); err != nil {
		return err
	}
	return send(sess, me.UserInfoPacket())
}

// OnDisconnect disposes a game session's world state: observers see the
// character leave and the last position is saved.
func (d *Game) OnDisconnect(ctx context.Context, s *gamenet.Session) {
	if s.CharID == 0 {
		return
	}
	me, ok := d.World.Character(s.CharID)
	if !ok {
		return
	}
	me.Screen().RemoveFromObservers()
	mapID, x, y := me.Position()
	d.World.Detach(s.CharID)
	if err := d.Characters.SavePosition(ctx, s.CharID, mapID, x, y); err != nil {
		d.Log.Error("failed to save character position",
			zap.Uint32("character", s.CharID),
			zap.Error(err),
		)
	}
	d.Log.Info("character left world", zap.Uint32("character", s.CharID))
}

func characterData(row *persist.CharacterRow) world.CharacterData {
	return world.CharacterData{
		ID:            row.ID,
		AccountID:     row.AccountID,
		RealmID:       row.RealmID,
		Name:          row.Name,
		Mesh:          row.Mesh,
		Avatar:        row.Avatar,
		HairStyle:     row.HairStyle,
		Silver:        uint32(row.Silver),
		CPs:           uint32(row.CPs),
		Class:         uint8(row.Class),
		PreviousClass: uint8(row.PrevClass),
		Rebirths:      uint8(row.Rebirths),
		Level:         uint8(row.Level),
		Experience:    row.Exp,
		MapID:         row.MapID,
		X:             row.X,
		Y:             row.Y,
		Virtue:        row.Virtue,
		Strength:      row.Str,
		Agility:       row.Agi,
		Vitality:      row.Vit,
		Spirit:        row.Spi,
		AttrPoints:    row.AttrPts,
		HealthPoints:  row.HP,
		ManaPoints:    row.MP,
		KillPoints:    row.KillPts,
	}
}
