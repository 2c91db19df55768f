package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/msg"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/world"
)

// handleAction answers the client's general action requests during and
// after the login sequence.
func (d *Game) handleAction(_ context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Action
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	me, ok := d.World.Character(sess.CharID)
	if !ok {
		return ErrorPacket(msg.LoginInvalid())
	}

	switch m.Type {
	case msg.ActionSetLocation:
		mapID, x, y := me.Position()
		res := m
		res.Param0 = mapID
		res.Param1 = x
		res.Param2 = y
		return send(sess, &res)

	case msg.ActionSetMapARGB:
		_, x, y := me.Position()
		res := m
		res.Param0 = 0x00FFFFFF
		res.Param1 = x
		res.Param2 = y
		return send(sess, &res)

	case msg.ActionSetLoginComplete:
		return d.completeLogin(sess, me, &m)

	case msg.ActionUsePortal:
		mapID, x, y := me.Position()
		mp, found := d.World.Map(mapID)
		if !found {
			return ErrorPacket(msg.SystemTalk(me.ID(), msg.ChannelTopLeft, "Invalid Location"))
		}
		portal, found := mp.PortalAt(x, y)
		if !found {
			return me.Kickback()
		}
		return d.teleport(sess, me, portal.ToMapID, portal.ToX, portal.ToY)

	default:
		// Unknown subtypes are echoed with a notice, matching the client's
		// expectation of an answer for every request.
		d.Log.Warn("missing action type",
			zap.Uint16("action", uint16(m.Type)),
			zap.Uint32("character", m.CharacterID),
		)
		if err := send(sess, msg.SystemTalk(m.CharacterID, msg.ChannelTalk, "Missing action type")); err != nil {
			return err
		}
		return send(sess, &m)
	}
}

// completeLogin finishes the entering sequence: ambient packets, NPC
// spawns, and the first surroundings load.
func (d *Game) completeLogin(sess *gamenet.Session, me *world.Character, m *msg.Action) error {
	mapID, x, y := me.Position()
	mp, ok := d.World.Map(mapID)
	if !ok {
		return ErrorPacket(msg.SystemTalk(me.ID(), msg.ChannelTopLeft, "Invalid Location"))
	}

	if err := send(sess, msg.ServerTime(time.Now())); err != nil {
		return err
	}
	if err := send(sess, msg.NewWeather(msg.WeatherKind(mp.Weather()), 100, 90)); err != nil {
		return err
	}
	if err := send(sess, &msg.MapInfo{UID: mp.ID(), MapID: mp.ID(), Flags: mp.Flags()}); err != nil {
		return err
	}

	for _, npc := range mp.Npcs() {
		if !world.InScreen(x, y, npc.X, npc.Y) {
			continue
		}
		info := &msg.NpcInfo{
			ID:   npc.ID,
			X:    npc.X,
			Y:    npc.Y,
			Look: npc.Look,
			Kind: npc.Kind,
			Sort: npc.Sort,
		}
		if err := send(sess, info); err != nil {
			return err
		}
	}

	me.Screen().LoadSurroundings(mp)
	return send(sess, m)
}
