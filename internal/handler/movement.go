package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/msg"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/world"
)

// handleWalk validates one movement step and distributes it: echoed to the
// mover, forwarded to observers, with screen membership updated at the new
// position. An illegal destination teleports the client back instead.
func (d *Game) handleWalk(_ context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Walk
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	me, ok := d.World.Character(sess.CharID)
	if !ok {
		return ErrorPacket(msg.LoginInvalid())
	}

	dir := int(m.Direction % 8)
	mapID, x, y := me.Position()
	newX := x + uint16(int16(world.WalkXCoords[dir]))
	newY := y + uint16(int16(world.WalkYCoords[dir]))

	mp, ok := d.World.Map(mapID)
	if !ok {
		return ErrorPacket(msg.SystemTalk(me.ID(), msg.ChannelTopLeft, "Invalid Location"))
	}
	tile, ok := mp.Tile(newX, newY)
	if !ok {
		return ErrorPacket(msg.SystemTalk(me.ID(), msg.ChannelTopLeft, "Invalid Location"))
	}
	if !tile.Walkable() || !world.WithinElevation(tile.Elevation, me.Elevation()) {
		return me.Kickback()
	}

	me.SetPosition(mapID, newX, newY)
	me.SetDirection(m.Direction % 8)
	me.SetElevation(tile.Elevation)

	if err := send(sess, &m); err != nil {
		return err
	}
	me.Screen().SendMovement(mp, &m)

	// Stepping onto a portal tile jumps through it.
	if tile.Access == world.TilePortal {
		if portal, found := mp.PortalAt(newX, newY); found {
			return d.teleport(sess, me, portal.ToMapID, portal.ToX, portal.ToY)
		}
	}
	return nil
}

// teleport moves the character and tells its client: the fly action, then
// the destination's weather and map info, then fresh surroundings.
func (d *Game) teleport(sess *gamenet.Session, me *world.Character, mapID uint32, x, y uint16) error {
	if err := d.World.Teleport(me, mapID, x, y); err != nil {
		d.Log.Warn("teleport failed",
			zap.Uint32("character", me.ID()),
			zap.Uint32("map", mapID),
			zap.Error(err),
		)
		return ErrorPacket(msg.SystemTalk(me.ID(), msg.ChannelTopLeft, "Invalid Location"))
	}

	fly := msg.NewAction(me.ID(), world.PackXY(x, y), uint16(me.Direction()), msg.ActionTeleport)
	if err := send(sess, fly); err != nil {
		return err
	}
	mp, _ := d.World.Map(mapID)
	if err := send(sess, msg.NewWeather(msg.WeatherKind(mp.Weather()), 100, 90)); err != nil {
		return err
	}
	return send(sess, &msg.MapInfo{UID: mp.ID(), MapID: mp.ID(), Flags: mp.Flags()})
}
