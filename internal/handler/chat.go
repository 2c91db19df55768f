package handler

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/msg"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/world"
)

// handleTalk routes chat. Messages starting with '$' are server commands
// for the sender; anything else is forwarded to the sender's observers.
func (d *Game) handleTalk(_ context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Talk
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	me, ok := d.World.Character(sess.CharID)
	if !ok {
		return ErrorPacket(msg.LoginInvalid())
	}

	if strings.HasPrefix(m.Message, "$") {
		return d.handleCommand(sess, me, strings.TrimPrefix(m.Message, "$"))
	}

	me.Screen().Broadcast(&m)
	return nil
}

func (d *Game) handleCommand(sess *gamenet.Session, me *world.Character, command string) error {
	characterID := me.ID()
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil
	}

	switch parts[0] {
	case "dc":
		sess.Shutdown()
		return nil

	case "tele":
		if len(parts) != 4 {
			return ErrorPacket(msg.SystemTalk(characterID, msg.ChannelTopLeft, "Usage: $tele map x y"))
		}
		mapID, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return ErrorPacket(msg.SystemTalk(characterID, msg.ChannelTopLeft, "Bad MapId"))
		}
		x, err := strconv.ParseUint(parts[2], 10, 16)
		if err != nil {
			return ErrorPacket(msg.SystemTalk(characterID, msg.ChannelTopLeft, "Bad X"))
		}
		y, err := strconv.ParseUint(parts[3], 10, 16)
		if err != nil {
			return ErrorPacket(msg.SystemTalk(characterID, msg.ChannelTopLeft, "Bad Y"))
		}
		return d.teleport(sess, me, uint32(mapID), uint16(x), uint16(y))

	default:
		d.Log.Warn("unknown command", zap.String("command", parts[0]))
		return ErrorPacket(msg.SystemTalk(characterID, msg.ChannelTopLeft, "Unknown command "+parts[0]))
	}
}
