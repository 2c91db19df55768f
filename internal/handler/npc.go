package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/msg"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/world"
)

// handleNpc runs an NPC activation: the NPC must exist on the character's
// map and be within screen distance, then its dialog script answers.
func (d *Game) handleNpc(_ context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Npc
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	me, ok := d.World.Character(sess.CharID)
	if !ok {
		return ErrorPacket(msg.LoginInvalid())
	}
	mapID, x, y := me.Position()
	mp, ok := d.World.Map(mapID)
	if !ok {
		return nil
	}

	var npc *world.NpcData
	npcs := mp.Npcs()
	for i := range npcs {
		if npcs[i].ID == m.NpcID {
			npc = &npcs[i]
			break
		}
	}
	if npc == nil {
		return ErrorPacket(msg.SystemTalk(me.ID(), msg.ChannelSystem, "NPC not found"))
	}
	if !world.InScreen(x, y, npc.X, npc.Y) {
		return nil
	}

	steps, err := d.Scripts.NpcDialog(npc.ID, me.Name(), 0)
	if err != nil {
		d.Log.Error("npc dialog script failed", zap.Uint32("npc", npc.ID), zap.Error(err))
		return ErrorPacket(msg.SystemTalk(me.ID(), msg.ChannelSystem, "This NPC has nothing to say"))
	}
	for _, step := range steps {
		if err := send(sess, step); err != nil {
			return err
		}
	}
	return nil
}

// handleTaskDialog answers a dialog option click by re-running the NPC's
// script with the chosen option.
func (d *Game) handleTaskDialog(_ context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.TaskDialog
	if err := m.Unmarshal(r); err != nil {
		return err
	}
	if m.OptionID == 255 || m.TaskID == 0 {
		return nil
	}

	me, ok := d.World.Character(sess.CharID)
	if !ok {
		return ErrorPacket(msg.LoginInvalid())
	}
	if !d.Scripts.HasDialog(m.TaskID) {
		d.Log.Debug("dialog answer for unknown task",
			zap.Uint32("task", m.TaskID),
			zap.Uint8("option", m.OptionID),
		)
		return nil
	}

	steps, err := d.Scripts.NpcDialog(m.TaskID, me.Name(), m.OptionID)
	if err != nil {
		d.Log.Error("npc dialog script failed", zap.Uint32("npc", m.TaskID), zap.Error(err))
		return nil
	}
	for _, step := range steps {
		if err := send(sess, step); err != nil {
			return err
		}
	}
	return nil
}
