package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/msg"
	"github.com/coemu/server/internal/net/packet"
)

// handleItem answers item interactions. The ping action keeps the client's
// latency display alive; other actions are echoed with a service notice
// until their systems exist.
func (d *Game) handleItem(_ context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Item
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	switch m.Action {
	case msg.ItemActionPing:
		res := m
		res.ClientTimestamp += 30
		return send(sess, &res)

	default:
		d.Log.Warn("missing item action",
			zap.Uint32("action", uint32(m.Action)),
			zap.Uint32("param0", m.Param0),
			zap.Uint32("param1", m.Param1),
		)
		if err := send(sess, &m); err != nil {
			return err
		}
		return send(sess, msg.SystemTalk(m.CharacterID, msg.ChannelService, "Missing item action"))
	}
}
