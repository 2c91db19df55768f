package handler

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/msg"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/persist"
	"github.com/coemu/server/internal/world"
)

// Character creation landing spot: Twin City.
const (
	startMapID uint32 = 1010
	startX     uint16 = 61
	startY     uint16 = 109
)

// handleRegister creates a character for an account holding a creation
// token, validates the client's body/class choices, and rolls the starting
// stats.
func (d *Game) handleRegister(ctx context.Context, s any, r *packet.Reader) error {
	sess := session(s)
	var m msg.Register
	if err := m.Unmarshal(r); err != nil {
		return err
	}

	creation, ok := d.Tokens.ConsumeCreation(m.Token)
	if !ok {
		return ErrorPacket(msg.RegisterInvalid())
	}
	if !msg.ValidBody(m.Mesh) || !msg.ValidClass(m.Class) {
		return ErrorPacket(msg.RegisterInvalid())
	}

	taken, err := d.Characters.NameTaken(ctx, m.CharacterName)
	if err != nil {
		d.Log.Error("name check failed", zap.Error(err))
		return ErrorPacket(msg.RegisterInvalid())
	}
	if taken {
		return ErrorPacket(msg.RegisterNameTaken())
	}

	row := buildCharacter(&m, creation.AccountID, creation.RealmID)
	id, err := d.Characters.Create(ctx, row)
	if err != nil {
		d.Log.Error("character insert failed", zap.Error(err))
		return ErrorPacket(msg.RegisterInvalid())
	}
	row.ID = id

	me := world.NewCharacter(sess, characterData(row))
	if err := d.World.Attach(me, row.MapID); err != nil {
		d.Log.Error("attach after create failed", zap.Error(err))
		return ErrorPacket(msg.RegisterInvalid())
	}
	sess.CharID = id
	sess.SetState(packet.StateInWorld)

	d.Log.Info("character created",
		zap.Uint32("account", creation.AccountID),
		zap.Uint32("character", id),
		zap.String("name", m.CharacterName),
	)
	return send(sess, msg.RegisterOK())
}

// buildCharacter rolls a fresh character from the creation request: a
// random avatar for the chosen sex, a random hair style, and the class's
// starting attribute spread.
func buildCharacter(m *msg.Register, accountID, realmID uint32) *persist.CharacterRow {
	var avatar uint16
	if m.Mesh < 1005 {
		avatar = uint16(1 + rand.Intn(48))
	} else {
		avatar = uint16(201 + rand.Intn(48))
	}
	hair := uint16(3+rand.Intn(6))*100 + world.HairStyles[rand.Intn(len(world.HairStyles))]

	var strength, spirit uint16
	if m.Class == msg.ClassTaoist {
		strength, spirit = 2, 10
	} else {
		strength, spirit = 4, 0
	}
	const (
		agility  uint16 = 6
		vitality uint16 = 12
	)
	hp := (strength + agility + spirit) * 3
	hp += vitality * 24
	mp := spirit * 5

	return &persist.CharacterRow{
		AccountID: accountID,
		RealmID:   realmID,
		Name:      m.CharacterName,
		Mesh:      uint32(m.Mesh),
		Avatar:    avatar,
		HairStyle: hair,
		Silver:    1000,
		Class:     m.Class,
		Level:     1,
		MapID:     startMapID,
		X:         startX,
		Y:         startY,
		Str:       strength,
		Agi:       agility,
		Vit:       vitality,
		Spi:       spirit,
		HP:        hp,
		MP:        mp,
	}
}
