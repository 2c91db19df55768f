package world

import (
	"sync"

	"github.com/coemu/server/internal/msg"
	"github.com/coemu/server/internal/net"
)

// CharacterData is the loaded snapshot a character starts from.
type CharacterData struct {
	ID            uint32
	AccountID     uint32
	RealmID       uint32
	Name          string
	Mesh          uint32
	Avatar        uint16
	HairStyle     uint16
	Silver        uint32
	CPs           uint32
	Class         uint8
	PreviousClass uint8
	Rebirths      uint8
	Level         uint8
	Experience    uint64
	MapID         uint32
	X             uint16
	Y             uint16
	Virtue        uint16
	Strength      uint16
	Agility       uint16
	Vitality      uint16
	Spirit        uint16
	AttrPoints    uint16
	HealthPoints  uint16
	ManaPoints    uint16
	KillPoints    uint16
}

// Character is a player's persona in the world. The owning connection task
// drives it; position fields are read by other connection tasks during
// screen updates, so they sit behind a small lock.
type Character struct {
	data   CharacterData
	owner  *net.Session
	screen *Screen

	mu        sync.Mutex
	mapID     uint32
	x, y      uint16
	direction uint8
	elevation uint16
	action    uint8
	flags     uint64
}

// NewCharacter binds a loaded character to its connection. The screen is
// created alongside and back-references the character by pointer; the pair
// lives and dies together.
func NewCharacter(owner *net.Session, data CharacterData) *Character {
	c := &Character{
		data:  data,
		owner: owner,
		mapID: data.MapID,
		x:     data.X,
		y:     data.Y,
	}
	c.screen = newScreen(c)
	return c
}

func (c *Character) ID() uint32          { return c.data.ID }
func (c *Character) AccountID() uint32   { return c.data.AccountID }
func (c *Character) Name() string        { return c.data.Name }
func (c *Character) Owner() *net.Session { return c.owner }
func (c *Character) Screen() *Screen     { return c.screen }
func (c *Character) Data() CharacterData { return c.data }

// Position returns the character's current map and coordinates.
func (c *Character) Position() (mapID uint32, x, y uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapID, c.x, c.y
}

func (c *Character) MapID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapID
}

func (c *Character) SetPosition(mapID uint32, x, y uint16) {
	c.mu.Lock()
	c.mapID = mapID
	c.x = x
	c.y = y
	c.mu.Unlock()
}

func (c *Character) Direction() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

func (c *Character) SetDirection(d uint8) {
	c.mu.Lock()
	c.direction = d % 8
	c.mu.Unlock()
}

func (c *Character) Elevation() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elevation
}

func (c *Character) SetElevation(e uint16) {
	c.mu.Lock()
	c.elevation = e
	c.mu.Unlock()
}

func (c *Character) Flags() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags
}

func (c *Character) SetFlags(f uint64) {
	c.mu.Lock()
	c.flags = f
	c.mu.Unlock()
}

// PackXY packs a coordinate pair the way action packets carry them: x in
// the low half, y in the high half.
func PackXY(x, y uint16) uint32 {
	return uint32(x) | uint32(y)<<16
}

// SpawnPacket builds the spawn the client renders when this character
// enters another player's screen.
func (c *Character) SpawnPacket() *msg.Player {
	c.mu.Lock()
	x, y, dir, flags, action := c.x, c.y, c.direction, c.flags, c.action
	c.mu.Unlock()
	d := c.data
	return &msg.Player{
		CharacterID:   int32(d.ID),
		CharacterID2:  int32(d.ID),
		Mesh:          int32(d.Mesh + uint32(d.Avatar)*10_000),
		StatusFlags:   int64(flags),
		HealthPoints:  d.HealthPoints,
		Level:         int16(d.Level),
		Level2:        int16(d.Level),
		X:             x,
		Y:             y,
		HairStyle:     int16(d.HairStyle),
		Direction:     dir,
		Action:        action,
		CharacterName: d.Name,
	}
}

// UserInfoPacket builds the login-time self snapshot.
func (c *Character) UserInfoPacket() *msg.UserInfo {
	d := c.data
	return &msg.UserInfo{
		CharacterID:     d.ID,
		Mesh:            d.Mesh + uint32(d.Avatar)*10_000,
		HairStyle:       d.HairStyle,
		Silver:          d.Silver,
		CPs:             d.CPs,
		Experience:      d.Experience,
		Strength:        d.Strength,
		Agility:         d.Agility,
		Vitality:        d.Vitality,
		Spirit:          d.Spirit,
		AttributePoints: d.AttrPoints,
		HealthPoints:    d.HealthPoints,
		ManaPoints:      d.ManaPoints,
		KillPoints:      d.KillPoints,
		Level:           d.Level,
		Class:           d.Class,
		PreviousClass:   d.PreviousClass,
		Rebirths:        d.Rebirths,
		ShowName:        true,
		CharacterName:   d.Name,
		Spouse:          "None",
	}
}

// SendSpawn queues this character's spawn to another player's session.
// Best-effort: a full observer queue drops the spawn rather than stalling
// the sender.
func (c *Character) SendSpawn(to *net.Session) {
	p := c.SpawnPacket()
	to.TrySend(p.PacketID(), p.Marshal())
}

// ExchangeSpawnPackets shows two characters to each other; called when they
// first enter each other's screens.
func (c *Character) ExchangeSpawnPackets(other *Character) {
	c.SendSpawn(other.Owner())
	other.SendSpawn(c.Owner())
}

// Kickback answers an illegal move by teleporting the client back to the
// authoritative position.
func (c *Character) Kickback() error {
	_, x, y := c.Position()
	m := msg.NewAction(c.ID(), PackXY(x, y), uint16(c.Direction()), msg.ActionTeleport)
	return c.owner.Send(m.PacketID(), m.Marshal())
}
