// Package handler wires packet IDs to game logic on both servers. Handlers
// receive their dependencies through the Auth/Game structs rather than
// globals, and report user-visible failures as packet errors the connection
// task sends back to the client.
package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/config"
	"github.com/coemu/server/internal/msg"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/net/packet"
	"github.com/coemu/server/internal/persist"
	"github.com/coemu/server/internal/scripting"
	"github.com/coemu/server/internal/token"
	"github.com/coemu/server/internal/world"
)

// AccountStore is the slice of the account repository the auth flow needs.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*persist.AccountRow, error)
	ValidatePassword(hash, rawPassword string) bool
	UpdateLastIP(ctx context.Context, id uint32, ip string) error
}

// RealmStore resolves realm names to their addresses.
type RealmStore interface {
	FindByName(ctx context.Context, name string) (*persist.RealmRow, error)
}

// CharacterStore is the slice of the character repository the game flow
// needs.
type CharacterStore interface {
	FindByAccount(ctx context.Context, accountID uint32) (*persist.CharacterRow, error)
	FindByID(ctx context.Context, id uint32) (*persist.CharacterRow, error)
	NameTaken(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, c *persist.CharacterRow) (uint32, error)
	SavePosition(ctx context.Context, id, mapID uint32, x, y uint16) error
}

// Auth carries the account server's dependencies.
type Auth struct {
	Config   *config.Config
	Accounts AccountStore
	Realms   RealmStore
	Log      *zap.Logger
}

// Game carries the game server's dependencies, shared by the client-facing
// and RPC listeners.
type Game struct {
	Config     *config.Config
	World      *world.World
	Tokens     *token.Store
	Characters CharacterStore
	Scripts    *scripting.Engine
	Log        *zap.Logger
}

// packetError carries a client-facing packet through the error return path.
// The dispatcher unwraps it and queues the packet instead of logging a
// failure.
type packetError struct {
	pkt msg.Outgoing
}

func (e *packetError) Error() string {
	return fmt.Sprintf("packet error (id %d)", e.pkt.PacketID())
}

// ErrorPacket wraps a packet as a handler error.
func ErrorPacket(pkt msg.Outgoing) error {
	return &packetError{pkt: pkt}
}

// RenderError converts handler errors into client packets. Errors built by
// ErrorPacket yield their wrapped packet, decode errors become a
// system-channel notice, and anything else has no client-facing form.
func RenderError(err error) (uint16, []byte, bool) {
	var pe *packetError
	if errors.As(err, &pe) {
		return pe.pkt.PacketID(), pe.pkt.Marshal(), true
	}
	if errors.Is(err, packet.ErrEOF) || errors.Is(err, packet.ErrInvalidBool) {
		p := msg.SystemTalk(0, msg.ChannelSystem, "Malformed packet")
		return p.PacketID(), p.Marshal(), true
	}
	return 0, nil, false
}

// send queues an outgoing packet on the session, blocking on backpressure.
func send(s *gamenet.Session, pkt msg.Outgoing) error {
	return s.Send(pkt.PacketID(), pkt.Marshal())
}

// session asserts the opaque dispatcher argument back to the session type.
func session(v any) *gamenet.Session {
	return v.(*gamenet.Session)
}
