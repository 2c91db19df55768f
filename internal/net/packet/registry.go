package packet

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	// StateConnected covers the window between accept and the first
	// authenticating packet (MsgAccount on the account server, MsgConnect
	// on the game server).
	StateConnected SessionState = iota
	// StateInWorld means the token was redeemed and a character is loaded.
	StateInWorld
	// StateCreating means the token was redeemed but no character exists
	// yet; only MsgRegister is useful here.
	StateCreating
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateInWorld:
		return "InWorld"
	case StateCreating:
		return "Creating"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for packet handlers. The session is
// passed as an opaque interface to avoid import cycles; handlers assert it
// back to *net.Session. A returned error is rendered into a packet by the
// connection task where possible.
type HandlerFunc func(ctx context.Context, sess any, r *Reader) error

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps packet IDs to handlers with state-based access control.
// It is built once at startup and read-only afterwards.
type Registry struct {
	handlers map[uint16]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[uint16]*handlerEntry),
		log:      log,
	}
}

// Register maps a packet ID to a handler, restricted to the given session
// states. An empty state list allows every state.
func (reg *Registry) Register(id uint16, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[id] = &handlerEntry{fn: fn, allowedStates: allowed}
}

// Dispatch finds the handler for the packet ID, validates the session state,
// and calls the handler on the decoded body. Unknown IDs are logged and
// ignored; a wrong-state packet is an error the caller may answer or drop.
func (reg *Registry) Dispatch(ctx context.Context, sess any, state SessionState, id uint16, body []byte) error {
	entry, ok := reg.handlers[id]
	if !ok {
		reg.log.Warn("unknown packet id",
			zap.Uint16("id", id),
			zap.Int("size", len(body)),
			zap.Stringer("state", state),
		)
		return nil
	}

	if len(entry.allowedStates) > 0 && !entry.allowedStates[state] {
		reg.log.Warn("packet not allowed in state",
			zap.Uint16("id", id),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("packet %d not allowed in state %s", id, state)
	}

	return reg.safeCall(ctx, entry.fn, sess, NewReader(body), id)
}

// safeCall executes a handler with panic recovery so a single bad packet
// cannot take down the connection task.
func (reg *Registry) safeCall(ctx context.Context, fn HandlerFunc, sess any, r *Reader, id uint16) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Uint16("id", id),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for packet %d: %v", id, rec)
		}
	}()
	return fn(ctx, sess, r)
}
