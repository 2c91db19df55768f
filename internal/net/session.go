package net

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/crypto"
	"github.com/coemu/server/internal/net/packet"
)

const writeTimeout = 10 * time.Second

type messageKind uint8

const (
	messagePacket messageKind = iota
	messageGenerateKeys
	messageShutdown
)

// Message is what travels through a session's outbound mailbox. The writer
// goroutine owns the encrypt half of the cipher, so key regeneration rides
// the same queue as packets and lands between frames, never inside one.
type Message struct {
	kind messageKind
	id   uint16
	body []byte
	seed uint64
}

// PacketMessage queues an encoded packet body for sending.
func PacketMessage(id uint16, body []byte) Message {
	return Message{kind: messagePacket, id: id, body: body}
}

// GenerateKeysMessage queues a cipher rekey.
func GenerateKeysMessage(seed uint64) Message {
	return Message{kind: messageGenerateKeys, seed: seed}
}

// ShutdownMessage asks the writer to close the write half and stop.
func ShutdownMessage() Message {
	return Message{kind: messageShutdown}
}

// Session is one client connection: a socket, a cipher, and two goroutines.
// The reader decrypts frames and dispatches them strictly in order; the
// writer drains the bounded outbound mailbox. Handlers hold the session to
// queue replies and to stash who is on the other end.
type Session struct {
	ID   uint64
	conn net.Conn

	cipher crypto.Cipher
	enc    *Encoder
	dec    *Decoder
	state  atomic.Int32

	out chan Message

	// Set by handlers once the connection authenticates. Only the reader
	// goroutine (which runs the handlers) touches these.
	AccountID uint32
	RealmID   uint32
	CharID    uint32

	IP string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, outSize int, cipher crypto.Cipher, log *zap.Logger) *Session {
	s := &Session{
		ID:      id,
		conn:    conn,
		cipher:  cipher,
		enc:     NewEncoder(conn, cipher),
		dec:     NewDecoder(conn, cipher),
		out:     make(chan Message, outSize),
		IP:      conn.RemoteAddr().String(),
		closeCh: make(chan struct{}),
		log:     log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateConnected))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

func (s *Session) Log() *zap.Logger { return s.log }

// Send queues a packet for this session, blocking while the mailbox is full.
// Blocking here is the backpressure path: a handler that cannot enqueue its
// own reply stops reading more input for this connection.
func (s *Session) Send(id uint16, body []byte) error {
	return s.send(PacketMessage(id, body))
}

// TrySend queues a packet without blocking. Used when forwarding to other
// players' sessions, where one slow client must not stall the sender's
// connection task. Returns false on a full mailbox or closed session.
func (s *Session) TrySend(id uint16, body []byte) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.out <- PacketMessage(id, body):
		return true
	default:
		s.log.Warn("outbound queue full, dropping packet", zap.Uint16("id", id))
		return false
	}
}

// GenerateKeys queues a cipher rekey behind any packets already in the
// mailbox.
func (s *Session) GenerateKeys(seed uint64) error {
	return s.send(GenerateKeysMessage(seed))
}

// Shutdown asks the writer to flush and close the write half. The reader
// then observes EOF from the peer or a reset and the session winds down.
func (s *Session) Shutdown() error {
	return s.send(ShutdownMessage())
}

var errSessionClosed = errors.New("net: session closed")

func (s *Session) send(m Message) error {
	if s.closed.Load() {
		return errSessionClosed
	}
	select {
	case s.out <- m:
		return nil
	case <-s.closeCh:
		return errSessionClosed
	}
}

// Close tears the session down. Idempotent; safe from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Start launches the writer goroutine. The server's connection task calls
// this before entering the read loop; tests use it to drive a session
// without a listener.
func (s *Session) Start() {
	go s.writeLoop()
}

// writeLoop runs in its own goroutine, draining the mailbox in enqueue
// order. Rekeys apply to the encrypt stream between frames.
func (s *Session) writeLoop() {
	defer s.Close()
	for {
		select {
		case m := <-s.out:
			switch m.kind {
			case messagePacket:
				s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := s.enc.WriteFrame(m.id, m.body); err != nil {
					if !s.closed.Load() {
						s.log.Debug("write error", zap.Error(err))
					}
					return
				}
			case messageGenerateKeys:
				s.cipher.GenerateKeys(m.seed)
			case messageShutdown:
				if tc, ok := s.conn.(*net.TCPConn); ok {
					tc.CloseWrite()
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// readLoop runs on the connection task. Frames are decoded and dispatched
// one at a time; a handler error is rendered into a packet where possible
// and queued back to the client. Handlers are never cancelled mid-flight —
// shutdown is the explicit mailbox message.
func (s *Session) readLoop(ctx context.Context, reg *packet.Registry, renderError func(error) (uint16, []byte, bool)) {
	defer s.Close()
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		id, body, err := s.dec.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		if err := reg.Dispatch(ctx, s, s.State(), id, body); err != nil {
			pid, pbody, ok := renderError(err)
			if !ok {
				s.log.Warn("handler error", zap.Uint16("id", id), zap.Error(err))
				continue
			}
			if sendErr := s.Send(pid, pbody); sendErr != nil {
				return
			}
		}
	}
}
