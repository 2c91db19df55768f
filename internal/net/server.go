package net

import (
	"context"
	"net"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/crypto"
	"github.com/coemu/server/internal/net/packet"
)

// connTTL keeps handoff traffic from leaking far past the hosting network.
const connTTL = 5

// ServerConfig wires a listener to its protocol: which cipher each
// connection starts with, which registry dispatches its packets, and what to
// do when a handler fails or a client goes away.
type ServerConfig struct {
	// NewCipher constructs the per-connection cipher. The account and game
	// listeners use the TQ cipher; the RPC listener uses the no-op cipher.
	NewCipher func() crypto.Cipher
	// Registry dispatches inbound packets.
	Registry *packet.Registry
	// RenderError converts a handler error into a packet for the client.
	// ok=false means the error has no client-facing form and is only
	// logged.
	RenderError func(error) (id uint16, body []byte, ok bool)
	// OnDisconnect runs after the connection task ends, before the session
	// is forgotten. May be nil.
	OnDisconnect func(ctx context.Context, s *Session)
	// OutQueueSize bounds the outbound mailbox.
	OutQueueSize int

	Log *zap.Logger
}

// Server accepts TCP connections and runs one connection task per client.
type Server struct {
	listener net.Listener
	cfg      ServerConfig
	nextID   atomic.Uint64
	closeCh  chan struct{}
	log      *zap.Logger
}

func NewServer(bindAddr string, cfg ServerConfig) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	if cfg.OutQueueSize <= 0 {
		cfg.OutQueueSize = 1000
	}
	if cfg.RenderError == nil {
		cfg.RenderError = func(error) (uint16, []byte, bool) { return 0, nil, false }
	}
	return &Server{
		listener: ln,
		cfg:      cfg,
		closeCh:  make(chan struct{}),
		log:      cfg.Log,
	}, nil
}

// Serve accepts connections until the listener closes or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			s.listener.Close()
		case <-s.closeCh:
		}
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return nil
			case <-ctx.Done():
				return nil
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		tuneConn(conn)
		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.cfg.OutQueueSize, s.cfg.NewCipher(), s.log)
		s.log.Info("client connected",
			zap.Uint64("session", id),
			zap.String("ip", sess.IP),
		)
		go s.runConn(ctx, sess)
	}
}

// runConn is the connection task: writer goroutine plus the inbound
// dispatch loop, then cleanup.
func (s *Server) runConn(ctx context.Context, sess *Session) {
	sess.Start()
	sess.readLoop(ctx, s.cfg.Registry, s.cfg.RenderError)
	if s.cfg.OnDisconnect != nil {
		s.cfg.OnDisconnect(ctx, sess)
	}
	s.log.Info("client disconnected", zap.Uint64("session", sess.ID))
}

// Shutdown stops accepting new connections. Live sessions drain on their
// own.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func tuneConn(conn net.Conn) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	tc.SetNoDelay(true)
	tc.SetLinger(-1)
	if sc, err := tc.SyscallConn(); err == nil {
		sc.Control(func(fd uintptr) {
			syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IP, syscall.IP_TTL, connTTL)
		})
	}
}
