package net

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coemu/server/internal/crypto"
	"github.com/coemu/server/internal/net/packet"
)

// startSession runs a session over an in-memory pipe and returns the client
// end plus codec halves keyed like the real client.
func startSession(t *testing.T, reg *packet.Registry) (*Session, *Encoder, *Decoder) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})

	sess := NewSession(serverConn, 1, 16, crypto.NewTQCipher(), zap.NewNop())
	go sess.writeLoop()
	go sess.readLoop(context.Background(), reg, func(err error) (uint16, []byte, bool) {
		return 0, nil, false
	})

	// The client encrypts what the server decrypts and vice versa; fresh
	// ciphers on both ends share the primary keystream.
	enc := NewEncoder(clientConn, crypto.NewTQCipher())
	dec := NewDecoder(clientConn, crypto.NewTQCipher())
	return sess, enc, dec
}

func TestSessionDispatchesInOrder(t *testing.T) {
	var got []uint32
	done := make(chan struct{})
	reg := packet.NewRegistry(zap.NewNop())
	reg.Register(1005, nil, func(_ context.Context, _ any, r *packet.Reader) error {
		v := r.ReadU32()
		got = append(got, v)
		if len(got) == 3 {
			close(done)
		}
		return r.Err()
	})

	_, enc, _ := startSession(t, reg)
	for i := uint32(1); i <= 3; i++ {
		w := packet.NewWriter()
		w.WriteU32(i)
		require.NoError(t, enc.WriteFrame(1005, w.Bytes()))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("packets were not dispatched")
	}
	assert.Equal(t, []uint32{1, 2, 3}, got)
}

func TestSessionSendReachesClient(t *testing.T) {
	reg := packet.NewRegistry(zap.NewNop())
	sess, _, dec := startSession(t, reg)

	w := packet.NewWriter()
	w.WriteFixedString("ANSWER_OK", 16)
	require.NoError(t, sess.Send(1004, w.Bytes()))

	id, body, err := dec.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, uint16(1004), id)
	r := packet.NewReader(body)
	assert.Equal(t, "ANSWER_OK", r.ReadFixedString(16))
}

func TestSessionTrySendDropsWhenFull(t *testing.T) {
	// No writer goroutine: the mailbox fills and TrySend must not block.
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	sess := NewSession(serverConn, 7, 2, crypto.NopCipher{}, zap.NewNop())

	assert.True(t, sess.TrySend(1004, nil))
	assert.True(t, sess.TrySend(1004, nil))
	assert.False(t, sess.TrySend(1004, nil))
}

func TestSessionSendAfterClose(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	sess := NewSession(serverConn, 9, 2, crypto.NopCipher{}, zap.NewNop())
	sess.Close()
	assert.Error(t, sess.Send(1004, nil))
	assert.False(t, sess.TrySend(1004, nil))
}
