package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCQEncryptTQDecrypt(t *testing.T) {
	cq := NewCQCipher()
	tq := NewTQCipher()

	src := []byte("Hello, World!")
	buf := append([]byte(nil), src...)
	cq.Encrypt(buf)
	tq.Decrypt(buf)
	assert.Equal(t, src, buf)
}

func TestTQEncryptCQDecrypt(t *testing.T) {
	cq := NewCQCipher()
	tq := NewTQCipher()

	src := []byte("Welcome")
	buf := append([]byte(nil), src...)
	tq.Encrypt(buf)
	cq.Decrypt(buf)
	assert.Equal(t, src, buf)
}

func TestCQTQRekeyedExchange(t *testing.T) {
	cq := NewCQCipher()
	tq := NewTQCipher()

	// Pre-rekey traffic in both directions.
	up := make([]byte, 28)
	cq.Encrypt(up)
	tq.Decrypt(up)
	require.Equal(t, make([]byte, 28), up)

	// Both peers derive the alternate key from the handoff token.
	const seed = uint64(0xC0FFEEBABE)
	cq.GenerateKeys(seed)
	tq.GenerateKeys(seed)

	// Client-to-server switches to the alternate keystream; the client's
	// counter carried over while the server's decrypt counter did too.
	up2 := []byte("post-rekey client data")
	buf := append([]byte(nil), up2...)
	cq.Encrypt(buf)
	tq.Decrypt(buf)
	assert.Equal(t, up2, buf)

	// Server-to-client stays on the primary key; the client restarted its
	// decrypt counter and the server restarted its encrypt counter.
	down := []byte("post-rekey server data")
	buf = append([]byte(nil), down...)
	tq.Encrypt(buf)
	cq.Decrypt(buf)
	assert.Equal(t, down, buf)
}
