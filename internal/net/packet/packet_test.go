package packet

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScalarRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU8(0xAB)
	w.WriteI8(-5)
	w.WriteU16(0xBEEF)
	w.WriteI16(-12345)
	w.WriteU32(0xDEADBEEF)
	w.WriteI32(-7)
	w.WriteU64(0x1122334455667788)
	w.WriteI64(-1)
	w.WriteBool(true)
	w.WriteBool(false)

	r := NewReader(w.Bytes())
	assert.Equal(t, uint8(0xAB), r.ReadU8())
	assert.Equal(t, int8(-5), r.ReadI8())
	assert.Equal(t, uint16(0xBEEF), r.ReadU16())
	assert.Equal(t, int16(-12345), r.ReadI16())
	assert.Equal(t, uint32(0xDEADBEEF), r.ReadU32())
	assert.Equal(t, int32(-7), r.ReadI32())
	assert.Equal(t, uint64(0x1122334455667788), r.ReadU64())
	assert.Equal(t, int64(-1), r.ReadI64())
	assert.True(t, r.ReadBool())
	assert.False(t, r.ReadBool())
	require.NoError(t, r.Err())
	assert.Zero(t, r.Remaining())
}

func TestScalarsAreLittleEndian(t *testing.T) {
	w := NewWriter()
	w.WriteU16(0x1234)
	w.WriteU32(0x56789ABC)
	assert.Equal(t, []byte{0x34, 0x12, 0xBC, 0x9A, 0x78, 0x56}, w.Bytes())
}

func TestReadPastEnd(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	assert.Equal(t, uint16(0x0201), r.ReadU16())
	assert.Zero(t, r.ReadU32())
	assert.ErrorIs(t, r.Err(), ErrEOF)
	// The error is sticky.
	assert.Zero(t, r.ReadU8())
	assert.ErrorIs(t, r.Err(), ErrEOF)
}

func TestInvalidBool(t *testing.T) {
	r := NewReader([]byte{0x02})
	assert.False(t, r.ReadBool())
	assert.ErrorIs(t, r.Err(), ErrInvalidBool)
}

func TestVarStringRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteString("hello world")
	r := NewReader(w.Bytes())
	assert.Equal(t, "hello world", r.ReadString())
	require.NoError(t, r.Err())
}

func TestVarStringGBK(t *testing.T) {
	w := NewWriter()
	w.WriteString("倚天剑")
	r := NewReader(w.Bytes())
	assert.Equal(t, "倚天剑", r.ReadString())
	require.NoError(t, r.Err())
}

func TestVarStringTruncated(t *testing.T) {
	w := NewWriter()
	w.WriteString(strings.Repeat("a", 300))
	r := NewReader(w.Bytes())
	assert.Len(t, r.ReadString(), MaxStringLen)
	require.NoError(t, r.Err())
}

func TestFixedStringPadding(t *testing.T) {
	w := NewWriter()
	w.WriteFixedString("CoEmu", 16)
	require.Equal(t, 16, w.Len())
	r := NewReader(w.Bytes())
	assert.Equal(t, "CoEmu", r.ReadFixedString(16))
}

func TestFixedStringNonASCII(t *testing.T) {
	w := NewWriter()
	w.WriteFixedString("naïve", 10)
	r := NewReader(w.Bytes())
	assert.Equal(t, "na?ve", r.ReadFixedString(10))
}

func TestFixedStringTruncates(t *testing.T) {
	w := NewWriter()
	w.WriteFixedString("averylongusernamethatoverflows", 16)
	require.Equal(t, 16, w.Len())
	r := NewReader(w.Bytes())
	assert.Equal(t, "averylongusernam", r.ReadFixedString(16))
}

func TestPasswordField(t *testing.T) {
	// RC5 ciphertext of the password "1" as captured from the client.
	cipher := []byte{
		0x1C, 0xFD, 0x41, 0xC9, 0xA1, 0x69, 0xAA, 0xB6,
		0x0D, 0xA6, 0x08, 0x4D, 0xF3, 0x67, 0xEB, 0x73,
	}
	r := NewReader(cipher)
	assert.Equal(t, "1", r.ReadPassword())
	require.NoError(t, r.Err())
}

func TestStringListRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteStringList([]string{"SYSTEM", "ALLUSERS", "", "hello"})
	r := NewReader(w.Bytes())
	assert.Equal(t, []string{"SYSTEM", "ALLUSERS", "", "hello"}, r.ReadStringList())
	require.NoError(t, r.Err())
}

func TestStringListMaxSize(t *testing.T) {
	entries := make([]string, 255)
	for i := range entries {
		entries[i] = strings.Repeat("x", 250)
	}
	w := NewWriter()
	w.WriteStringList(entries)
	require.Equal(t, 1+255*251, w.Len())
	r := NewReader(w.Bytes())
	assert.Equal(t, entries, r.ReadStringList())
	require.NoError(t, r.Err())
}

func TestStringListTruncatedBody(t *testing.T) {
	r := NewReader([]byte{0x02, 0x03, 'a', 'b'})
	assert.Nil(t, r.ReadStringList())
	assert.ErrorIs(t, r.Err(), ErrEOF)
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got uint32
	reg.Register(1005, []SessionState{StateInWorld}, func(_ context.Context, _ any, r *Reader) error {
		got = r.ReadU32()
		return r.Err()
	})

	body := []byte{0x2A, 0x00, 0x00, 0x00}
	require.NoError(t, reg.Dispatch(context.Background(), nil, StateInWorld, 1005, body))
	assert.Equal(t, uint32(42), got)
}

func TestRegistryUnknownIDIsIgnored(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	assert.NoError(t, reg.Dispatch(context.Background(), nil, StateConnected, 9999, nil))
}

func TestRegistryStateGate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(1005, []SessionState{StateInWorld}, func(context.Context, any, *Reader) error {
		t.Fatal("handler must not run")
		return nil
	})
	assert.Error(t, reg.Dispatch(context.Background(), nil, StateConnected, 1005, nil))
}

func TestRegistryRecoversPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(1004, nil, func(context.Context, any, *Reader) error {
		panic("boom")
	})
	err := reg.Dispatch(context.Background(), nil, StateConnected, 1004, nil)
	assert.Error(t, err)
}
