package net

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coemu/server/internal/crypto"
)

func TestFrameRoundTrip(t *testing.T) {
	var wire bytes.Buffer
	enc := NewEncoder(&wire, crypto.NewTQCipher())
	require.NoError(t, enc.WriteFrame(1004, []byte{0x01, 0x02, 0x03}))
	require.Equal(t, 7, wire.Len())

	dec := NewDecoder(&wire, crypto.NewTQCipher())
	id, body, err := dec.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, uint16(1004), id)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, body)

	// Back at a frame boundary: a clean close reads as io.EOF.
	_, _, err = dec.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameEmptyBody(t *testing.T) {
	var wire bytes.Buffer
	enc := NewEncoder(&wire, crypto.NewTQCipher())
	require.NoError(t, enc.WriteFrame(1033, nil))
	require.Equal(t, 4, wire.Len())

	dec := NewDecoder(&wire, crypto.NewTQCipher())
	id, body, err := dec.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, uint16(1033), id)
	assert.Empty(t, body)
}

func TestFrameSequence(t *testing.T) {
	// Several frames through one keystream, chunk boundaries independent of
	// frame boundaries on the cipher side.
	var wire bytes.Buffer
	enc := NewEncoder(&wire, crypto.NewTQCipher())
	payloads := [][]byte{
		{0xAA},
		bytes.Repeat([]byte{0x42}, 300),
		nil,
		{1, 2, 3, 4, 5, 6, 7, 8},
	}
	for i, p := range payloads {
		require.NoError(t, enc.WriteFrame(uint16(2000+i), p))
	}

	dec := NewDecoder(&wire, crypto.NewTQCipher())
	for i, p := range payloads {
		id, body, err := dec.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, uint16(2000+i), id)
		if len(p) == 0 {
			assert.Empty(t, body)
		} else {
			assert.Equal(t, p, body)
		}
	}
}

func TestEncoderRejectsOversizeFrame(t *testing.T) {
	enc := NewEncoder(io.Discard, crypto.NopCipher{})
	err := enc.WriteFrame(1004, make([]byte, MaxFrameSize-3))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestDecoderRejectsOversizeFrame(t *testing.T) {
	// Hand-build a no-op-encrypted header declaring 8193 bytes.
	var head [4]byte
	binary.LittleEndian.PutUint16(head[0:2], MaxFrameSize+1)
	binary.LittleEndian.PutUint16(head[2:4], 1004)
	dec := NewDecoder(bytes.NewReader(head[:]), crypto.NopCipher{})
	_, _, err := dec.ReadFrame()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestDecoderRejectsShortLength(t *testing.T) {
	var head [4]byte
	binary.LittleEndian.PutUint16(head[0:2], 3)
	binary.LittleEndian.PutUint16(head[2:4], 1004)
	dec := NewDecoder(bytes.NewReader(head[:]), crypto.NopCipher{})
	_, _, err := dec.ReadFrame()
	assert.ErrorIs(t, err, ErrFrameLength)
}

func TestDecoderMidFrameClose(t *testing.T) {
	var wire bytes.Buffer
	enc := NewEncoder(&wire, crypto.NewTQCipher())
	require.NoError(t, enc.WriteFrame(1005, []byte{1, 2, 3, 4, 5, 6}))

	// Drop the tail of the body: the close is mid-frame, not clean.
	trunc := wire.Bytes()[:wire.Len()-2]
	dec := NewDecoder(bytes.NewReader(trunc), crypto.NewTQCipher())
	_, _, err := dec.ReadFrame()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrameMaxSize(t *testing.T) {
	var wire bytes.Buffer
	enc := NewEncoder(&wire, crypto.NewTQCipher())
	body := make([]byte, MaxFrameSize-4)
	for i := range body {
		body[i] = byte(i)
	}
	require.NoError(t, enc.WriteFrame(1008, body))

	dec := NewDecoder(&wire, crypto.NewTQCipher())
	id, got, err := dec.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, uint16(1008), id)
	assert.Equal(t, body, got)
}
