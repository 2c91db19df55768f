package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/coemu/server/internal/crypto"
)

// MaxFrameSize is the hard ceiling on a whole frame, header included.
// Typical client packets stay under 2 KB; anything above this is hostile or
// a desynced keystream.
const MaxFrameSize = 8192

// frameHeaderSize covers the length and packet-id words.
const frameHeaderSize = 4

var (
	// ErrFrameTooLarge reports a frame whose declared length exceeds
	// MaxFrameSize. Fatal to the connection.
	ErrFrameTooLarge = errors.New("net: frame too large")
	// ErrFrameLength reports a declared length smaller than the header.
	ErrFrameLength = errors.New("net: invalid frame length")
)

// Decoder reads frames from a stream. The whole frame, 4-byte header
// included, is encrypted on the wire; the header is decrypted first to learn
// the body length, then the body in place.
type Decoder struct {
	r      io.Reader
	cipher crypto.Cipher
}

func NewDecoder(r io.Reader, cipher crypto.Cipher) *Decoder {
	return &Decoder{r: r, cipher: cipher}
}

// ReadFrame reads one frame and returns its packet ID and decrypted body.
// io.EOF is returned untouched when the stream closes exactly on a frame
// boundary; a close mid-frame surfaces as io.ErrUnexpectedEOF.
func (d *Decoder) ReadFrame() (uint16, []byte, error) {
	var head [frameHeaderSize]byte
	if _, err := io.ReadFull(d.r, head[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("read frame header: %w", err)
	}
	d.cipher.Decrypt(head[:])

	n := binary.LittleEndian.Uint16(head[0:2])
	id := binary.LittleEndian.Uint16(head[2:4])
	if n > MaxFrameSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	if n < frameHeaderSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrFrameLength, n)
	}

	body := make([]byte, n-frameHeaderSize)
	if _, err := io.ReadFull(d.r, body); err != nil {
		return 0, nil, fmt.Errorf("read frame body (%d bytes): %w", len(body), err)
	}
	d.cipher.Decrypt(body)
	return id, body, nil
}

// Encoder writes frames to a stream. Each frame is assembled, encrypted in
// one piece, and written with a single Write so frames never interleave.
type Encoder struct {
	w      io.Writer
	cipher crypto.Cipher
}

func NewEncoder(w io.Writer, cipher crypto.Cipher) *Encoder {
	return &Encoder{w: w, cipher: cipher}
}

// WriteFrame encrypts and writes one frame.
func (e *Encoder) WriteFrame(id uint16, body []byte) error {
	n := len(body) + frameHeaderSize
	if n > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	frame := make([]byte, n)
	binary.LittleEndian.PutUint16(frame[0:2], uint16(n))
	binary.LittleEndian.PutUint16(frame[2:4], id)
	copy(frame[frameHeaderSize:], body)
	e.cipher.Encrypt(frame)
	if _, err := e.w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
