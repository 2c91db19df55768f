package packet

import (
	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	// MaxStringLen is the longest var-length string the one-byte prefix
	// can carry.
	MaxStringLen = 255
	// MaxListEntryLen is the longest entry a string list may carry.
	MaxListEntryLen = 250
)

// Writer builds a packet body. All multi-byte scalars are little-endian;
// fields are emitted in declaration order with no tags.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// WriteU8 writes 1 byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU16 writes 2 bytes little-endian.
func (w *Writer) WriteU16(v uint16) {
	w.buf = append(w.buf, byte(v), byte(v>>8))
}

// WriteU32 writes 4 bytes little-endian.
func (w *Writer) WriteU32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteU64 writes 8 bytes little-endian.
func (w *Writer) WriteU64(v uint64) {
	w.buf = append(w.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func (w *Writer) WriteI8(v int8)   { w.WriteU8(uint8(v)) }
func (w *Writer) WriteI16(v int16) { w.WriteU16(uint16(v)) }
func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }
func (w *Writer) WriteI64(v int64) { w.WriteU64(uint64(v)) }

// WriteBool writes 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

// WriteString writes a one-byte length prefix followed by the string bytes,
// encoded to GBK when it is not plain ASCII. Longer payloads are truncated to
// the prefix's range.
func (w *Writer) WriteString(s string) {
	b := utf8ToGBK(s)
	if len(b) > MaxStringLen {
		b = b[:MaxStringLen]
	}
	w.WriteU8(uint8(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteFixedString writes exactly n bytes: the string's ASCII bytes
// null-padded, truncated at n. Non-ASCII characters become '?'.
func (w *Writer) WriteFixedString(s string, n int) {
	out := make([]byte, n)
	i := 0
	for _, r := range s {
		if i >= n {
			break
		}
		if r < 0x80 {
			out[i] = byte(r)
		} else {
			out[i] = '?'
		}
		i++
	}
	w.buf = append(w.buf, out...)
}

// WriteStringList writes a one-byte count followed by each entry as a
// length-prefixed string. Entries are truncated to the list entry limit.
func (w *Writer) WriteStringList(list []string) {
	if len(list) > MaxStringLen {
		list = list[:MaxStringLen]
	}
	w.WriteU8(uint8(len(list)))
	for _, s := range list {
		b := utf8ToGBK(s)
		if len(b) > MaxListEntryLen {
			b = b[:MaxListEntryLen]
		}
		w.WriteU8(uint8(len(b)))
		w.buf = append(w.buf, b...)
	}
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the assembled body.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the current body length.
func (w *Writer) Len() int { return len(w.buf) }

// utf8ToGBK encodes a string to GBK bytes. Pure ASCII passes through; if
// encoding fails, non-ASCII runes degrade to '?'.
func utf8ToGBK(s string) []byte {
	allASCII := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			allASCII = false
			break
		}
	}
	if allASCII {
		return []byte(s)
	}
	encoded, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	if err == nil {
		return encoded
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			out = append(out, byte(r))
		} else {
			out = append(out, '?')
		}
	}
	return out
}
