package packet

import (
	"errors"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/coemu/server/internal/crypto"
)

var (
	// ErrEOF reports a packet body shorter than its declared fields.
	ErrEOF = errors.New("packet: unexpected end of body")
	// ErrInvalidBool reports a bool byte that is neither 0 nor 1.
	ErrInvalidBool = errors.New("packet: invalid bool value")
)

// Reader reads positional packet fields from a decrypted body. All multi-byte
// scalars are little-endian. Reads past the end record a sticky error and
// return zero values; callers check Err once after decoding a whole struct.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered while reading.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = ErrEOF
		r.off = len(r.data)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// ReadU8 reads 1 unsigned byte.
func (r *Reader) ReadU8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadU16 reads 2 bytes as little-endian uint16.
func (r *Reader) ReadU16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

// ReadU32 reads 4 bytes as little-endian uint32.
func (r *Reader) ReadU32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// ReadU64 reads 8 bytes as little-endian uint64.
func (r *Reader) ReadU64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func (r *Reader) ReadI8() int8   { return int8(r.ReadU8()) }
func (r *Reader) ReadI16() int16 { return int16(r.ReadU16()) }
func (r *Reader) ReadI32() int32 { return int32(r.ReadU32()) }
func (r *Reader) ReadI64() int64 { return int64(r.ReadU64()) }

// ReadBool reads a strict single-byte bool: 0 or 1, anything else fails.
func (r *Reader) ReadBool() bool {
	switch r.ReadU8() {
	case 0:
		return false
	case 1:
		return true
	default:
		if r.err == nil {
			r.err = ErrInvalidBool
		}
		return false
	}
}

// ReadString reads a one-byte length prefix followed by that many bytes,
// decoded from GBK when the payload is not plain ASCII.
func (r *Reader) ReadString() string {
	n := int(r.ReadU8())
	b := r.take(n)
	if b == nil {
		return ""
	}
	return gbkToUTF8(b)
}

// ReadFixedString reads exactly n bytes and trims trailing nulls.
func (r *Reader) ReadFixedString(n int) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	return trimNulls(b)
}

// ReadPassword reads the 16-byte RC5-encrypted password field and returns
// the plaintext with trailing nulls trimmed.
func (r *Reader) ReadPassword() string {
	raw := r.take(16)
	if raw == nil {
		return ""
	}
	buf := make([]byte, 16)
	copy(buf, raw)
	crypto.RC5Decrypt(buf)
	return trimNulls(buf)
}

// ReadStringList reads a one-byte count followed by that many
// length-prefixed strings.
func (r *Reader) ReadStringList() []string {
	n := int(r.ReadU8())
	if r.err != nil {
		return nil
	}
	list := make([]string, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, r.ReadString())
		if r.err != nil {
			return nil
		}
	}
	return list
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func trimNulls(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// gbkToUTF8 converts GBK bytes to a UTF-8 string. Pure ASCII passes through
// unchanged; only multi-byte sequences are decoded.
func gbkToUTF8(raw []byte) string {
	allASCII := true
	for _, b := range raw {
		if b >= 0x80 {
			allASCII = false
			break
		}
	}
	if allASCII {
		return string(raw)
	}
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
