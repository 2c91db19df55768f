package crypto

import (
	"encoding/binary"
	"math/bits"
)

// Subkey table shared with the client's login procedure.
var rc5Sub = [26]uint32{
	0xA9915556, 0x48E44110, 0x9F32308F, 0x27F41D3E, 0xCF4F3523,
	0xEAC3C6B4, 0xE9EA5E03, 0xE5974BBA, 0x334D7692, 0x2C6BCF2E,
	0x0DC53B74, 0x995C92A6, 0x7E4F6D77, 0x1EB2B79F, 0x1D348D89,
	0xED641354, 0x15E04A9D, 0x488DA159, 0x647817D3, 0x8CA0BC20,
	0x9264F7FE, 0x91E78C6C, 0x5C9A07FB, 0xABD4DCCE, 0x6416F98D,
	0x6642AB5B,
}

const rc5Rounds = 12

// RC5Decrypt decrypts data in place with the 64-bit-block, 12-round RC5
// variant the client encrypts login passwords with. Only whole 8-byte blocks
// are processed; the password field is always 16 bytes. Encryption is never
// needed server-side.
func RC5Decrypt(data []byte) {
	for off := 0; off+8 <= len(data); off += 8 {
		a := binary.LittleEndian.Uint32(data[off:])
		b := binary.LittleEndian.Uint32(data[off+4:])
		for r := rc5Rounds; r >= 1; r-- {
			b = bits.RotateLeft32(b-rc5Sub[2*r+1], -int(a&31)) ^ a
			a = bits.RotateLeft32(a-rc5Sub[2*r], -int(b&31)) ^ b
		}
		binary.LittleEndian.PutUint32(data[off:], a-rc5Sub[0])
		binary.LittleEndian.PutUint32(data[off+4:], b-rc5Sub[1])
	}
}
