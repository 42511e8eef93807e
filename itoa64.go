// Copyright (c) 2022 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package pwhash

// the crypt(3)-style base-64 alphabet used by phpass and phpBB3;
// 64 symbols in this fixed order, distinct from RFC 4648 base64
const itoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// itoa64Index maps a byte to its 6-bit value, -1 if outside the alphabet
var itoa64Index [256]int8

func init() {
	for i := range itoa64Index {
		itoa64Index[i] = -1
	}
	for i := 0; i < len(itoa64); i++ {
		itoa64Index[itoa64[i]] = int8(i)
	}
}

// itoa64Encode packs src into itoa64 text: 6 bits per output character,
// little-endian within each 3-byte group, with the missing high bits of a
// final partial group read as zero. This is the transformation phpass
// applies to raw MD5 output; 16 input bytes yield exactly 22 characters.
func itoa64Encode(src []byte) string {
	dst := make([]byte, 0, (len(src)*4+2)/3)
	for i := 0; i < len(src); {
		v := uint32(src[i])
		i++
		dst = append(dst, itoa64[v&0x3f])
		if i < len(src) {
			v |= uint32(src[i]) << 8
		}
		dst = append(dst, itoa64[(v>>6)&0x3f])
		if i >= len(src) {
			break
		}
		i++
		if i < len(src) {
			v |= uint32(src[i]) << 16
		}
		dst = append(dst, itoa64[(v>>12)&0x3f])
		if i >= len(src) {
			break
		}
		i++
		dst = append(dst, itoa64[(v>>18)&0x3f])
	}
	return string(dst)
}

// itoa64Decode reverses itoa64Encode, producing len(src)*6/8 bytes and
// discarding the padding bits of a final partial group. Verification never
// decodes the stored digest (it re-encodes the computed one), but callers
// wanting the raw digest bytes back can have them.
func itoa64Decode(src []byte) ([]byte, error) {
	dst := make([]byte, 0, len(src)*6/8)
	var v uint32
	var bits uint
	for _, c := range src {
		d := itoa64Index[c]
		if d < 0 {
			return nil, ErrInvalidCharacter
		}
		v |= uint32(d) << bits
		bits += 6
		if bits >= 8 {
			dst = append(dst, byte(v))
			v >>= 8
			bits -= 8
		}
	}
	return dst, nil
}
