package protocol

// MaxVarintLen is the maximum number of bytes a varint can occupy.
const MaxVarintLen = 10

// AppendUvarint appends v to dst as a varint: 7 bits per byte, low group
// first, high bit set on every byte but the last.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Uvarint decodes a varint from the start of buf.
// It returns the value and the number of bytes read. n is -1 when buf
// ends inside the varint and -2 when the varint is longer than
// MaxVarintLen bytes.
func Uvarint(buf []byte) (v uint64, n int) {
	var shift uint
	for i, b := range buf {
		if i == MaxVarintLen {
			return 0, -2
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1
}

// UvarintLen returns the encoded size of v.
func UvarintLen(v uint64) int {
	n := 1
	for ; v >= 0x80; v >>= 7 {
		n++
	}
	return n
}
