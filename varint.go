package bonjson

import "encoding/binary"

// uintWidth returns the minimal number of little-endian bytes (1..8)
// needed to hold v, used to pick the shortest canonical fixed-width
// integer form (spec.md §4.1). Mirrors the magnitude-switch shape of the
// vendored v.io/v23/vom binary codec's lenUint, adapted from vom's
// length-prefixed-byte scheme to BONJSON's fixed-width-tag scheme.
func uintWidth(v uint64) int {
	switch {
	case v <= 0xff:
		return 1
	case v <= 0xffff:
		return 2
	case v <= 0xffffff:
		return 3
	case v <= 0xffffffff:
		return 4
	case v <= 0xffffffffff:
		return 5
	case v <= 0xffffffffffff:
		return 6
	case v <= 0xffffffffffffff:
		return 7
	default:
		return 8
	}
}

// intWidth returns the minimal little-endian byte width needed to hold v
// as a two's-complement signed integer of that width.
func intWidth(v int64) int {
	switch {
	case v >= -128 && v <= 127:
		return 1
	case v >= -32768 && v <= 32767:
		return 2
	case v >= -8388608 && v <= 8388607:
		return 3
	case v >= -2147483648 && v <= 2147483647:
		return 4
	case v >= -549755813888 && v <= 549755813887:
		return 5
	case v >= -140737488355328 && v <= 140737488355327:
		return 6
	case v >= -36028797018963968 && v <= 36028797018963967:
		return 7
	default:
		return 8
	}
}

// putLEUint writes the low n bytes of v into buf (which must have length
// >= n) in little-endian order.
func putLEUint(buf []byte, v uint64, n int) {
	for i := 0; i < n; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// readLEUint reads n little-endian bytes (n in 1..8) from buf as an
// unsigned integer, sign-extension never applied.
func readLEUint(buf []byte, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return v
}

// readLEInt reads n little-endian bytes (n in 1..8) from buf as a
// sign-extended two's-complement integer of that width.
func readLEInt(buf []byte, n int) int64 {
	v := readLEUint(buf, n)
	shift := uint(64 - 8*n)
	return int64(v<<shift) >> shift
}

// putUvarint appends the LEB128 unsigned-varint encoding of v to dst.
// encoding/binary's Uvarint/PutUvarint already emits the minimal number of
// 7-bit groups for a given magnitude, which is the only canonicality
// requirement spec.md §4.1 places on the length/count varints (DESIGN.md
// records why no third-party alternative improves on this).
func putUvarint(dst []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(dst, tmp[:n]...)
}

// zigzagEncode maps a signed value to an unsigned one so that small
// magnitudes (positive or negative) produce small varints, in the style
// of the vendored v.io/v23/vom binary codec's binaryEncodeInt.
func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// zigzagDecode reverses zigzagEncode.
func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
