package dex

// VARINT is a base-128, big-endian-ordered variable-length unsigned
// integer: bytes are emitted most-significant-group first, and every
// byte but the last carries a set high bit as a continuation flag.
// Each continuation byte folds in a -1 bias on the remaining magnitude
// (the classic bijective-base-128 trick), which makes every uint64
// have exactly one encoding — there is no separate "redundant byte"
// case to reject, only an overlong/overflowing stream. Every amount,
// price, ratio, height, and DexId field on the wire uses this
// primitive. See DESIGN.md for why this shape was chosen over a
// byte-count-prefixed length encoding.

// AppendVarint appends the canonical VARINT encoding of v to dst.
func AppendVarint(dst []byte, v uint64) []byte {
	var tmp [10]byte
	n := 0
	for {
		b := byte(v & 0x7f)
		if n > 0 {
			b |= 0x80
		}
		tmp[n] = b
		if v <= 0x7f {
			break
		}
		v = (v >> 7) - 1
		n++
	}
	for i := n; i >= 0; i-- {
		dst = append(dst, tmp[i])
	}
	return dst
}

// ReadVarint decodes a canonical VARINT from b starting at *off,
// advancing *off past the bytes consumed.
func ReadVarint(b []byte, off *int) (uint64, error) {
	var v uint64
	start := *off
	for i := 0; ; i++ {
		if i >= 10 {
			return 0, codecErr(CodecErrNonCanonicalVarint, "varint too long")
		}
		if *off >= len(b) {
			*off = start
			return 0, codecErr(CodecErrTruncated, "unexpected EOF (varint)")
		}
		if v > (^uint64(0) >> 7) {
			return 0, codecErr(CodecErrNonCanonicalVarint, "varint overflows uint64")
		}
		c := b[*off]
		*off++
		v = (v << 7) | uint64(c&0x7f)
		if c&0x80 == 0 {
			return v, nil
		}
		if v == ^uint64(0) {
			return 0, codecErr(CodecErrNonCanonicalVarint, "varint overflows uint64")
		}
		v++
	}
}

func readU8(b []byte, off *int) (uint8, error) {
	if *off+1 > len(b) {
		return 0, codecErr(CodecErrTruncated, "unexpected EOF (u8)")
	}
	v := b[*off]
	*off++
	return v, nil
}

func appendU8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

func readBytes(b []byte, off *int, n int) ([]byte, error) {
	if n < 0 {
		return nil, codecErr(CodecErrTruncated, "negative length")
	}
	if *off+n > len(b) {
		return nil, codecErr(CodecErrTruncated, "unexpected EOF (bytes)")
	}
	v := make([]byte, n)
	copy(v, b[*off:*off+n])
	*off += n
	return v, nil
}

func readFixed32(b []byte, off *int) ([32]byte, error) {
	var out [32]byte
	raw, err := readBytes(b, off, 32)
	if err != nil {
		return out, err
	}
	copy(out[:], raw)
	return out, nil
}

// AppendString appends a VARINT length prefix followed by the raw
// bytes of s.
func AppendString(dst []byte, s string) []byte {
	dst = AppendVarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// ReadString reads a VARINT-length-prefixed string.
func ReadString(b []byte, off *int, maxLen uint64) (string, error) {
	n, err := ReadVarint(b, off)
	if err != nil {
		return "", err
	}
	if n > maxLen {
		return "", codecErr(CodecErrOversizeVec, "string length exceeds ceiling")
	}
	raw, err := readBytes(b, off, int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// AppendOption appends a one-byte presence flag, followed by encode(v)
// when present is true.
func AppendOption(dst []byte, present bool, encode func([]byte) []byte) []byte {
	if !present {
		return append(dst, 0)
	}
	dst = append(dst, 1)
	return encode(dst)
}

// ReadOption reads a one-byte presence flag and, if set, decodes the
// payload via decode.
func ReadOption(b []byte, off *int, decode func([]byte, *int) error) (bool, error) {
	flag, err := readU8(b, off)
	if err != nil {
		return false, err
	}
	switch flag {
	case 0:
		return false, nil
	case 1:
		if err := decode(b, off); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, codecErr(CodecErrUnknownEnum, "option flag must be 0 or 1")
	}
}

// AppendVecLen appends the VARINT count prefix for a Vec<T>. Callers
// append each element's encoding themselves.
func AppendVecLen(dst []byte, n int) []byte {
	return AppendVarint(dst, uint64(n))
}

// ReadVecLen reads and range-checks a Vec<T> count prefix.
func ReadVecLen(b []byte, off *int, maxLen uint64) (int, error) {
	n, err := ReadVarint(b, off)
	if err != nil {
		return 0, err
	}
	if n > maxLen {
		return 0, codecErr(CodecErrOversizeVec, "vector count exceeds ceiling")
	}
	return int(n), nil
}
