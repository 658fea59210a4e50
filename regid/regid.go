// Package regid implements the account-identifier canonical form the DEX
// subsystem treats as supplied by an external identity library: a
// (block_height, index_in_block) pair, written "height-index".
package regid

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// RegId identifies an account by the coordinates of the transaction that
// registered it. The zero value is the empty sentinel.
type RegId struct {
	Height uint32
	Index  uint16
}

// Empty is the sentinel RegId used for unassigned accounts.
var Empty = RegId{}

func (r RegId) IsEmpty() bool {
	return r.Height == 0 && r.Index == 0
}

func (r RegId) String() string {
	if r.IsEmpty() {
		return ""
	}
	return fmt.Sprintf("%d-%d", r.Height, r.Index)
}

// Parse decodes the canonical "height-index" string form.
func Parse(s string) (RegId, error) {
	if s == "" {
		return Empty, nil
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Empty, fmt.Errorf("regid: malformed %q", s)
	}
	h, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Empty, fmt.Errorf("regid: bad height in %q: %w", s, err)
	}
	i, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Empty, fmt.Errorf("regid: bad index in %q: %w", s, err)
	}
	return RegId{Height: uint32(h), Index: uint16(i)}, nil
}

// EncodedLen is the fixed wire size of a RegId: u32 height, u16 index.
const EncodedLen = 6

// Encode appends the canonical 6-byte little-endian form to dst.
func Encode(dst []byte, r RegId) []byte {
	var buf [EncodedLen]byte
	binary.LittleEndian.PutUint32(buf[0:4], r.Height)
	binary.LittleEndian.PutUint16(buf[4:6], r.Index)
	return append(dst, buf[:]...)
}

// Decode reads the fixed 6-byte form starting at b[0].
func Decode(b []byte) (RegId, int, error) {
	if len(b) < EncodedLen {
		return Empty, 0, fmt.Errorf("regid: truncated (need %d bytes, have %d)", EncodedLen, len(b))
	}
	return RegId{
		Height: binary.LittleEndian.Uint32(b[0:4]),
		Index:  binary.LittleEndian.Uint16(b[4:6]),
	}, EncodedLen, nil
}
