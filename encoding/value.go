package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"

	"github.com/graphcore-db/graphcore/core"
)

// MaxStringBytes is the encoder-enforced STRING length limit (§3): one
// length-prefix byte caps it at 255.
const MaxStringBytes = 255

// CanonicalZone is the single timezone DATETIME values are normalised to
// before encoding, so that byte order agrees with chronological order
// regardless of the zone a caller supplied the value in.
var CanonicalZone = time.UTC

// ValueCodec encodes/decodes/orders one ValueKind's Go representation to
// and from its canonical, sortable byte form.
type ValueCodec interface {
	Kind() core.ValueKind
	// Encode coerces v (a loosely-typed Go value from the boundary) into
	// canonical sortable bytes.
	Encode(v interface{}) ([]byte, error)
	// Decode is the left inverse of Encode: decode(encode(v)) == v.
	Decode(b []byte) (interface{}, error)
	// Compare lexicographically compares two encoded values; for LONG and
	// DOUBLE this must agree with numeric order (§8 encoding round-trip).
	Compare(a, b []byte) int
}

// Codecs is the registry consulted by the rest of the core: one entry per
// ValueKind.
var Codecs = map[core.ValueKind]ValueCodec{
	core.ValueKindBool:     boolCodec{},
	core.ValueKindLong:     longCodec{},
	core.ValueKindDouble:   doubleCodec{},
	core.ValueKindString:   stringCodec{},
	core.ValueKindDateTime: dateTimeCodec{},
}

type boolCodec struct{}

func (boolCodec) Kind() core.ValueKind { return core.ValueKindBool }

func (boolCodec) Encode(v interface{}) ([]byte, error) {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, err
	}
	if b {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (boolCodec) Decode(b []byte) (interface{}, error) {
	return b[0] != 0, nil
}

func (boolCodec) Compare(a, b []byte) int { return bytes.Compare(a, b) }

type longCodec struct{}

func (longCodec) Kind() core.ValueKind { return core.ValueKindLong }

func (longCodec) Encode(v interface{}) ([]byte, error) {
	n, err := cast.ToInt64E(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 8)
	// Flip the sign bit so two's-complement negatives sort before
	// positives in unsigned lexicographic byte order.
	binary.BigEndian.PutUint64(buf, uint64(n)^(1<<63))
	return buf, nil
}

func (longCodec) Decode(b []byte) (interface{}, error) {
	u := binary.BigEndian.Uint64(b)
	return int64(u ^ (1 << 63)), nil
}

func (longCodec) Compare(a, b []byte) int { return bytes.Compare(a, b) }

type doubleCodec struct{}

func (doubleCodec) Kind() core.ValueKind { return core.ValueKindDouble }

func (doubleCodec) Encode(v interface{}) ([]byte, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, err
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		// Negative: flip every bit so larger magnitude sorts first among
		// negatives but still before all non-negatives.
		bits = ^bits
	} else {
		// Non-negative: flip only the sign bit.
		bits |= 1 << 63
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf, nil
}

func (doubleCodec) Decode(b []byte) (interface{}, error) {
	bits := binary.BigEndian.Uint64(b)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

func (doubleCodec) Compare(a, b []byte) int { return bytes.Compare(a, b) }

type stringCodec struct{}

func (stringCodec) Kind() core.ValueKind { return core.ValueKindString }

func (stringCodec) Encode(v interface{}) ([]byte, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, err
	}
	if len(s) > MaxStringBytes {
		return nil, core.ErrValueTooLong.New(len(s), MaxStringBytes, core.ValueKindString)
	}
	buf := make([]byte, 1+len(s))
	buf[0] = byte(len(s))
	copy(buf[1:], s)
	return buf, nil
}

func (stringCodec) Decode(b []byte) (interface{}, error) {
	n := int(b[0])
	return string(b[1 : 1+n]), nil
}

// Compare orders by content, not by the length prefix, so that e.g. "ab"
// < "b" holds even though len-prefixed bytes would otherwise compare the
// length byte first and risk disagreeing with string order for strings
// of different lengths sharing a prefix relationship.
func (stringCodec) Compare(a, b []byte) int {
	na, nb := int(a[0]), int(b[0])
	return bytes.Compare(a[1:1+na], b[1:1+nb])
}

type dateTimeCodec struct{}

func (dateTimeCodec) Kind() core.ValueKind { return core.ValueKindDateTime }

func (dateTimeCodec) Encode(v interface{}) ([]byte, error) {
	t, err := cast.ToTimeE(v)
	if err != nil {
		return nil, err
	}
	millis := t.In(CanonicalZone).UnixMilli()
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(millis)^(1<<63))
	return buf, nil
}

func (dateTimeCodec) Decode(b []byte) (interface{}, error) {
	u := binary.BigEndian.Uint64(b)
	millis := int64(u ^ (1 << 63))
	return time.UnixMilli(millis).In(CanonicalZone), nil
}

func (dateTimeCodec) Compare(a, b []byte) int { return bytes.Compare(a, b) }

// Encode is a convenience wrapper that looks up the codec for kind.
func Encode(kind core.ValueKind, v interface{}) ([]byte, error) {
	c, ok := Codecs[kind]
	if !ok {
		return nil, core.ErrInternal.New(fmt.Sprintf("no codec registered for kind %s", kind))
	}
	return c.Encode(v)
}

// Decode is a convenience wrapper that looks up the codec for kind.
func Decode(kind core.ValueKind, b []byte) (interface{}, error) {
	c, ok := Codecs[kind]
	if !ok {
		return nil, core.ErrInternal.New(fmt.Sprintf("no codec registered for kind %s", kind))
	}
	return c.Decode(b)
}
