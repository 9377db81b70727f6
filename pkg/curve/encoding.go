package curve

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrPointEncoding is returned for byte strings that are not a point
	// encoding of a supported form and length.
	ErrPointEncoding = errors.New("invalid point encoding")

	// ErrInvalidPoint is returned when the decoded coordinates are out of
	// range or do not satisfy the curve equation.
	ErrInvalidPoint = errors.New("point is not on the curve")
)

const (
	prefixInfinity     = 0x00
	prefixCompressed   = 0x02
	prefixUncompressed = 0x04
)

// MarshalUncompressed encodes p as 0x04 ‖ x ‖ y per SEC 1, section 2.3.3.
// The point at infinity encodes as the single byte 0x00.
func (c *Curve) MarshalUncompressed(p Point) []byte {
	if p.IsInfinity() {
		return []byte{prefixInfinity}
	}
	byteLen := c.ByteLen()
	out := make([]byte, 1+2*byteLen)
	out[0] = prefixUncompressed
	p.x.FillBytes(out[1 : 1+byteLen])
	p.y.FillBytes(out[1+byteLen:])
	return out
}

// MarshalRaw encodes p as x ‖ y without a prefix byte. Infinity has no raw
// form and encodes as nil.
func (c *Curve) MarshalRaw(p Point) []byte {
	if p.IsInfinity() {
		return nil
	}
	return c.MarshalUncompressed(p)[1:]
}

// MarshalCompressed encodes p as (0x02 | parity(y)) ‖ x.
func (c *Curve) MarshalCompressed(p Point) []byte {
	if p.IsInfinity() {
		return []byte{prefixInfinity}
	}
	out := make([]byte, 1+c.ByteLen())
	out[0] = prefixCompressed | byte(p.y.Bit(0))
	p.x.FillBytes(out[1:])
	return out
}

// Unmarshal decodes a point in any of the forms produced above: uncompressed
// (1+2L bytes), raw (2L bytes), compressed (1+L bytes) or the single byte 0x00
// for infinity. Finite points are checked against the curve equation.
func (c *Curve) Unmarshal(data []byte) (Point, error) {
	byteLen := c.ByteLen()

	switch {
	case len(data) == 1 && data[0] == prefixInfinity:
		return Infinity(), nil

	case len(data) == 1+2*byteLen:
		if data[0] != prefixUncompressed {
			return Point{}, fmt.Errorf("%w: unexpected prefix 0x%02x", ErrPointEncoding, data[0])
		}
		return c.checkedPoint(data[1:1+byteLen], data[1+byteLen:])

	case len(data) == 2*byteLen:
		return c.checkedPoint(data[:byteLen], data[byteLen:])

	case len(data) == 1+byteLen:
		if data[0]&^1 != prefixCompressed {
			return Point{}, fmt.Errorf("%w: unexpected prefix 0x%02x", ErrPointEncoding, data[0])
		}
		x := new(big.Int).SetBytes(data[1:])
		p, ok := c.LiftX(x, data[0]&1 == 1)
		if !ok {
			return Point{}, ErrInvalidPoint
		}
		return p, nil

	default:
		return Point{}, fmt.Errorf("%w: unexpected length %d", ErrPointEncoding, len(data))
	}
}

func (c *Curve) checkedPoint(xb, yb []byte) (Point, error) {
	p := Point{x: new(big.Int).SetBytes(xb), y: new(big.Int).SetBytes(yb)}
	if !c.IsOnCurve(p) {
		return Point{}, ErrInvalidPoint
	}
	return p, nil
}
