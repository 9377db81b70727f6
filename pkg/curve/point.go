package curve

import (
	"fmt"
	"math/big"
)

// Point is an affine curve point or the point at infinity. The zero value is
// the point at infinity. Points are values: accessors return copies, so a
// Point can be shared freely between goroutines.
type Point struct {
	x, y *big.Int // both nil for the point at infinity
}

// Infinity returns the group identity.
func Infinity() Point {
	return Point{}
}

// NewPoint builds a finite point from its affine coordinates. No curve
// membership check is made; see Curve.IsOnCurve.
func NewPoint(x, y *big.Int) Point {
	return Point{x: new(big.Int).Set(x), y: new(big.Int).Set(y)}
}

// IsInfinity reports whether p is the point at infinity.
func (p Point) IsInfinity() bool {
	return p.x == nil || p.y == nil
}

// X returns a copy of the x coordinate, or nil for the point at infinity.
func (p Point) X() *big.Int {
	if p.IsInfinity() {
		return nil
	}
	return new(big.Int).Set(p.x)
}

// Y returns a copy of the y coordinate, or nil for the point at infinity.
func (p Point) Y() *big.Int {
	if p.IsInfinity() {
		return nil
	}
	return new(big.Int).Set(p.y)
}

// IsOddY reports whether the y coordinate is odd. False at infinity.
func (p Point) IsOddY() bool {
	return !p.IsInfinity() && p.y.Bit(0) == 1
}

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

func (p Point) String() string {
	if p.IsInfinity() {
		return "(infinity)"
	}
	return fmt.Sprintf("(%064x, %064x)", p.x, p.y)
}
