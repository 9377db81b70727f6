// Package curve implements short Weierstrass elliptic-curve group arithmetic
// y² = x³ + ax + b over a prime field, with the secp256k1 parameters built in.
//
// Points are exposed in affine form and are immutable values. Internally, add,
// double and scalar multiplication operate on Jacobian coordinates (x, y, z)
// where x = X/Z² and y = Y/Z³, so a single inversion is paid per result rather
// than one per group operation.
//
// Nothing in this package is constant time.
package curve

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdsa-recovery/pkg/field"
)

// Params holds the domain parameters of a curve y² = x³ + ax + b.
type Params struct {
	Name    string
	P       *big.Int // the order of the underlying field
	N       *big.Int // the order of the base point
	A       *big.Int // the linear coefficient of the curve equation
	B       *big.Int // the constant of the curve equation
	Gx, Gy  *big.Int // (x,y) of the base point
	BitSize int      // the size of the underlying field
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("curve: invalid hex constant " + s)
	}
	return v
}

// secp256k1 is process-wide and read-only once the package is initialised.
var secp256k1 = New(Params{
	Name:    "secp256k1",
	P:       mustHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F"),
	N:       mustHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141"),
	A:       big.NewInt(0),
	B:       big.NewInt(7),
	Gx:      mustHex("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798"),
	Gy:      mustHex("483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8"),
	BitSize: 256,
})

// Secp256k1 returns the secp256k1 curve.
func Secp256k1() *Curve {
	return secp256k1
}

// Curve performs group operations for one set of domain parameters.
type Curve struct {
	params Params
	fp     *field.Field // coordinate field, modulus P
	fn     *field.Field // scalar field, modulus N
	a      *big.Int     // A reduced mod P
	b      *big.Int     // B reduced mod P
	halfN  *big.Int
	g      Point
}

// New builds a curve from its domain parameters. The parameters are copied.
func New(params Params) *Curve {
	c := &Curve{
		params: Params{
			Name:    params.Name,
			P:       new(big.Int).Set(params.P),
			N:       new(big.Int).Set(params.N),
			A:       new(big.Int).Set(params.A),
			B:       new(big.Int).Set(params.B),
			Gx:      new(big.Int).Set(params.Gx),
			Gy:      new(big.Int).Set(params.Gy),
			BitSize: params.BitSize,
		},
		fp: field.New(params.P),
		fn: field.New(params.N),
	}
	c.a = c.fp.Reduce(params.A)
	c.b = c.fp.Reduce(params.B)
	c.halfN = new(big.Int).Rsh(params.N, 1)
	c.g = NewPoint(params.Gx, params.Gy)
	return c
}

// Params returns a copy of the domain parameters.
func (c *Curve) Params() Params {
	p := c.params
	p.P = new(big.Int).Set(p.P)
	p.N = new(big.Int).Set(p.N)
	p.A = new(big.Int).Set(p.A)
	p.B = new(big.Int).Set(p.B)
	p.Gx = new(big.Int).Set(p.Gx)
	p.Gy = new(big.Int).Set(p.Gy)
	return p
}

// Name returns the canonical curve name.
func (c *Curve) Name() string { return c.params.Name }

// P returns a copy of the field prime.
func (c *Curve) P() *big.Int { return new(big.Int).Set(c.params.P) }

// N returns a copy of the group order.
func (c *Curve) N() *big.Int { return new(big.Int).Set(c.params.N) }

// HalfOrder returns floor(N/2), the bound used for low-s normalization.
func (c *Curve) HalfOrder() *big.Int { return new(big.Int).Set(c.halfN) }

// ByteLen is the length of one encoded coordinate or scalar.
func (c *Curve) ByteLen() int { return (c.params.BitSize + 7) / 8 }

// CoordinateField returns the field of point coordinates (modulus P).
func (c *Curve) CoordinateField() *field.Field { return c.fp }

// ScalarField returns the field of scalars (modulus N).
func (c *Curve) ScalarField() *field.Field { return c.fn }

// Generator returns the base point G.
func (c *Curve) Generator() Point { return c.g }

// Polynomial returns x³ + ax + b mod P.
func (c *Curve) Polynomial(x *big.Int) *big.Int {
	x3 := c.fp.Mul(c.fp.Square(x), x)
	ax := c.fp.Mul(c.a, x)
	return c.fp.Add(c.fp.Add(x3, ax), c.b)
}

// IsOnCurve reports whether p is a finite point whose coordinates are in
// [0, P-1] and satisfy the curve equation. The point at infinity is a group
// element but has no coordinates, so it reports false.
func (c *Curve) IsOnCurve(p Point) bool {
	if p.IsInfinity() {
		return false
	}
	if !c.fp.Contains(p.x) || !c.fp.Contains(p.y) {
		return false
	}
	return c.fp.Square(p.y).Cmp(c.Polynomial(p.x)) == 0
}

// IsInfinity reports whether p is the point at infinity.
func (c *Curve) IsInfinity(p Point) bool {
	return p.IsInfinity()
}

// Equal reports whether p and q are the same group element.
func (c *Curve) Equal(p, q Point) bool {
	return p.Equal(q)
}

// Neg returns -p.
func (c *Curve) Neg(p Point) Point {
	if p.IsInfinity() {
		return p
	}
	return Point{x: new(big.Int).Set(p.x), y: c.fp.Neg(p.y)}
}

// Add returns p + q. Inputs are assumed to be on the curve.
func (c *Curve) Add(p, q Point) Point {
	return c.toAffine(c.addJacobian(c.toJacobian(p), c.toJacobian(q)))
}

// Double returns 2p.
func (c *Curve) Double(p Point) Point {
	return c.toAffine(c.doubleJacobian(c.toJacobian(p)))
}

// ScalarMult returns k·p. The scalar is reduced modulo N first, so k = 0,
// k = N and negative k are all handled; k ≡ 0 yields the point at infinity.
func (c *Curve) ScalarMult(k *big.Int, p Point) Point {
	return c.toAffine(c.scalarMultJacobian(k, p))
}

// ScalarBaseMult returns k·G.
func (c *Curve) ScalarBaseMult(k *big.Int) Point {
	return c.ScalarMult(k, c.g)
}

// LinearCombination returns u1·G + u2·p.
func (c *Curve) LinearCombination(u1, u2 *big.Int, p Point) Point {
	a := c.scalarMultJacobian(u1, c.g)
	b := c.scalarMultJacobian(u2, p)
	return c.toAffine(c.addJacobian(a, b))
}

// LiftX returns the point with the given x coordinate whose y coordinate has
// the requested parity. It reports false when x is not a field element or no
// point with that x exists.
func (c *Curve) LiftX(x *big.Int, odd bool) (Point, bool) {
	if !c.fp.Contains(x) {
		return Point{}, false
	}
	y, ok := c.fp.Sqrt(c.Polynomial(x))
	if !ok {
		return Point{}, false
	}
	if (y.Bit(0) == 1) != odd {
		y = c.fp.Neg(y)
		// y = 0 has no partner of the other parity.
		if (y.Bit(0) == 1) != odd {
			return Point{}, false
		}
	}
	return Point{x: new(big.Int).Set(x), y: y}, true
}

func (c *Curve) String() string {
	return fmt.Sprintf("curve(%s)", c.params.Name)
}
