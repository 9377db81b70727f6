package curve

import "math/big"

// jacobianPoint is (X, Y, Z) with x = X/Z², y = Y/Z³. Z = 0 is infinity.
type jacobianPoint struct {
	x, y, z *big.Int
}

func jacobianInfinity() jacobianPoint {
	return jacobianPoint{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
}

func (p jacobianPoint) isInfinity() bool {
	return p.z.Sign() == 0
}

func (c *Curve) toJacobian(p Point) jacobianPoint {
	if p.IsInfinity() {
		return jacobianInfinity()
	}
	return jacobianPoint{x: new(big.Int).Set(p.x), y: new(big.Int).Set(p.y), z: big.NewInt(1)}
}

// toAffine reverses the Jacobian transform.
func (c *Curve) toAffine(p jacobianPoint) Point {
	if p.isInfinity() {
		return Infinity()
	}
	zInv, err := c.fp.Inv(p.z)
	if err != nil {
		return Infinity()
	}
	zInv2 := c.fp.Square(zInv)
	x := c.fp.Mul(p.x, zInv2)
	y := c.fp.Mul(p.y, c.fp.Mul(zInv2, zInv))
	return Point{x: x, y: y}
}

// addJacobian implements add-2007-bl:
// https://hyperelliptic.org/EFD/g1p/auto-shortw-jacobian.html#addition-add-2007-bl
func (c *Curve) addJacobian(p, q jacobianPoint) jacobianPoint {
	if p.isInfinity() {
		return q
	}
	if q.isInfinity() {
		return p
	}
	f := c.fp

	z1z1 := f.Square(p.z)
	z2z2 := f.Square(q.z)
	u1 := f.Mul(p.x, z2z2)
	u2 := f.Mul(q.x, z1z1)
	s1 := f.Mul(f.Mul(p.y, q.z), z2z2)
	s2 := f.Mul(f.Mul(q.y, p.z), z1z1)

	h := f.Sub(u2, u1)
	rr := f.Sub(s2, s1)
	if h.Sign() == 0 {
		if rr.Sign() == 0 {
			return c.doubleJacobian(p)
		}
		// Same x, opposite y: p = -q.
		return jacobianInfinity()
	}

	i := f.Square(f.Add(h, h))
	j := f.Mul(h, i)
	r := f.Add(rr, rr)
	v := f.Mul(u1, i)

	// X3 = r² - J - 2V
	x3 := f.Sub(f.Sub(f.Square(r), j), f.Add(v, v))
	// Y3 = r(V - X3) - 2·S1·J
	s1j := f.Mul(s1, j)
	y3 := f.Sub(f.Mul(r, f.Sub(v, x3)), f.Add(s1j, s1j))
	// Z3 = ((Z1 + Z2)² - Z1Z1 - Z2Z2)·H
	z3 := f.Mul(f.Sub(f.Sub(f.Square(f.Add(p.z, q.z)), z1z1), z2z2), h)

	return jacobianPoint{x: x3, y: y3, z: z3}
}

// doubleJacobian implements dbl-2007-bl, which handles any a:
// https://hyperelliptic.org/EFD/g1p/auto-shortw-jacobian.html#doubling-dbl-2007-bl
func (c *Curve) doubleJacobian(p jacobianPoint) jacobianPoint {
	if p.isInfinity() || p.y.Sign() == 0 {
		return jacobianInfinity()
	}
	f := c.fp

	xx := f.Square(p.x)
	yy := f.Square(p.y)
	yyyy := f.Square(yy)
	zz := f.Square(p.z)

	// S = 2((X + YY)² - XX - YYYY)
	s := f.Sub(f.Sub(f.Square(f.Add(p.x, yy)), xx), yyyy)
	s = f.Add(s, s)

	// M = 3XX + a·ZZ²
	m := f.Add(f.Add(xx, xx), xx)
	if c.a.Sign() != 0 {
		m = f.Add(m, f.Mul(c.a, f.Square(zz)))
	}

	// X3 = M² - 2S
	x3 := f.Sub(f.Square(m), f.Add(s, s))
	// Y3 = M(S - X3) - 8·YYYY
	y3 := f.Sub(f.Mul(m, f.Sub(s, x3)), f.Mul(big.NewInt(8), yyyy))
	// Z3 = (Y + Z)² - YY - ZZ
	z3 := f.Sub(f.Sub(f.Square(f.Add(p.y, p.z)), yy), zz)

	return jacobianPoint{x: x3, y: y3, z: z3}
}

// scalarMultJacobian is left-to-right double-and-add over the bits of k mod N.
func (c *Curve) scalarMultJacobian(k *big.Int, p Point) jacobianPoint {
	acc := jacobianInfinity()
	if p.IsInfinity() {
		return acc
	}
	e := c.fn.Reduce(k)
	if e.Sign() == 0 {
		return acc
	}

	base := c.toJacobian(p)
	for i := e.BitLen() - 1; i >= 0; i-- {
		acc = c.doubleJacobian(acc)
		if e.Bit(i) == 1 {
			acc = c.addJacobian(acc, base)
		}
	}
	return acc
}
