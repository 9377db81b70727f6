// Package field implements modular arithmetic over a prime modulus.
//
// The same type serves both the coordinate field of the curve (modulus p) and
// the scalar field of the group (modulus n). All values are *big.Int and every
// result is fully reduced into [0, modulus-1].
package field

import (
	"errors"
	"math/big"
)

// ErrDivisionByZero is returned when inverting an element congruent to zero.
var ErrDivisionByZero = errors.New("division by zero")

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// Field represents the prime field F_m for a modulus m.
type Field struct {
	m *big.Int // the prime modulus

	// invExp = m-2, used for inversion by Fermat's little theorem.
	invExp *big.Int

	// sqrtExp = (m+1)/4, set only when m ≡ 3 (mod 4).
	sqrtExp *big.Int
}

// New creates a field for the given prime modulus. The modulus is copied.
func New(modulus *big.Int) *Field {
	m := new(big.Int).Set(modulus)
	f := &Field{
		m:      m,
		invExp: new(big.Int).Sub(m, two),
	}
	if new(big.Int).Mod(m, four).Cmp(three) == 0 {
		f.sqrtExp = new(big.Int).Add(m, one)
		f.sqrtExp.Rsh(f.sqrtExp, 2)
	}
	return f
}

// Modulus returns a copy of the field modulus.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.m)
}

// Contains reports whether a is already a canonical element, 0 <= a < m.
func (f *Field) Contains(a *big.Int) bool {
	return a != nil && a.Sign() >= 0 && a.Cmp(f.m) < 0
}

// Reduce returns a mod m in [0, m-1], including for negative a.
func (f *Field) Reduce(a *big.Int) *big.Int {
	// big.Int.Mod is Euclidean, so the result is never negative.
	return new(big.Int).Mod(a, f.m)
}

// Add returns a + b mod m.
func (f *Field) Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, f.m)
}

// Sub returns a - b mod m.
func (f *Field) Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, f.m)
}

// Mul returns a * b mod m.
func (f *Field) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, f.m)
}

// Square returns a² mod m.
func (f *Field) Square(a *big.Int) *big.Int {
	return f.Mul(a, a)
}

// Neg returns -a mod m.
func (f *Field) Neg(a *big.Int) *big.Int {
	r := new(big.Int).Neg(a)
	return r.Mod(r, f.m)
}

// Exp returns a^e mod m. Negative exponents are not supported.
func (f *Field) Exp(a, e *big.Int) *big.Int {
	return new(big.Int).Exp(f.Reduce(a), e, f.m)
}

// Inv returns the multiplicative inverse a⁻¹ mod m, computed as a^(m-2).
// It fails with ErrDivisionByZero when a ≡ 0 (mod m).
func (f *Field) Inv(a *big.Int) (*big.Int, error) {
	r := f.Reduce(a)
	if r.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	return r.Exp(r, f.invExp, f.m), nil
}

// Div returns a * b⁻¹ mod m.
func (f *Field) Div(a, b *big.Int) (*big.Int, error) {
	bInv, err := f.Inv(b)
	if err != nil {
		return nil, err
	}
	return f.Mul(a, bInv), nil
}

// Sqrt returns a square root of a mod m and true, or nil and false when a is
// not a quadratic residue. Which of the two roots is returned is unspecified;
// callers select by parity.
func (f *Field) Sqrt(a *big.Int) (*big.Int, bool) {
	r := f.Reduce(a)
	if f.sqrtExp == nil {
		root := new(big.Int).ModSqrt(r, f.m)
		return root, root != nil
	}

	root := new(big.Int).Exp(r, f.sqrtExp, f.m)
	if f.Square(root).Cmp(r) != 0 {
		return nil, false
	}
	return root, true
}

// IsZero reports whether a ≡ 0 (mod m).
func (f *Field) IsZero(a *big.Int) bool {
	return f.Reduce(a).Sign() == 0
}

// Equal reports whether a ≡ b (mod m).
func (f *Field) Equal(a, b *big.Int) bool {
	return f.Reduce(a).Cmp(f.Reduce(b)) == 0
}
