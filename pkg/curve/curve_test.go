package curve

import (
	"crypto/elliptic"
	"math/big"
	"testing"

	dsecp "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalarBytes(k *big.Int) []byte {
	return k.FillBytes(make([]byte, 32))
}

func TestSecp256k1Params(t *testing.T) {
	c := Secp256k1()

	assert.Equal(t, "secp256k1", c.Name())
	assert.Equal(t, 32, c.ByteLen())
	assert.True(t, c.IsOnCurve(c.Generator()))
	assert.Equal(t, 0, c.N().Cmp(dsecp.S256().N))
	assert.Equal(t, 0, c.P().Cmp(dsecp.S256().P))

	half := new(big.Int).Rsh(c.N(), 1)
	assert.Equal(t, 0, half.Cmp(c.HalfOrder()))
}

func TestKnownMultiples(t *testing.T) {
	c := Secp256k1()

	two := c.ScalarBaseMult(big.NewInt(2))
	assert.Equal(t, 0, two.X().Cmp(mustHex("C6047F9441ED7D6D3045406E95C07CD85C778E4B8CEF3CA7ABAC09B95C709EE5")))
	assert.Equal(t, 0, two.Y().Cmp(mustHex("1AE168FEA63DC339A3C58419466CEAEEF7F632653266D0E1236431A950CFE52A")))

	three := c.ScalarBaseMult(big.NewInt(3))
	assert.Equal(t, 0, three.X().Cmp(mustHex("F9308A019258C31049344F85F89D5229B531C845836F99B08601F113BCE036F9")))
	assert.Equal(t, 0, three.Y().Cmp(mustHex("388F7B0F632DE8140FE337E62A37F3566500A99934C2231B6CB9FD7584B8E672")))

	assert.True(t, c.Double(c.Generator()).Equal(two))
	assert.True(t, c.Add(c.Generator(), two).Equal(three))
}

func TestScalarBaseMultMatchesReference(t *testing.T) {
	c := Secp256k1()
	scalars := []*big.Int{
		big.NewInt(1),
		big.NewInt(7),
		mustHex("eec2b599b65b98f05093057ebcd04695f203ef42a6ae5db65f52e227d4dc8db5"),
		mustHex("eec2b599b65b98f05093057ebcd04695f203ef42a6ae5db65f52e20000000000"),
		new(big.Int).Sub(c.N(), big.NewInt(1)),
		new(big.Int).Rsh(c.N(), 1),
	}

	for _, k := range scalars {
		p := c.ScalarBaseMult(k)
		require.True(t, c.IsOnCurve(p), "k=%x", k)

		ref := dsecp.PrivKeyFromBytes(scalarBytes(k)).PubKey()
		assert.Equal(t, ref.SerializeUncompressed(), c.MarshalUncompressed(p), "k=%x", k)
		assert.Equal(t, ref.SerializeCompressed(), c.MarshalCompressed(p), "k=%x", k)
	}
}

func TestScalarMultEdgeCases(t *testing.T) {
	c := Secp256k1()
	g := c.Generator()
	n := c.N()

	assert.True(t, c.ScalarBaseMult(big.NewInt(0)).IsInfinity())
	assert.True(t, c.ScalarBaseMult(n).IsInfinity())
	assert.True(t, c.ScalarBaseMult(new(big.Int).Add(n, big.NewInt(1))).Equal(g))
	assert.True(t, c.ScalarMult(big.NewInt(5), Infinity()).IsInfinity())

	// (n-1)G = -G
	minusG := c.ScalarBaseMult(new(big.Int).Sub(n, big.NewInt(1)))
	assert.True(t, minusG.Equal(c.Neg(g)))
	assert.True(t, c.ScalarBaseMult(big.NewInt(-1)).Equal(minusG))

	// k ≥ n reduces first.
	k := big.NewInt(123456789)
	assert.True(t, c.ScalarBaseMult(k).Equal(c.ScalarBaseMult(new(big.Int).Add(k, n))))
}

func TestAddIdentities(t *testing.T) {
	c := Secp256k1()
	p := c.ScalarBaseMult(big.NewInt(987654321))

	assert.True(t, c.Add(p, Infinity()).Equal(p))
	assert.True(t, c.Add(Infinity(), p).Equal(p))
	assert.True(t, c.Add(Infinity(), Infinity()).IsInfinity())
	assert.True(t, c.Add(p, c.Neg(p)).IsInfinity())
	assert.True(t, c.Double(Infinity()).IsInfinity())
	assert.True(t, c.Neg(Infinity()).IsInfinity())
	assert.True(t, c.Add(p, p).Equal(c.Double(p)))
}

func TestScalarMultDistributes(t *testing.T) {
	c := Secp256k1()
	a := mustHex("1f2e3d4c5b6a79881f2e3d4c5b6a79881f2e3d4c5b6a79881f2e3d4c5b6a7988")
	b := mustHex("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	sum := c.Add(c.ScalarBaseMult(a), c.ScalarBaseMult(b))
	assert.True(t, sum.Equal(c.ScalarBaseMult(new(big.Int).Add(a, b))))

	// a·(b·G) = (a·b)·G
	ab := c.ScalarMult(a, c.ScalarBaseMult(b))
	assert.True(t, ab.Equal(c.ScalarBaseMult(new(big.Int).Mul(a, b))))

	lc := c.LinearCombination(a, b, c.ScalarBaseMult(big.NewInt(3)))
	expected := c.ScalarBaseMult(new(big.Int).Add(a, new(big.Int).Mul(b, big.NewInt(3))))
	assert.True(t, lc.Equal(expected))
}

func TestIsOnCurve(t *testing.T) {
	c := Secp256k1()
	g := c.Generator()

	assert.False(t, c.IsOnCurve(Infinity()))
	assert.False(t, c.IsOnCurve(NewPoint(g.X(), new(big.Int).Add(g.Y(), big.NewInt(1)))))
	assert.False(t, c.IsOnCurve(NewPoint(new(big.Int).Add(g.X(), c.P()), g.Y())))
	assert.True(t, c.IsOnCurve(c.Neg(g)))
}

func TestLiftX(t *testing.T) {
	c := Secp256k1()
	g := c.Generator()

	p, ok := c.LiftX(g.X(), g.IsOddY())
	require.True(t, ok)
	assert.True(t, p.Equal(g))

	q, ok := c.LiftX(g.X(), !g.IsOddY())
	require.True(t, ok)
	assert.True(t, q.Equal(c.Neg(g)))

	// About half of all x have no point; every lifted one must be on the curve.
	failures := 0
	for x := int64(1); x <= 32; x++ {
		p, ok := c.LiftX(big.NewInt(x), x%2 == 0)
		if !ok {
			failures++
			continue
		}
		assert.True(t, c.IsOnCurve(p))
		assert.Equal(t, x%2 == 0, p.IsOddY())
	}
	assert.NotZero(t, failures)

	_, ok = c.LiftX(c.P(), false)
	assert.False(t, ok)
}

func TestPointAccessorsCopy(t *testing.T) {
	c := Secp256k1()
	g := c.Generator()
	x := g.X()
	x.SetInt64(0)
	assert.True(t, c.IsOnCurve(c.Generator()))
	assert.Nil(t, Infinity().X())
	assert.Nil(t, Infinity().Y())
	assert.Equal(t, "(infinity)", Infinity().String())
}

func TestEncodingRoundTrip(t *testing.T) {
	c := Secp256k1()
	p := c.ScalarBaseMult(big.NewInt(424242))

	for name, enc := range map[string][]byte{
		"uncompressed": c.MarshalUncompressed(p),
		"raw":          c.MarshalRaw(p),
		"compressed":   c.MarshalCompressed(p),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := c.Unmarshal(enc)
			require.NoError(t, err)
			assert.True(t, got.Equal(p))
		})
	}

	inf, err := c.Unmarshal(c.MarshalUncompressed(Infinity()))
	require.NoError(t, err)
	assert.True(t, inf.IsInfinity())
	assert.Nil(t, c.MarshalRaw(Infinity()))
}

func TestUnmarshalRejects(t *testing.T) {
	c := Secp256k1()
	good := c.MarshalUncompressed(c.Generator())

	_, err := c.Unmarshal(good[:10])
	assert.ErrorIs(t, err, ErrPointEncoding)

	bad := append([]byte(nil), good...)
	bad[0] = 0x05
	_, err = c.Unmarshal(bad)
	assert.ErrorIs(t, err, ErrPointEncoding)

	offCurve := append([]byte(nil), good...)
	offCurve[64] ^= 0x01
	_, err = c.Unmarshal(offCurve)
	assert.ErrorIs(t, err, ErrInvalidPoint)

	compressed := c.MarshalCompressed(c.Generator())
	compressed[0] = 0x07
	_, err = c.Unmarshal(compressed)
	assert.ErrorIs(t, err, ErrPointEncoding)

	// x ≥ p
	noPoint := make([]byte, 33)
	for i := range noPoint {
		noPoint[i] = 0xff
	}
	noPoint[0] = 0x02
	_, err = c.Unmarshal(noPoint)
	assert.ErrorIs(t, err, ErrInvalidPoint)
}

// P-256 has a = -3, which exercises the general doubling formula.
func TestGenericCurveAgainstStdlibP256(t *testing.T) {
	ref := elliptic.P256()
	params := ref.Params()
	c := New(Params{
		Name:    "P-256",
		P:       params.P,
		N:       params.N,
		A:       big.NewInt(-3),
		B:       params.B,
		Gx:      params.Gx,
		Gy:      params.Gy,
		BitSize: params.BitSize,
	})
	require.True(t, c.IsOnCurve(c.Generator()))

	for _, k := range []*big.Int{big.NewInt(2), big.NewInt(3), big.NewInt(1 << 40), mustHex("c0ffee00c0ffee00c0ffee00c0ffee00")} {
		x, y := ref.ScalarBaseMult(k.Bytes())
		p := c.ScalarBaseMult(k)
		assert.Equal(t, 0, x.Cmp(p.X()), "k=%s", k)
		assert.Equal(t, 0, y.Cmp(p.Y()), "k=%s", k)
	}
}
