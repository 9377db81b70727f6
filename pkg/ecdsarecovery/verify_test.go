package ecdsarecovery

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mahdiidarabi/ecdsa-recovery/pkg/curve"
)

func TestVerifyConsistency(t *testing.T) {
	for _, d := range testPrivateKeys(t) {
		pub := mustPublicKey(t, d)
		h := sha("consistency")
		sig := mustSign(t, d, h)

		assert.True(t, Verify(pub, h, sig), "d=%x", d)
		assert.True(t, VerifyLowS(pub, h, sig), "d=%x", d)
		assert.True(t, Verify(pub, h, sig.WithoutRecoveryID()))
		assert.False(t, Verify(pub, sha("consistency!"), sig), "d=%x", d)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	h := sha("abc")
	sig := mustSign(t, mustPrivateKey(t, otherPrivateKeyHex), h)
	assert.False(t, Verify(mustPublicKey(t, mustPrivateKey(t, knownPrivateKeyHex)), h, sig))
}

func TestVerifyTamperedS(t *testing.T) {
	d := big.NewInt(1234567)
	pub := mustPublicKey(t, d)
	h := sha("tamper")
	sig := mustSign(t, d, h)

	for bit := 0; bit < 256; bit++ {
		s := new(big.Int).Set(sig.S)
		s.SetBit(s, bit, s.Bit(bit)^1)
		tampered := &Signature{R: sig.R, S: s, V: sig.V}
		assert.False(t, Verify(pub, h, tampered), "bit %d", bit)
	}
}

func TestVerifyHighS(t *testing.T) {
	d := big.NewInt(8675309)
	pub := mustPublicKey(t, d)
	h := sha("malleable")
	sig := mustSign(t, d, h)

	high := &Signature{R: sig.R, S: new(big.Int).Sub(curve.Secp256k1().N(), sig.S), V: sig.V ^ 1}
	assert.True(t, Verify(pub, h, high))
	assert.False(t, VerifyLowS(pub, h, high))
	assert.False(t, VerifyLowS(pub, h, nil))
}

func TestVerifyFailsClosed(t *testing.T) {
	d := big.NewInt(99)
	pub := mustPublicKey(t, d)
	h := sha("closed")
	sig := mustSign(t, d, h)
	n := curve.Secp256k1().N()

	assert.False(t, Verify(nil, h, sig))
	assert.False(t, Verify(pub, h, nil))
	assert.False(t, Verify(pub, h[:31], sig))
	assert.False(t, Verify(pub, nil, sig))
	assert.False(t, Verify(pub, h, &Signature{R: big.NewInt(0), S: sig.S}))
	assert.False(t, Verify(pub, h, &Signature{R: sig.R, S: big.NewInt(0)}))
	assert.False(t, Verify(pub, h, &Signature{R: n, S: sig.S}))
	assert.False(t, Verify(pub, h, &Signature{R: sig.R, S: new(big.Int).Add(sig.S, n)}))
	assert.False(t, Verify(pub, h, &Signature{R: nil, S: sig.S}))
	assert.False(t, Verify(&PublicKey{}, h, sig))
}
