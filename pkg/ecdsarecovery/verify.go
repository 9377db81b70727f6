package ecdsarecovery

import "github.com/mahdiidarabi/ecdsa-recovery/pkg/curve"

// Verify reports whether sig is a valid signature of digest by publicKey. It
// fails closed: any nil, out-of-range or wrongly sized input yields false.
// Both low and high s are accepted; see VerifyLowS.
func Verify(publicKey *PublicKey, digest []byte, sig *Signature) bool {
	if publicKey == nil || checkDigest(digest) != nil || checkSignature(sig) != nil {
		return false
	}

	c := curve.Secp256k1()
	if !c.IsOnCurve(publicKey.point) {
		return false
	}
	fn := c.ScalarField()

	w, err := fn.Inv(sig.S)
	if err != nil {
		return false
	}
	u1 := fn.Mul(hashToInt(digest), w)
	u2 := fn.Mul(sig.R, w)

	// P = u1·G + u2·Q
	p := c.LinearCombination(u1, u2, publicKey.point)
	if p.IsInfinity() {
		return false
	}
	return fn.Reduce(p.X()).Cmp(sig.R) == 0
}

// VerifyLowS is Verify that additionally rejects s > n/2, the form every
// signature from Sign has. Use it where signature malleability matters.
func VerifyLowS(publicKey *PublicKey, digest []byte, sig *Signature) bool {
	return sig != nil && sig.IsLowS() && Verify(publicKey, digest, sig)
}
