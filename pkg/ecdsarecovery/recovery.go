package ecdsarecovery

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdsa-recovery/pkg/curve"
)

// RecoverPublicKey reconstructs the signer's public key from a signature and
// the signed digest.
//
// With a recovery id the single candidate it names is computed and must
// verify, otherwise ErrInvalidSignature is returned. Without one (legacy
// r ‖ s or DER input) all candidates are enumerated: the unique verifying key
// is returned, ErrInvalidSignature when none verifies and ErrAmbiguousRecovery
// when several do. Because R and -R both reproduce r, the latter is the normal
// outcome for a signature that lost its id; use RecoverMatching or
// RecoverCandidates for those.
func RecoverPublicKey(sig *Signature, digest []byte) (*PublicKey, error) {
	if err := checkRecoveryInput(sig, digest); err != nil {
		return nil, err
	}

	if sig.V != RecoveryUnknown {
		if !sig.V.Valid() {
			return nil, fmt.Errorf("%w: recovery id %d", ErrMalformedInput, uint8(sig.V))
		}
		pub, ok := recoverWithID(sig, digest, sig.V)
		if !ok {
			return nil, fmt.Errorf("%w: no valid key for recovery id %s", ErrInvalidSignature, sig.V)
		}
		return pub, nil
	}

	candidates := recoverAll(sig, digest)
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: no candidate key verifies", ErrInvalidSignature)
	case 1:
		return candidates[0].PublicKey, nil
	default:
		return nil, fmt.Errorf("%w: %d candidate keys verify", ErrAmbiguousRecovery, len(candidates))
	}
}

// RecoverCandidates returns every key, with its recovery id, for which sig is
// a valid signature of digest. Any recovery id carried by sig is ignored. The
// result is ordered by recovery id and is empty only for forged signatures.
func RecoverCandidates(sig *Signature, digest []byte) ([]Candidate, error) {
	if err := checkRecoveryInput(sig, digest); err != nil {
		return nil, err
	}
	return recoverAll(sig, digest), nil
}

// RecoverMatching returns the candidate equal to expected, for confirming a
// signature that carries no recovery id against a key obtained elsewhere.
func RecoverMatching(sig *Signature, digest []byte, expected *PublicKey) (Candidate, error) {
	if expected == nil {
		return Candidate{}, fmt.Errorf("%w: nil expected key", ErrInvalidKey)
	}
	candidates, err := RecoverCandidates(sig, digest)
	if err != nil {
		return Candidate{}, err
	}
	for _, cand := range candidates {
		if cand.PublicKey.Equal(expected) {
			return cand, nil
		}
	}
	return Candidate{}, fmt.Errorf("%w: none of %d candidates matches the expected key", ErrInvalidSignature, len(candidates))
}

func checkRecoveryInput(sig *Signature, digest []byte) error {
	if err := checkSignature(sig); err != nil {
		return err
	}
	return checkDigest(digest)
}

func recoverAll(sig *Signature, digest []byte) []Candidate {
	var out []Candidate
	for id := RecoveryID(0); id <= maxRecoveryID; id++ {
		if pub, ok := recoverWithID(sig, digest, id); ok {
			out = append(out, Candidate{ID: id, PublicKey: pub})
		}
	}
	return out
}

// recoverWithID computes Q = r⁻¹(s·R - z·G) for the nonce point R selected by
// id and confirms it with Verify.
func recoverWithID(sig *Signature, digest []byte, id RecoveryID) (*PublicKey, bool) {
	c := curve.Secp256k1()
	fn := c.ScalarField()

	x := new(big.Int).Set(sig.R)
	if id.Overflow() {
		x.Add(x, c.Params().N)
		if x.Cmp(c.Params().P) >= 0 {
			return nil, false
		}
	}

	R, ok := c.LiftX(x, id.IsOdd())
	if !ok {
		return nil, false
	}

	rInv, err := fn.Inv(sig.R)
	if err != nil {
		return nil, false
	}
	u1 := fn.Neg(fn.Mul(hashToInt(digest), rInv))
	u2 := fn.Mul(sig.S, rInv)

	q := c.LinearCombination(u1, u2, R)
	if q.IsInfinity() {
		return nil, false
	}

	pub := &PublicKey{point: q}
	if !Verify(pub, digest, sig) {
		return nil, false
	}
	return pub, true
}
