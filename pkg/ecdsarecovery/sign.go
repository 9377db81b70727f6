package ecdsarecovery

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdsa-recovery/pkg/curve"
)

// maxNonceAttempts bounds the number of nonces tried for one signature. A
// working source needs more than one attempt with negligible probability.
const maxNonceAttempts = 64

// Signer produces recoverable signatures. The zero value is not usable; create
// one with NewSigner.
type Signer struct {
	nonces NonceSource
}

// NewSigner creates a signer using deterministic RFC 6979 nonces.
func NewSigner() *Signer {
	return &Signer{nonces: RFC6979Nonce{}}
}

// WithNonceSource sets a custom nonce source.
func (s *Signer) WithNonceSource(src NonceSource) *Signer {
	s.nonces = src
	return s
}

var defaultSigner = NewSigner()

// Sign signs a DigestSize-byte digest with the private scalar d using
// deterministic nonces.
func Sign(d *big.Int, digest []byte) (*Signature, error) {
	return defaultSigner.Sign(d, digest)
}

// Sign signs digest with d.
//
// The signature is normalized to low-s: when s > n/2 it is replaced by n - s
// and the parity bit of the recovery id is flipped, since -k yields -R. The
// recovery id is therefore 2·overflow + parity of the point R' = k'·G for the
// effective nonce k'.
func (s *Signer) Sign(d *big.Int, digest []byte) (*Signature, error) {
	return s.sign(d, digest, s.nonces, maxNonceAttempts)
}

// SignWithNonce signs digest with d using exactly the nonce k. It fails with
// ErrInvalidKey when k is not in [1, n-1] and with ErrNonceExhausted when k
// yields r = 0 or s = 0.
func (s *Signer) SignWithNonce(d *big.Int, digest []byte, k *big.Int) (*Signature, error) {
	if k == nil || k.Sign() <= 0 || k.Cmp(curve.Secp256k1().Params().N) >= 0 {
		return nil, fmt.Errorf("%w: nonce is not in [1, n-1]", ErrInvalidKey)
	}
	return s.sign(d, digest, fixedNonce{k: k}, 1)
}

func (s *Signer) sign(d *big.Int, digest []byte, nonces NonceSource, attempts uint32) (*Signature, error) {
	if err := checkPrivateKey(d); err != nil {
		return nil, err
	}
	if err := checkDigest(digest); err != nil {
		return nil, err
	}
	if nonces == nil {
		return nil, fmt.Errorf("no nonce source configured")
	}

	c := curve.Secp256k1()
	fn := c.ScalarField()
	n := c.Params().N
	z := hashToInt(digest)

	for iteration := uint32(0); iteration < attempts; iteration++ {
		k, err := nonces.Nonce(d, digest, iteration)
		if err != nil {
			return nil, fmt.Errorf("nonce derivation failed: %w", err)
		}
		if k == nil || k.Sign() <= 0 || k.Cmp(n) >= 0 {
			continue
		}

		// R = k·G; a nonce with r = 0 is degenerate.
		R := c.ScalarBaseMult(k)
		if R.IsInfinity() {
			continue
		}
		rx := R.X()
		r := fn.Reduce(rx)
		if r.Sign() == 0 {
			continue
		}

		// s = k⁻¹(z + r·d) mod n
		kInv, err := fn.Inv(k)
		k.SetInt64(0)
		if err != nil {
			continue
		}
		sv := fn.Mul(kInv, fn.Add(z, fn.Mul(r, d)))
		if sv.Sign() == 0 {
			continue
		}

		var v RecoveryID
		if rx.Cmp(n) >= 0 {
			v |= recoveryOverflowBit
		}
		if R.IsOddY() {
			v |= recoveryOddBit
		}

		if sv.Cmp(c.HalfOrder()) > 0 {
			sv = fn.Neg(sv)
			v ^= recoveryOddBit
		}

		return &Signature{R: r, S: sv, V: v}, nil
	}

	return nil, fmt.Errorf("%w: no usable nonce after %d attempts", ErrNonceExhausted, attempts)
}
