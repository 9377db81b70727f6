package ecdsarecovery

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/ecdsa-recovery/pkg/curve"
)

// NonceSource supplies the per-signature secret k. The signer calls Nonce with
// iteration 0, 1, 2, ... until it gets a nonce that yields a non-degenerate
// signature, so deterministic sources must return a different value for each
// iteration.
type NonceSource interface {
	Nonce(d *big.Int, digest []byte, iteration uint32) (*big.Int, error)
}

// RFC6979Nonce derives nonces deterministically from the private key and the
// digest per RFC 6979 with HMAC-SHA256. Signing the same digest with the same
// key always yields the same signature.
type RFC6979Nonce struct {
	// Extra is optional additional data mixed into the derivation (RFC 6979
	// section 3.6). It must be 32 bytes when set.
	Extra []byte
}

// Nonce implements NonceSource.
func (n RFC6979Nonce) Nonce(d *big.Int, digest []byte, iteration uint32) (*big.Int, error) {
	if n.Extra != nil && len(n.Extra) != 32 {
		return nil, fmt.Errorf("%w: extra nonce data must be 32 bytes", ErrMalformedInput)
	}

	privBytes := privateKeyBytes(d)
	defer zeroize(privBytes)

	k := secp256k1.NonceRFC6979(privBytes, digest, n.Extra, nil, iteration)
	defer k.Zero()

	var kb [32]byte
	k.PutBytes(&kb)
	nonce := new(big.Int).SetBytes(kb[:])
	zeroize(kb[:])
	return nonce, nil
}

// RandomNonce draws nonces uniformly from [1, n-1]. Reader defaults to
// crypto/rand.
type RandomNonce struct {
	Reader io.Reader
}

// Nonce implements NonceSource. The key, digest and iteration are ignored.
func (n RandomNonce) Nonce(_ *big.Int, _ []byte, _ uint32) (*big.Int, error) {
	reader := n.Reader
	if reader == nil {
		reader = rand.Reader
	}
	upper := new(big.Int).Sub(curve.Secp256k1().Params().N, big.NewInt(1))
	k, err := rand.Int(reader, upper)
	if err != nil {
		return nil, fmt.Errorf("failed to read random nonce: %w", err)
	}
	return k.Add(k, big.NewInt(1)), nil
}

// fixedNonce yields one caller-chosen nonce and nothing else.
type fixedNonce struct {
	k *big.Int
}

func (f fixedNonce) Nonce(_ *big.Int, _ []byte, iteration uint32) (*big.Int, error) {
	if iteration > 0 {
		return nil, fmt.Errorf("%w: fixed nonce is degenerate", ErrNonceExhausted)
	}
	return new(big.Int).Set(f.k), nil
}
