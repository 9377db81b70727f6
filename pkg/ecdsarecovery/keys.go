package ecdsarecovery

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/ecdsa-recovery/internal/parser"
	"github.com/mahdiidarabi/ecdsa-recovery/pkg/curve"
)

// PrivateKeySize is the byte length of a serialized private scalar.
const PrivateKeySize = 32

// PublicKey is a secp256k1 point other than the point at infinity.
type PublicKey struct {
	point curve.Point
}

// NewPublicKey wraps a curve point, rejecting infinity and points that are not
// on the curve.
func NewPublicKey(p curve.Point) (*PublicKey, error) {
	if p.IsInfinity() {
		return nil, fmt.Errorf("%w: point at infinity", ErrInvalidKey)
	}
	if !curve.Secp256k1().IsOnCurve(p) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, curve.ErrInvalidPoint)
	}
	return &PublicKey{point: p}, nil
}

// PublicKeyFromPrivate returns d·G.
func PublicKeyFromPrivate(d *big.Int) (*PublicKey, error) {
	if err := checkPrivateKey(d); err != nil {
		return nil, err
	}
	return &PublicKey{point: curve.Secp256k1().ScalarBaseMult(d)}, nil
}

// ParsePublicKey decodes an uncompressed (65 bytes), raw x ‖ y (64 bytes) or
// compressed (33 bytes) public key.
func ParsePublicKey(data []byte) (*PublicKey, error) {
	p, err := curve.Secp256k1().Unmarshal(data)
	switch {
	case errors.Is(err, curve.ErrPointEncoding):
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return NewPublicKey(p)
}

// ParsePublicKeyHex is ParsePublicKey for hex input with an optional 0x prefix.
func ParsePublicKeyHex(s string) (*PublicKey, error) {
	b, err := parser.DecodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrMalformedInput, err)
	}
	return ParsePublicKey(b)
}

// Point returns the underlying curve point.
func (k *PublicKey) Point() curve.Point { return k.point }

// X returns a copy of the x coordinate.
func (k *PublicKey) X() *big.Int { return k.point.X() }

// Y returns a copy of the y coordinate.
func (k *PublicKey) Y() *big.Int { return k.point.Y() }

// SerializeUncompressed returns 0x04 ‖ x ‖ y.
func (k *PublicKey) SerializeUncompressed() []byte {
	return curve.Secp256k1().MarshalUncompressed(k.point)
}

// SerializeCompressed returns (0x02 | parity) ‖ x.
func (k *PublicKey) SerializeCompressed() []byte {
	return curve.Secp256k1().MarshalCompressed(k.point)
}

// SerializeRaw returns x ‖ y.
func (k *PublicKey) SerializeRaw() []byte {
	return curve.Secp256k1().MarshalRaw(k.point)
}

// Hex returns the uncompressed encoding as 130 hex characters.
func (k *PublicKey) Hex() string {
	return hex.EncodeToString(k.SerializeUncompressed())
}

// Equal reports whether both keys are the same point.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.point.Equal(other.point)
}

func (k *PublicKey) String() string {
	return k.Hex()
}

// ParsePrivateKeyHex decodes a private scalar of at most 32 bytes and checks
// that it lies in [1, n-1].
func ParsePrivateKeyHex(s string) (*big.Int, error) {
	b, err := parser.DecodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", ErrMalformedInput, err)
	}
	defer zeroize(b)
	if len(b) == 0 || len(b) > PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be 1 to %d bytes, got %d", ErrMalformedInput, PrivateKeySize, len(b))
	}
	d := new(big.Int).SetBytes(b)
	if err := checkPrivateKey(d); err != nil {
		return nil, err
	}
	return d, nil
}

// VerifyKeyPair reports whether publicKey is d·G, using the decred secp256k1
// implementation as an independent reference.
func VerifyKeyPair(d *big.Int, publicKey *PublicKey) (bool, error) {
	if publicKey == nil {
		return false, fmt.Errorf("%w: nil public key", ErrInvalidKey)
	}
	if err := checkPrivateKey(d); err != nil {
		return false, err
	}

	privBytes := privateKeyBytes(d)
	defer zeroize(privBytes)

	privKey := secp256k1.PrivKeyFromBytes(privBytes)
	defer privKey.Zero()

	expected := privKey.PubKey().SerializeUncompressed()
	return bytes.Equal(expected, publicKey.SerializeUncompressed()), nil
}

func checkPrivateKey(d *big.Int) error {
	if d == nil || d.Sign() <= 0 || d.Cmp(curve.Secp256k1().Params().N) >= 0 {
		return fmt.Errorf("%w: private key is not in [1, n-1]", ErrInvalidKey)
	}
	return nil
}

// privateKeyBytes returns d left-padded to PrivateKeySize bytes. Callers
// zeroize the result.
func privateKeyBytes(d *big.Int) []byte {
	b := make([]byte, PrivateKeySize)
	d.FillBytes(b)
	return b
}

func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
