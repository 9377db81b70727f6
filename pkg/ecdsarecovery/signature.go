package ecdsarecovery

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecdsa-recovery/pkg/curve"
	"github.com/mahdiidarabi/ecdsa-recovery/pkg/digest"
)

// DigestSize is the digest width, in bytes, accepted by Sign, Verify and the
// recovery functions. The package never hashes messages itself.
const DigestSize = digest.Size

// RecoveryID selects which of the up to four points sharing r was used as the
// nonce point R during signing. Bit 0 is the parity of R.y, bit 1 is set when
// R.x was not smaller than the group order.
type RecoveryID uint8

const (
	recoveryOddBit      RecoveryID = 1
	recoveryOverflowBit RecoveryID = 2
	maxRecoveryID       RecoveryID = 3

	// RecoveryUnknown marks a signature decoded from a format without a
	// recovery id, such as legacy r ‖ s or DER.
	RecoveryUnknown RecoveryID = 0xff
)

// IsOdd reports whether R.y is odd.
func (v RecoveryID) IsOdd() bool { return v&recoveryOddBit != 0 }

// Overflow reports whether R.x = r + n.
func (v RecoveryID) Overflow() bool { return v&recoveryOverflowBit != 0 }

// Valid reports whether v is one of the four defined ids.
func (v RecoveryID) Valid() bool { return v <= maxRecoveryID }

func (v RecoveryID) String() string {
	if !v.Valid() {
		if v == RecoveryUnknown {
			return "unknown"
		}
		return fmt.Sprintf("invalid(%d)", uint8(v))
	}
	return fmt.Sprintf("%d", uint8(v))
}

// Signature is an ECDSA signature (r, s) together with its recovery id. It is
// plain value data; nothing in this package mutates a Signature after it is
// returned.
type Signature struct {
	R *big.Int   // x coordinate of the nonce point, mod n
	S *big.Int   // proof scalar, s ≤ n/2 for signatures produced here
	V RecoveryID // RecoveryUnknown when the encoding did not carry one
}

// NewSignature validates r and s and returns a signature holding copies of
// them. v may be RecoveryUnknown.
func NewSignature(r, s *big.Int, v RecoveryID) (*Signature, error) {
	if err := checkComponents(r, s); err != nil {
		return nil, err
	}
	if !v.Valid() && v != RecoveryUnknown {
		return nil, fmt.Errorf("%w: recovery id %d", ErrMalformedInput, uint8(v))
	}
	return &Signature{R: new(big.Int).Set(r), S: new(big.Int).Set(s), V: v}, nil
}

// HasRecoveryID reports whether the signature carries a usable recovery id.
func (sig *Signature) HasRecoveryID() bool {
	return sig.V.Valid()
}

// IsLowS reports whether s ≤ n/2.
func (sig *Signature) IsLowS() bool {
	return sig.S != nil && sig.S.Cmp(curve.Secp256k1().HalfOrder()) <= 0
}

// WithoutRecoveryID returns a copy of the signature with the recovery id
// dropped, the way it would look after a round trip through DER.
func (sig *Signature) WithoutRecoveryID() *Signature {
	return &Signature{R: new(big.Int).Set(sig.R), S: new(big.Int).Set(sig.S), V: RecoveryUnknown}
}

// Equal reports whether both signatures have the same r, s and v.
func (sig *Signature) Equal(other *Signature) bool {
	if sig == nil || other == nil {
		return sig == other
	}
	return sig.R.Cmp(other.R) == 0 && sig.S.Cmp(other.S) == 0 && sig.V == other.V
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature{R: %064x, S: %064x, V: %s}", sig.R, sig.S, sig.V)
}

func checkComponents(r, s *big.Int) error {
	n := curve.Secp256k1().ScalarField()
	if r == nil || r.Sign() == 0 || !n.Contains(r) {
		return errScalarRange("r")
	}
	if s == nil || s.Sign() == 0 || !n.Contains(s) {
		return errScalarRange("s")
	}
	return nil
}

func checkSignature(sig *Signature) error {
	if sig == nil {
		return fmt.Errorf("%w: nil signature", ErrMalformedInput)
	}
	return checkComponents(sig.R, sig.S)
}

func checkDigest(d []byte) error {
	if len(d) != DigestSize {
		return fmt.Errorf("%w: digest must be %d bytes, got %d", ErrMalformedInput, DigestSize, len(d))
	}
	return nil
}

// hashToInt interprets the digest as a big-endian integer reduced mod n.
func hashToInt(d []byte) *big.Int {
	return curve.Secp256k1().ScalarField().Reduce(new(big.Int).SetBytes(d))
}

// Candidate is one public key reconstructed from a signature.
type Candidate struct {
	ID        RecoveryID
	PublicKey *PublicKey
}

// SignedRecord is a digest and signature pair read from a record file,
// optionally with the public key the signer is expected to have.
type SignedRecord struct {
	Message   []byte // original message, if the source carried one
	Digest    []byte
	Signature *Signature
	PublicKey *PublicKey // expected signer, may be nil
}

// RecoveryResult contains the outcome of recovering one record.
type RecoveryResult struct {
	PublicKey  *PublicKey // recovered key, confirmed by Verify
	RecoveryID RecoveryID // id that produced PublicKey
	Candidates int        // number of verifying candidates examined
	Matched    bool       // PublicKey equals the record's expected key
	Strategy   string     // name of the strategy that produced the result
}
