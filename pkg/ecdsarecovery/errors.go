package ecdsarecovery

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is returned for inputs of the wrong length or encoding:
	// odd-length or non-hex strings, bad base64, JSON without a signature
	// field, digests that are not DigestSize bytes.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidKey is returned for private scalars outside [1, n-1] and for
	// public keys that are the point at infinity or not on the curve.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidSignature is returned when r or s is out of range, or when no
	// recovered candidate verifies.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAmbiguousRecovery is returned when more than one candidate key
	// verifies and nothing else selects between them. With a correctly
	// produced recovery id this only happens for signatures that lost it.
	ErrAmbiguousRecovery = errors.New("ambiguous public key recovery")

	// ErrNonceExhausted is returned when the nonce source produced only
	// degenerate nonces within the attempt limit.
	ErrNonceExhausted = errors.New("nonce source exhausted")
)

// errScalarRange reports an r or s component outside [1, n-1]. It matches both
// ErrInvalidSignature and ErrMalformedInput.
func errScalarRange(name string) error {
	return fmt.Errorf("%w: %w: %s is not in [1, n-1]", ErrInvalidSignature, ErrMalformedInput, name)
}
