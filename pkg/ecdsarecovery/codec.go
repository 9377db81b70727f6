package ecdsarecovery

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/mahdiidarabi/ecdsa-recovery/internal/parser"
)

const (
	scalarSize = 32

	// SignatureSize is the length of the canonical r ‖ s ‖ v encoding.
	SignatureSize = 2*scalarSize + 1

	// LegacySignatureSize is the length of r ‖ s without a recovery id.
	LegacySignatureSize = 2 * scalarSize

	// compactHeaderBase is the first header byte of the 65-byte compact
	// format header ‖ r ‖ s used by Bitcoin message signing.
	compactHeaderBase      = 27
	compactCompressedFlag  = 4
	compactHeaderMaxOffset = 7
)

// Bytes returns r ‖ s ‖ v (SignatureSize bytes), or r ‖ s
// (LegacySignatureSize bytes) when the signature has no recovery id.
func (sig *Signature) Bytes() []byte {
	size := LegacySignatureSize
	if sig.HasRecoveryID() {
		size = SignatureSize
	}
	out := make([]byte, size)
	sig.R.FillBytes(out[:scalarSize])
	sig.S.FillBytes(out[scalarSize:LegacySignatureSize])
	if sig.HasRecoveryID() {
		out[LegacySignatureSize] = byte(sig.V)
	}
	return out
}

// Hex returns Bytes as lower-case hex: 130 characters, or 128 without a
// recovery id.
func (sig *Signature) Hex() string {
	return hex.EncodeToString(sig.Bytes())
}

// ParseSignature decodes r ‖ s ‖ v or legacy r ‖ s.
func ParseSignature(data []byte) (*Signature, error) {
	v := RecoveryUnknown
	switch len(data) {
	case SignatureSize:
		v = RecoveryID(data[LegacySignatureSize])
		if !v.Valid() {
			return nil, fmt.Errorf("%w: recovery id %d", ErrMalformedInput, data[LegacySignatureSize])
		}
	case LegacySignatureSize:
	default:
		return nil, fmt.Errorf("%w: signature must be %d or %d bytes, got %d",
			ErrMalformedInput, SignatureSize, LegacySignatureSize, len(data))
	}

	r := new(big.Int).SetBytes(data[:scalarSize])
	s := new(big.Int).SetBytes(data[scalarSize:LegacySignatureSize])
	return NewSignature(r, s, v)
}

// ParseSignatureHex decodes the hex form of ParseSignature. A 0x prefix is
// accepted.
func ParseSignatureHex(s string) (*Signature, error) {
	b, err := parser.DecodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrMalformedInput, err)
	}
	return ParseSignature(b)
}

// Base64 returns Bytes in padded standard base64.
func (sig *Signature) Base64() string {
	return base64.StdEncoding.EncodeToString(sig.Bytes())
}

// ParseSignatureBase64 decodes padded standard base64. Missing padding and
// non-alphabet characters are rejected.
func ParseSignatureBase64(s string) (*Signature, error) {
	b, err := base64.StdEncoding.Strict().DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: signature base64: %v", ErrMalformedInput, err)
	}
	return ParseSignature(b)
}

type jsonEnvelope struct {
	Signature *string `json:"signature"`
}

// MarshalJSONEnvelope returns {"signature": "<base64 of Bytes>"}.
func (sig *Signature) MarshalJSONEnvelope() ([]byte, error) {
	encoded := sig.Base64()
	return json.Marshal(jsonEnvelope{Signature: &encoded})
}

// ParseSignatureJSON decodes a {"signature": "<base64>"} object.
func ParseSignatureJSON(data []byte) (*Signature, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: signature JSON: %v", ErrMalformedInput, err)
	}
	if env.Signature == nil {
		return nil, fmt.Errorf("%w: signature JSON has no \"signature\" field", ErrMalformedInput)
	}
	return ParseSignatureBase64(*env.Signature)
}

// DecodeSignature accepts any of the text encodings: a JSON envelope, hex
// (with or without 0x) or base64.
func DecodeSignature(encoded string) (*Signature, error) {
	s := strings.TrimSpace(encoded)
	switch {
	case s == "":
		return nil, fmt.Errorf("%w: empty signature", ErrMalformedInput)
	case strings.HasPrefix(s, "{"):
		return ParseSignatureJSON([]byte(s))
	case isHexSignature(s):
		return ParseSignatureHex(s)
	default:
		return ParseSignatureBase64(s)
	}
}

func isHexSignature(s string) bool {
	s = parser.TrimHexPrefix(s)
	if len(s) != 2*SignatureSize && len(s) != 2*LegacySignatureSize {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// DER returns the ASN.1 DER encoding SEQUENCE { r INTEGER, s INTEGER }. The
// recovery id is not part of this format.
func (sig *Signature) DER() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(sig.R)
		b.AddASN1BigInt(sig.S)
	})
	return b.Bytes()
}

// ParseDERSignature decodes a DER signature. The result has no recovery id.
func ParseDERSignature(der []byte) (*Signature, error) {
	r, s := new(big.Int), new(big.Int)
	var inner cryptobyte.String
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, fmt.Errorf("%w: invalid DER signature", ErrMalformedInput)
	}
	return NewSignature(r, s, RecoveryUnknown)
}

// Compact returns the 65-byte header ‖ r ‖ s encoding with header
// 27 + v, plus 4 when the signer's key is used in compressed form.
func (sig *Signature) Compact(compressed bool) ([]byte, error) {
	if !sig.HasRecoveryID() {
		return nil, fmt.Errorf("%w: compact encoding needs a recovery id", ErrMalformedInput)
	}
	out := make([]byte, SignatureSize)
	out[0] = compactHeaderBase + byte(sig.V)
	if compressed {
		out[0] += compactCompressedFlag
	}
	sig.R.FillBytes(out[1 : 1+scalarSize])
	sig.S.FillBytes(out[1+scalarSize:])
	return out, nil
}

// ParseCompactSignature decodes header ‖ r ‖ s and reports whether the header
// marks a compressed key.
func ParseCompactSignature(data []byte) (*Signature, bool, error) {
	if len(data) != SignatureSize {
		return nil, false, fmt.Errorf("%w: compact signature must be %d bytes, got %d", ErrMalformedInput, SignatureSize, len(data))
	}
	offset := int(data[0]) - compactHeaderBase
	if offset < 0 || offset > compactHeaderMaxOffset {
		return nil, false, fmt.Errorf("%w: compact header byte %d", ErrMalformedInput, data[0])
	}
	r := new(big.Int).SetBytes(data[1 : 1+scalarSize])
	s := new(big.Int).SetBytes(data[1+scalarSize:])
	sig, err := NewSignature(r, s, RecoveryID(offset&int(maxRecoveryID)))
	if err != nil {
		return nil, false, err
	}
	return sig, offset&compactCompressedFlag != 0, nil
}

// cborSignature is the CBOR map {1: r, 2: s, 3: v}; v is omitted when unknown.
type cborSignature struct {
	R []byte `cbor:"1,keyasint"`
	S []byte `cbor:"2,keyasint"`
	V *uint8 `cbor:"3,keyasint,omitempty"`
}

// MarshalCBOR implements cbor.Marshaler.
func (sig *Signature) MarshalCBOR() ([]byte, error) {
	cs := cborSignature{
		R: make([]byte, scalarSize),
		S: make([]byte, scalarSize),
	}
	sig.R.FillBytes(cs.R)
	sig.S.FillBytes(cs.S)
	if sig.HasRecoveryID() {
		v := uint8(sig.V)
		cs.V = &v
	}
	return cbor.Marshal(cs)
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (sig *Signature) UnmarshalCBOR(data []byte) error {
	var cs cborSignature
	if err := cbor.Unmarshal(data, &cs); err != nil {
		return fmt.Errorf("%w: signature CBOR: %v", ErrMalformedInput, err)
	}
	if len(cs.R) != scalarSize || len(cs.S) != scalarSize {
		return fmt.Errorf("%w: signature CBOR components must be %d bytes", ErrMalformedInput, scalarSize)
	}
	v := RecoveryUnknown
	if cs.V != nil {
		v = RecoveryID(*cs.V)
	}
	decoded, err := NewSignature(new(big.Int).SetBytes(cs.R), new(big.Int).SetBytes(cs.S), v)
	if err != nil {
		return err
	}
	*sig = *decoded
	return nil
}
