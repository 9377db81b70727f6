// Package parser holds the low-level value decoding shared by the signature
// codec and the record file parsers.
package parser

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidHex is returned for odd-length or non-hex input.
var ErrInvalidHex = errors.New("invalid hex string")

// TrimHexPrefix removes a leading 0x or 0X.
func TrimHexPrefix(s string) string {
	s = strings.TrimPrefix(s, "0x")
	return strings.TrimPrefix(s, "0X")
}

// DecodeHex decodes a hex string, accepting an optional 0x prefix and
// surrounding whitespace. Odd lengths are rejected rather than padded.
func DecodeHex(s string) ([]byte, error) {
	s = TrimHexPrefix(strings.TrimSpace(s))
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// ParseBigInt parses a big integer from the forms found in signature files:
// hex strings (with 0x, with hex letters, or longer than 20 characters),
// decimal strings, json.Number and native integers.
func ParseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		hasPrefix := strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
		s = TrimHexPrefix(s)
		if s == "" {
			return nil, fmt.Errorf("invalid number format: %q", v)
		}

		if hasPrefix || strings.ContainsAny(s, "abcdefABCDEF") || len(s) > 20 {
			z, ok := new(big.Int).SetString(s, 16)
			if !ok {
				return nil, fmt.Errorf("invalid hex number: %s", v)
			}
			return z, nil
		}

		z, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case json.Number:
		z, ok := new(big.Int).SetString(string(v), 10)
		if !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case int64:
		return big.NewInt(v), nil

	case int:
		return big.NewInt(int64(v)), nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}

// ParseUint8 parses a small non-negative integer such as a recovery id.
func ParseUint8(val interface{}) (uint8, error) {
	z, err := ParseBigInt(val)
	if err != nil {
		return 0, err
	}
	if z.Sign() < 0 || z.BitLen() > 8 {
		return 0, fmt.Errorf("value %s out of range for a byte", z)
	}
	return uint8(z.Uint64()), nil
}
