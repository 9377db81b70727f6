// Package digest supplies the message hash functions that feed the signer,
// verifier and recoverer. The ECDSA core never hashes by itself; it consumes a
// 32-byte digest produced by one of these functions (or any other Func).
package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Size is the digest width, in bytes, expected by the ECDSA core.
const Size = 32

// ErrEmptyInput is returned by HexDigest for an empty message.
var ErrEmptyInput = errors.New("input is empty")

// ErrUnknownHash is returned by ByName for unregistered names.
var ErrUnknownHash = errors.New("unknown hash function")

// Func hashes a message into a Size-byte digest.
type Func func(message []byte) []byte

// SHA256 is the default hash, matching the original signing harness.
func SHA256(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// Keccak256 is the pre-standard Keccak used by Ethereum.
func Keccak256(message []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(message)
	return h.Sum(nil)
}

// BLAKE3 returns the 32-byte BLAKE3 hash.
func BLAKE3(message []byte) []byte {
	h := blake3.Sum256(message)
	return h[:]
}

var registry = map[string]Func{
	"sha256":    SHA256,
	"keccak256": Keccak256,
	"blake3":    BLAKE3,
}

// ByName looks up a hash function by its lower-case name.
func ByName(name string) (Func, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownHash, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names lists the registered hash names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HexDigest hashes input and returns the lower-case hex digest. Empty input is
// rejected.
func HexDigest(f Func, input string) (string, error) {
	if input == "" {
		return "", ErrEmptyInput
	}
	return hex.EncodeToString(f([]byte(input))), nil
}

// Check reports whether expectedHex is the hex digest of input.
func Check(f Func, input, expectedHex string) bool {
	expected, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(expectedHex), "0x"))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(f([]byte(input)), expected) == 1
}
