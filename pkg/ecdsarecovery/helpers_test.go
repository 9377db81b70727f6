package ecdsarecovery

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecdsa-recovery/pkg/curve"
	"github.com/mahdiidarabi/ecdsa-recovery/pkg/digest"
)

const (
	knownPrivateKeyHex = "eec2b599b65b98f05093057ebcd04695f203ef42a6ae5db65f52e227d4dc8db5"
	otherPrivateKeyHex = "eec2b599b65b98f05093057ebcd04695f203ef42a6ae5db65f52e20000000000"

	// knownPublicKeyHex is the uncompressed public key of knownPrivateKeyHex.
	knownPublicKeyHex = "04a6654ccc4d731f4679db99f57e2b6288e6ca16e09010c0a06ef532b107a2cb80" +
		"cd8b8b24294e22261a2e10171abc324d9785745e740b35c8096188eda171c33b"
	// knownSignatureHex is r ‖ s ‖ v for SHA-256("abc") under knownPrivateKeyHex
	// with the RFC 6979 nonce, low-s normalised.
	knownSignatureHex = "1135b16cd2a2392f3b866a897dab6d2ec44a41d4b55818e1c2b50103e426da15" +
		"1656dbcfb591eb487933d81d3877934b23c5e39c8933819ec55afcaea77bad4c" + "01"
)

func mustPrivateKey(t *testing.T, s string) *big.Int {
	t.Helper()
	d, err := ParsePrivateKeyHex(s)
	require.NoError(t, err)
	return d
}

func mustPublicKey(t *testing.T, d *big.Int) *PublicKey {
	t.Helper()
	pub, err := PublicKeyFromPrivate(d)
	require.NoError(t, err)
	return pub
}

func mustSign(t *testing.T, d *big.Int, h []byte) *Signature {
	t.Helper()
	sig, err := Sign(d, h)
	require.NoError(t, err)
	return sig
}

func sha(msg string) []byte {
	return digest.SHA256([]byte(msg))
}

// testPrivateKeys returns range edges, the fixture keys and a few scalars
// derived from SHA-256 of a counter.
func testPrivateKeys(t *testing.T) []*big.Int {
	t.Helper()
	n := curve.Secp256k1().N()
	keys := []*big.Int{
		big.NewInt(1),
		big.NewInt(2),
		new(big.Int).Sub(n, big.NewInt(1)),
		mustPrivateKey(t, knownPrivateKeyHex),
		mustPrivateKey(t, otherPrivateKeyHex),
	}
	var buf [8]byte
	for i := uint64(0); i < 5; i++ {
		binary.BigEndian.PutUint64(buf[:], i)
		k := new(big.Int).SetBytes(digest.SHA256(buf[:]))
		k.Mod(k, new(big.Int).Sub(n, big.NewInt(1)))
		keys = append(keys, k.Add(k, big.NewInt(1)))
	}
	return keys
}

func decredPrivateKey(d *big.Int) *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(d.FillBytes(make([]byte, 32)))
}

// nonceFunc adapts a function to NonceSource.
type nonceFunc func(d *big.Int, h []byte, iteration uint32) (*big.Int, error)

func (f nonceFunc) Nonce(d *big.Int, h []byte, iteration uint32) (*big.Int, error) {
	return f(d, h, iteration)
}
