package ecdsarecovery

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecdsa-recovery/pkg/digest"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeJSONRecords(t *testing.T, items []map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	return writeFile(t, "records.json", string(data))
}

func TestJSONParserForms(t *testing.T) {
	d := mustPrivateKey(t, knownPrivateKeyHex)
	pub := mustPublicKey(t, d)
	h := sha("abc")
	sig := mustSign(t, d, h)

	path := writeJSONRecords(t, []map[string]interface{}{
		{"message": "abc", "signature": sig.Hex()},
		{"digest": "0x" + hex.EncodeToString(h), "r": "0x" + sig.R.Text(16), "s": sig.S.Text(16), "v": int(sig.V), "public_key": pub.Hex()},
		{"message": "abc", "r": "0X" + strings.ToUpper(sig.R.Text(16)), "s": "0x" + sig.S.Text(16), "v": 27 + int(sig.V)},
		{"message": "abc", "r": sig.R.Text(16), "s": sig.S.Text(16)},
	})

	records, err := (&JSONParser{}).ParseRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 4)

	for i, rec := range records {
		assert.Equal(t, h, rec.Digest, "record %d", i)
		assert.Equal(t, 0, rec.Signature.R.Cmp(sig.R), "record %d", i)
		assert.Equal(t, 0, rec.Signature.S.Cmp(sig.S), "record %d", i)
	}
	assert.Equal(t, []byte("abc"), records[0].Message)
	assert.Equal(t, sig.V, records[0].Signature.V)
	assert.Nil(t, records[1].Message)
	assert.True(t, records[1].PublicKey.Equal(pub))
	assert.Equal(t, sig.V, records[2].Signature.V)
	assert.False(t, records[3].Signature.HasRecoveryID())
}

func TestJSONParserDecimalNumbers(t *testing.T) {
	d := big.NewInt(4242)
	h := sha("numbers")
	sig := mustSign(t, d, h)

	// Raw JSON numbers far beyond float64 precision.
	content := fmt.Sprintf(`[{"message": "numbers", "r": %s, "s": %s, "v": %d}]`, sig.R, sig.S, sig.V)
	records, err := (&JSONParser{}).ParseRecords(writeFile(t, "numbers.json", content))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Signature.Equal(sig))
}

func TestJSONParserCustomFieldsAndHash(t *testing.T) {
	d := big.NewInt(31)
	h := digest.Keccak256([]byte("custom"))
	sig := mustSign(t, d, h)

	path := writeJSONRecords(t, []map[string]interface{}{
		{"msg": "custom", "sig": sig.Base64()},
	})
	p := &JSONParser{
		Fields: RecordFields{Message: "msg", Signature: "sig"},
		Hash:   digest.Keccak256,
	}
	records, err := p.ParseRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, h, records[0].Digest)
	assert.True(t, records[0].Signature.Equal(sig))
}

func TestJSONParserErrors(t *testing.T) {
	sig := mustSign(t, big.NewInt(5), sha("e"))

	cases := map[string]string{
		"no digest":      `[{"signature": "` + sig.Hex() + `"}]`,
		"no signature":   `[{"message": "e"}]`,
		"no s":           `[{"message": "e", "r": "01"}]`,
		"short digest":   `[{"digest": "abcd", "signature": "` + sig.Hex() + `"}]`,
		"bad signature":  `[{"message": "e", "signature": "abc"}]`,
		"bad public key": `[{"message": "e", "signature": "` + sig.Hex() + `", "public_key": "04"}]`,
		"bad r":          `[{"message": "e", "r": "xyz!", "s": "01"}]`,
		"message type":   `[{"message": 5, "signature": "` + sig.Hex() + `"}]`,
		"not an array":   `{"message": "e"}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := (&JSONParser{}).ParseRecords(writeFile(t, "bad.json", content))
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}

	_, err := (&JSONParser{}).ParseRecords(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCSVParser(t *testing.T) {
	d := mustPrivateKey(t, otherPrivateKeyHex)
	pub := mustPublicKey(t, d)
	var b strings.Builder
	b.WriteString("message,signature,r,s,v,public_key\n")

	sigs := make([]*Signature, 3)
	for i := range sigs {
		msg := fmt.Sprintf("row-%d", i)
		sigs[i] = mustSign(t, d, sha(msg))
	}
	fmt.Fprintf(&b, "row-0,%s,,,,\n", sigs[0].Hex())
	fmt.Fprintf(&b, "row-1,,%s,%s,%d,%s\n", sigs[1].R.Text(16), sigs[1].S.Text(16), sigs[1].V, pub.Hex())
	fmt.Fprintf(&b, "row-2, %s,,,,\n", sigs[2].Hex())

	records, err := (&CSVParser{}).ParseRecords(writeFile(t, "records.csv", b.String()))
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, sha(fmt.Sprintf("row-%d", i)), rec.Digest)
		assert.True(t, rec.Signature.Equal(sigs[i]), "row %d", i)
	}
	assert.Nil(t, records[0].PublicKey)
	assert.True(t, records[1].PublicKey.Equal(pub))
}

func TestCSVParserErrors(t *testing.T) {
	_, err := (&CSVParser{}).ParseRecords(writeFile(t, "empty.csv", ""))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = (&CSVParser{}).ParseRecords(writeFile(t, "nosig.csv", "message\nabc\n"))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = (&CSVParser{}).ParseRecords(writeFile(t, "ragged.csv", "message,signature\nabc\n"))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestParserForFile(t *testing.T) {
	assert.IsType(t, &CSVParser{}, ParserForFile("records.CSV", nil))
	assert.IsType(t, &JSONParser{}, ParserForFile("records.json", nil))
	assert.IsType(t, &JSONParser{}, ParserForFile("records", digest.SHA256))
}
