package ecdsarecovery

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mahdiidarabi/ecdsa-recovery/internal/parser"
	"github.com/mahdiidarabi/ecdsa-recovery/pkg/digest"
)

// SignatureParser reads signed records from a source.
type SignatureParser interface {
	// ParseRecords parses all records in source, in file order.
	ParseRecords(source string) ([]*SignedRecord, error)
}

// RecordFields names the fields (JSON keys or CSV columns) a record is read
// from. Empty names fall back to the defaults shown.
//
// A record needs either a message (hashed with the parser's hash function) or
// a hex digest, and either a hex signature or r and s with an optional v.
// Recovery ids 27..30 are accepted and normalized to 0..3.
type RecordFields struct {
	Message   string // default "message"
	Digest    string // default "digest"
	Signature string // default "signature"
	R         string // default "r"
	S         string // default "s"
	V         string // default "v"
	PublicKey string // default "public_key"
}

func (f RecordFields) withDefaults() RecordFields {
	set := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	set(&f.Message, "message")
	set(&f.Digest, "digest")
	set(&f.Signature, "signature")
	set(&f.R, "r")
	set(&f.S, "s")
	set(&f.V, "v")
	set(&f.PublicKey, "public_key")
	return f
}

// JSONParser parses records from a JSON array of objects.
type JSONParser struct {
	Fields RecordFields
	Hash   digest.Func // hashes message fields; default digest.SHA256
}

// ParseRecords parses records from a JSON file.
//
// Expected format:
//
//	[
//	  {"message": "abc", "signature": "<130 hex>"},
//	  {"digest": "0x...", "r": "0x...", "s": "0x...", "v": 1, "public_key": "04..."}
//	]
func (p *JSONParser) ParseRecords(jsonFile string) ([]*SignedRecord, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber() // keep large integers exact

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", ErrMalformedInput, err)
	}

	b := recordBuilder{fields: p.Fields.withDefaults(), hash: p.Hash}
	records := make([]*SignedRecord, 0, len(items))
	for i, item := range items {
		rec, err := b.build(func(name string) (interface{}, bool) {
			v, ok := item[name]
			if !ok || v == nil {
				return nil, false
			}
			return v, true
		})
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// CSVParser parses records from a CSV file with a header row. Empty cells are
// treated as absent.
type CSVParser struct {
	Fields RecordFields
	Hash   digest.Func
}

// ParseRecords parses records from a CSV file.
func (p *CSVParser) ParseRecords(csvFile string) ([]*SignedRecord, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrMalformedInput, err)
	}
	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.TrimSpace(col)] = i
	}

	b := recordBuilder{fields: p.Fields.withDefaults(), hash: p.Hash}
	records := make([]*SignedRecord, 0)
	for line := 0; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read record: %v", ErrMalformedInput, err)
		}

		rec, err := b.build(func(name string) (interface{}, bool) {
			idx, ok := columns[name]
			if !ok || idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
				return nil, false
			}
			return strings.TrimSpace(row[idx]), true
		})
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParserForFile picks a parser by file extension: .csv gets a CSVParser,
// everything else a JSONParser.
func ParserForFile(path string, hash digest.Func) SignatureParser {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return &CSVParser{Hash: hash}
	}
	return &JSONParser{Hash: hash}
}

type recordBuilder struct {
	fields RecordFields
	hash   digest.Func
}

func (b recordBuilder) build(lookup func(name string) (interface{}, bool)) (*SignedRecord, error) {
	rec := &SignedRecord{}

	if val, ok := lookup(b.fields.Digest); ok {
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("%w: digest must be a hex string", ErrMalformedInput)
		}
		d, err := parser.DecodeHex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: digest: %v", ErrMalformedInput, err)
		}
		if err := checkDigest(d); err != nil {
			return nil, err
		}
		rec.Digest = d
	}

	if val, ok := lookup(b.fields.Message); ok {
		msg, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("%w: message must be a string", ErrMalformedInput)
		}
		rec.Message = []byte(msg)
		if rec.Digest == nil {
			hash := b.hash
			if hash == nil {
				hash = digest.SHA256
			}
			rec.Digest = hash(rec.Message)
		}
	}

	if rec.Digest == nil {
		return nil, fmt.Errorf("%w: missing %s or %s field", ErrMalformedInput, b.fields.Message, b.fields.Digest)
	}

	sig, err := b.signature(lookup)
	if err != nil {
		return nil, err
	}
	rec.Signature = sig

	if val, ok := lookup(b.fields.PublicKey); ok {
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("%w: public key must be a hex string", ErrMalformedInput)
		}
		pub, err := ParsePublicKeyHex(s)
		if err != nil {
			return nil, err
		}
		rec.PublicKey = pub
	}

	return rec, nil
}

func (b recordBuilder) signature(lookup func(name string) (interface{}, bool)) (*Signature, error) {
	if val, ok := lookup(b.fields.Signature); ok {
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("%w: signature must be a string", ErrMalformedInput)
		}
		return DecodeSignature(s)
	}

	rVal, ok := lookup(b.fields.R)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s or %s field", ErrMalformedInput, b.fields.Signature, b.fields.R)
	}
	r, err := parser.ParseBigInt(rVal)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse r: %v", ErrMalformedInput, err)
	}

	sVal, ok := lookup(b.fields.S)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s field", ErrMalformedInput, b.fields.S)
	}
	s, err := parser.ParseBigInt(sVal)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse s: %v", ErrMalformedInput, err)
	}

	v := RecoveryUnknown
	if vVal, ok := lookup(b.fields.V); ok {
		raw, err := parser.ParseUint8(vVal)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse v: %v", ErrMalformedInput, err)
		}
		if raw >= compactHeaderBase && raw <= compactHeaderBase+uint8(maxRecoveryID) {
			raw -= compactHeaderBase
		}
		v = RecoveryID(raw)
	}

	return NewSignature(r, s, v)
}
