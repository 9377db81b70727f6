package ecdsarecovery

import (
	"context"
	"fmt"

	"github.com/mahdiidarabi/ecdsa-recovery/internal/logging"
	"github.com/mahdiidarabi/ecdsa-recovery/pkg/digest"
)

// Client provides a high-level, message-oriented API over the signer,
// verifier and recovery strategies.
type Client struct {
	signer   *Signer
	strategy RecoveryStrategy
	parser   SignatureParser
	hash     digest.Func
	logger   logging.Logger
	batch    BatchConfig
}

// NewClient creates a new client with default settings: RFC 6979 signing,
// SHA-256 message hashing, the adaptive recovery strategy and a parser chosen
// by file extension.
func NewClient() *Client {
	return &Client{
		signer:   NewSigner(),
		strategy: NewAdaptiveStrategy(),
		hash:     digest.SHA256,
		logger:   logging.Nop(),
		batch:    DefaultBatchConfig(),
	}
}

// WithSigner sets a custom signer.
func (c *Client) WithSigner(signer *Signer) *Client {
	c.signer = signer
	return c
}

// WithStrategy sets a custom recovery strategy.
func (c *Client) WithStrategy(strategy RecoveryStrategy) *Client {
	c.strategy = strategy
	return c
}

// WithParser sets a custom record parser. Without one, RecoverFile picks a
// parser from the file extension using the client's hash function.
func (c *Client) WithParser(parser SignatureParser) *Client {
	c.parser = parser
	return c
}

// WithHash sets the message hash function.
func (c *Client) WithHash(hash digest.Func) *Client {
	c.hash = hash
	return c
}

// WithLogger sets the logger.
func (c *Client) WithLogger(logger logging.Logger) *Client {
	c.logger = logger
	if s, ok := c.strategy.(*AdaptiveStrategy); ok {
		s.WithLogger(logger)
	}
	return c
}

// WithBatchConfig sets the configuration used by RecoverFile and
// RecoverRecords.
func (c *Client) WithBatchConfig(config BatchConfig) *Client {
	c.batch = config
	return c
}

// Digest hashes message with the client's hash function.
func (c *Client) Digest(message string) []byte {
	return c.hash([]byte(message))
}

// SignMessage hashes message and signs it with the hex private key. It returns
// the 130-character hex encoding of r ‖ s ‖ v.
func (c *Client) SignMessage(message, privateKeyHex string) (string, error) {
	d, err := ParsePrivateKeyHex(privateKeyHex)
	if err != nil {
		return "", err
	}
	defer d.SetInt64(0)

	c.logger.Debug(context.Background(), "signing message", "bytes", len(message), logging.Redacted("private_key"))
	sig, err := c.signer.Sign(d, c.Digest(message))
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	return sig.Hex(), nil
}

// ValidateSignature reports whether signatureHex is a valid signature of
// message by publicKeyHex. Any decoding failure yields false.
func (c *Client) ValidateSignature(message, publicKeyHex, signatureHex string) bool {
	pub, err := ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		c.logger.Debug(context.Background(), "rejecting public key", "error", err)
		return false
	}
	sig, err := DecodeSignature(signatureHex)
	if err != nil {
		c.logger.Debug(context.Background(), "rejecting signature", "error", err)
		return false
	}
	return Verify(pub, c.Digest(message), sig)
}

// RecoverPublicKey recovers the signer of message from an encoded signature
// (hex, base64 or a {"signature": ...} JSON envelope).
func (c *Client) RecoverPublicKey(ctx context.Context, message, encodedSignature string) (*RecoveryResult, error) {
	sig, err := DecodeSignature(encodedSignature)
	if err != nil {
		return nil, err
	}
	record := &SignedRecord{Message: []byte(message), Digest: c.Digest(message), Signature: sig}
	result, err := c.strategy.Recover(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to recover public key: %w", err)
	}
	c.logger.Debug(ctx, "recovered public key", "public_key", result.PublicKey.Hex(), "recovery_id", result.RecoveryID.String())
	return result, nil
}

// RecoverFile parses the records in path and recovers each of them in
// parallel. Results are in file order.
func (c *Client) RecoverFile(ctx context.Context, path string) ([]BatchResult, error) {
	p := c.parser
	if p == nil {
		p = ParserForFile(path, c.hash)
	}
	records, err := p.ParseRecords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return c.RecoverRecords(ctx, records)
}

// RecoverRecords recovers in-memory records in parallel.
func (c *Client) RecoverRecords(ctx context.Context, records []*SignedRecord) ([]BatchResult, error) {
	return NewBatchRecoverer(c.strategy).
		WithConfig(c.batch).
		WithLogger(c.logger).
		Recover(ctx, records)
}
