package ecdsarecovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/mahdiidarabi/ecdsa-recovery/internal/logging"
)

// RecoveryStrategy decides how a record's public key is recovered.
// Implement this interface to plug custom selection logic into the Client and
// the batch engine.
type RecoveryStrategy interface {
	// Recover returns the confirmed public key for record. The context can be
	// used for cancellation.
	Recover(ctx context.Context, record *SignedRecord) (*RecoveryResult, error)

	// Name returns a human-readable name for this strategy.
	Name() string
}

// RecoveryIDStrategy trusts the record's recovery id and only confirms the
// key it names. Records without an id go through RecoverPublicKey's
// enumeration, which is ambiguous unless the record names its signer.
type RecoveryIDStrategy struct{}

// Name returns the name of this strategy.
func (RecoveryIDStrategy) Name() string { return "RecoveryID" }

// Recover implements RecoveryStrategy.
func (s RecoveryIDStrategy) Recover(ctx context.Context, record *SignedRecord) (*RecoveryResult, error) {
	if err := checkRecord(ctx, record); err != nil {
		return nil, err
	}
	if !record.Signature.HasRecoveryID() && record.PublicKey != nil {
		return ExhaustiveStrategy{}.recover(record, s.Name())
	}

	pub, err := RecoverPublicKey(record.Signature, record.Digest)
	if err != nil {
		return nil, err
	}
	return finish(record, pub, record.Signature.V, 1, s.Name())
}

// ExhaustiveStrategy ignores the recovery id, enumerates every candidate
// and selects the record's expected key, the single verifying candidate, or
// the candidate named by the record's recovery id, in that order.
type ExhaustiveStrategy struct{}

// Name returns the name of this strategy.
func (ExhaustiveStrategy) Name() string { return "Exhaustive" }

// Recover implements RecoveryStrategy.
func (s ExhaustiveStrategy) Recover(ctx context.Context, record *SignedRecord) (*RecoveryResult, error) {
	if err := checkRecord(ctx, record); err != nil {
		return nil, err
	}
	return s.recover(record, s.Name())
}

func (ExhaustiveStrategy) recover(record *SignedRecord, name string) (*RecoveryResult, error) {
	candidates, err := RecoverCandidates(record.Signature, record.Digest)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate key verifies", ErrInvalidSignature)
	}

	if record.PublicKey != nil {
		for _, cand := range candidates {
			if cand.PublicKey.Equal(record.PublicKey) {
				return finish(record, cand.PublicKey, cand.ID, len(candidates), name)
			}
		}
		return nil, fmt.Errorf("%w: none of %d candidates matches the expected key", ErrInvalidSignature, len(candidates))
	}

	if len(candidates) == 1 {
		return finish(record, candidates[0].PublicKey, candidates[0].ID, 1, name)
	}

	if record.Signature.HasRecoveryID() {
		for _, cand := range candidates {
			if cand.ID == record.Signature.V {
				return finish(record, cand.PublicKey, cand.ID, len(candidates), name)
			}
		}
	}

	return nil, fmt.Errorf("%w: %d candidate keys verify", ErrAmbiguousRecovery, len(candidates))
}

// AdaptiveStrategy takes the recovery-id fast path first and falls back to
// exhaustive enumeration when the id is missing or names a key that does not
// verify or does not match the expected signer.
type AdaptiveStrategy struct {
	logger logging.Logger
}

// NewAdaptiveStrategy creates the default strategy.
func NewAdaptiveStrategy() *AdaptiveStrategy {
	return &AdaptiveStrategy{logger: logging.Nop()}
}

// WithLogger sets the logger used to report fallbacks.
func (s *AdaptiveStrategy) WithLogger(logger logging.Logger) *AdaptiveStrategy {
	s.logger = logger
	return s
}

// Name returns the name of this strategy.
func (s *AdaptiveStrategy) Name() string { return "Adaptive" }

// Recover implements RecoveryStrategy.
func (s *AdaptiveStrategy) Recover(ctx context.Context, record *SignedRecord) (*RecoveryResult, error) {
	if err := checkRecord(ctx, record); err != nil {
		return nil, err
	}

	if record.Signature.HasRecoveryID() {
		pub, err := RecoverPublicKey(record.Signature, record.Digest)
		if err == nil && (record.PublicKey == nil || pub.Equal(record.PublicKey)) {
			return finish(record, pub, record.Signature.V, 1, s.Name())
		}
		if err != nil && !errors.Is(err, ErrInvalidSignature) {
			return nil, err
		}
		if s.logger != nil {
			s.logger.Warn(ctx, "recovery id did not yield the signer, enumerating candidates",
				"recovery_id", record.Signature.V.String())
		}
	}

	return ExhaustiveStrategy{}.recover(record, s.Name())
}

func checkRecord(ctx context.Context, record *SignedRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record == nil || record.Signature == nil {
		return fmt.Errorf("%w: record has no signature", ErrMalformedInput)
	}
	return nil
}

func finish(record *SignedRecord, pub *PublicKey, id RecoveryID, candidates int, strategy string) (*RecoveryResult, error) {
	matched := record.PublicKey != nil && pub.Equal(record.PublicKey)
	if record.PublicKey != nil && !matched {
		return nil, fmt.Errorf("%w: recovered key does not match the expected key", ErrInvalidSignature)
	}
	return &RecoveryResult{
		PublicKey:  pub,
		RecoveryID: id,
		Candidates: candidates,
		Matched:    matched,
		Strategy:   strategy,
	}, nil
}
