package refreshtoken

import (
	"context"
	"errors"
)

// Store errors. Rotation callers branch on these.
var (
	// ErrNotFoundOrRevoked covers both an unknown token value and an
	// already-rotated one. Reuse of a rotated token surfaces here,
	// signaling possible token theft.
	ErrNotFoundOrRevoked = errors.New("refreshtoken: not found or revoked")
	// ErrExpired indicates the record exists and is unrevoked but past its
	// expiry. The record is left as-is; the caller must not rotate.
	ErrExpired = errors.New("refreshtoken: expired")
)

// Store persists refresh-token records.
type Store interface {
	// Save inserts a new unrevoked record.
	Save(ctx context.Context, rec *Record) error

	// ConsumeForRotation looks up the unrevoked record for tokenValue and
	// atomically marks it revoked, returning the prior record. The revoke
	// must commit before the caller issues a successor: two concurrent
	// calls presenting the same value must never both succeed.
	ConsumeForRotation(ctx context.Context, tokenValue string) (*Record, error)

	// Revoke marks the record revoked if present and not already revoked.
	// Idempotent: absent or already-revoked is success, not an error.
	Revoke(ctx context.Context, tokenValue string) error
}
