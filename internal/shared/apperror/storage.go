package apperror

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes for connection failures.
const pgConnectionExceptionClass = "08"

// FromStorage classifies a storage-layer failure. Timeouts, cancellations
// and dropped connections become Transient so callers know the whole
// operation is safe to retry; anything else passes through unchanged.
// A missing row must never be routed here as Transient or NotFound —
// repositories decide NotFound themselves, where they know the key.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient(err)
	}
	if pgconn.Timeout(err) {
		return Transient(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgConnectionExceptionClass {
		return Transient(err)
	}

	return err
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// used to surface concurrent slug and edge races as Conflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
