// server/internal/store/errors.go
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Collaborator failures surfaced by the store. Unauthorized is handled by
// callers exactly like an auth failure (purge and redirect); Unavailable
// is transient and never retried here — retry is a caller decision.
var (
	ErrNotFound     = errors.New("record not found")
	ErrUnavailable  = errors.New("storage unavailable")
	ErrUnauthorized = errors.New("storage rejected credential")
)

// Mongo server codes for a rejected credential.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
)

// wrapErr maps driver errors onto the collaborator taxonomy.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && (srvErr.HasErrorCode(codeUnauthorized) || srvErr.HasErrorCode(codeAuthenticationFailed)) {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
