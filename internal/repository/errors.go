package repository

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"buildtrack/internal/apperr"
)

// classifyStoreErr re-classifies a raw store error at the repository
// boundary. Timeouts and connection failures become StoreUnavailable so
// callers can retry; a missing row becomes NotFound; anything else is an
// Internal error and must never be masked as NotFound.
func classifyStoreErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.NotFound, notFoundMsg)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.StoreUnavailable, "store request timed out", err)
	}

	if pgconn.Timeout(err) {
		return apperr.Wrap(apperr.StoreUnavailable, "store request timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperr.Wrap(apperr.StoreUnavailable, "store connection failed", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23503 foreign_key_violation: the parent row the write pointed at is gone.
		if pgErr.Code == "23503" {
			return apperr.New(apperr.NotFound, notFoundMsg)
		}
		// 23514 check_violation: the schema's date/progress checks caught bad
		// caller input the mask-level validation could not see (e.g. a
		// single-sided date update against the stored counterpart).
		if pgErr.Code == "23514" {
			return apperr.New(apperr.ValidationFailed, "dates or progress violate schedule constraints")
		}
		return apperr.Wrap(apperr.Internal, "store rejected the operation", err)
	}

	if strings.Contains(err.Error(), "connection") {
		return apperr.Wrap(apperr.StoreUnavailable, "store connection failed", err)
	}

	return apperr.Wrap(apperr.Internal, "unexpected store error", err)
}
