package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"buildtrack/internal/apperr"
)

func TestClassifyStoreErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{
			"no rows is not found",
			pgx.ErrNoRows,
			apperr.NotFound,
		},
		{
			"wrapped no rows is not found",
			fmt.Errorf("loading schedule: %w", pgx.ErrNoRows),
			apperr.NotFound,
		},
		{
			"context deadline is store unavailable",
			context.DeadlineExceeded,
			apperr.StoreUnavailable,
		},
		{
			"cancelled context is store unavailable",
			context.Canceled,
			apperr.StoreUnavailable,
		},
		{
			"network error is store unavailable",
			&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			apperr.StoreUnavailable,
		},
		{
			"foreign key violation is not found",
			&pgconn.PgError{Code: "23503"},
			apperr.NotFound,
		},
		{
			"check violation is caller input",
			&pgconn.PgError{Code: "23514"},
			apperr.ValidationFailed,
		},
		{
			"other pg error is internal",
			&pgconn.PgError{Code: "42703"},
			apperr.Internal,
		},
		{
			"connection text is store unavailable",
			errors.New("failed to acquire connection from pool"),
			apperr.StoreUnavailable,
		},
		{
			"unknown error is internal",
			errors.New("boom"),
			apperr.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyStoreErr(tt.err, "thing not found")
			assert.Equal(t, tt.want, apperr.KindOf(got))
		})
	}
}

func TestClassifyStoreErrNil(t *testing.T) {
	assert.NoError(t, classifyStoreErr(nil, "thing not found"))
}

func TestClassifyStoreErrNeverMasksTimeoutAsNotFound(t *testing.T) {
	err := classifyStoreErr(fmt.Errorf("query: %w", context.DeadlineExceeded), "activity not found")
	assert.Equal(t, apperr.StoreUnavailable, apperr.KindOf(err))
	assert.NotEqual(t, apperr.NotFound, apperr.KindOf(err))
}
