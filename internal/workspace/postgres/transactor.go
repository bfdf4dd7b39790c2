// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/taskhive/taskhive/internal/workspace"
)

// Transactor implements workspace.Transactor. It stores the active pgx.Tx
// in context so transaction-aware repository methods participate in the same
// transaction, and retries the whole function on serialization failures —
// the cascade and restore paths are idempotent, so a retry converges.
type Transactor struct {
	db          BeginDB
	maxRetries  uint64
	baseBackoff time.Duration
}

// NewTransactor creates a Transactor backed by the given pool.
func NewTransactor(db BeginDB) *Transactor {
	return &Transactor{db: db, maxRetries: 3, baseBackoff: 10 * time.Millisecond}
}

// InTransaction begins a transaction, stores it in context, and calls fn.
// If fn returns nil, the transaction is committed; otherwise it is rolled
// back. Serialization failures and deadlocks abort the attempt and the whole
// function is retried with backoff.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(t.maxRetries, retry.NewExponential(t.baseBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := t.runOnce(ctx, fn)
		if isRetryablePgError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (t *Transactor) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

func isRetryablePgError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

// Compile-time interface check.
var _ workspace.Transactor = (*Transactor)(nil)
