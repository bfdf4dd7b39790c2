// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package postgres implements the workspace repositories on PostgreSQL
// via pgx. All repositories share one visibility/lifecycle SQL helper, and a
// Transactor stores the active pgx.Tx in context so repository operations
// inside a cascade or restore participate in the same transaction.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts query execution so repositories work against *pgxpool.Pool in
// production and pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BeginDB additionally starts transactions; the Transactor requires it.
type BeginDB interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

// querierFromCtx returns the transaction stored in ctx, or db when none is
// active. Both pgx.Tx and the pool satisfy DB.
func querierFromCtx(ctx context.Context, db DB) DB {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}
