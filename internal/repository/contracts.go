package repository

import (
	"context"

	"github.com/maxviazov/memo-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// Repository calls made with the ctx handed to fn join the transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// Row is an untyped result tuple from a raw scan, columns in select order.
type Row []any

// MemoRepository declares persistence operations for memos.
// I return domain models and surface domain errors from errors.go rather than driver codes.
type MemoRepository interface {
	Create(ctx context.Context, m model.Memo) (model.Memo, error)
	GetByID(ctx context.Context, id int64) (model.Memo, error)

	// FindRange returns memos with from <= id <= to, ordered and sliced per p.
	FindRange(ctx context.Context, from, to int64, p PageRequest) (Page[model.Memo], error)
	// FindAll pages over every memo.
	FindAll(ctx context.Context, p PageRequest) (Page[model.Memo], error)
	// FindAfter pages over memos with id > after.
	FindAfter(ctx context.Context, after int64, p PageRequest) (Page[model.Memo], error)

	// UpdateText replaces the text of memo id and reports rows affected (0 or 1).
	UpdateText(ctx context.Context, id int64, text string) (int64, error)

	DeleteByID(ctx context.Context, id int64) error
	// DeleteLessThan removes every memo with id < threshold, one statement per
	// row. It returns how many rows were removed, also when it fails midway.
	DeleteLessThan(ctx context.Context, threshold int64) (int, error)

	// RawScan runs native SQL over the memo table and returns untyped rows
	// (id, memo_text, created_at, current date).
	RawScan(ctx context.Context) ([]Row, error)
	// ScanAfter is the paged flavour of RawScan restricted to id > after.
	ScanAfter(ctx context.Context, after int64, p PageRequest) (Page[Row], error)
}
