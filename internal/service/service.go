// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/memo-service/internal/model"
	"github.com/maxviazov/memo-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// NewInvalidInputError lets transport code report malformed request fields
// with the same shape the service uses.
func NewInvalidInputError(fe []FieldError) error { return newInvalidInput(fe) }

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// Bounds for SeedDummies.
const (
	MinSeedCount = 1
	MaxSeedCount = 1000
)

// MemoService defines memo use cases.
type MemoService interface {
	CreateMemo(ctx context.Context, text string) (model.Memo, error)
	GetMemo(ctx context.Context, id int64) (model.Memo, error)

	ListMemos(ctx context.Context, p repository.PageRequest) (repository.Page[model.Memo], error)
	FindRange(ctx context.Context, from, to int64, p repository.PageRequest) (repository.Page[model.Memo], error)
	FindAfter(ctx context.Context, after int64, p repository.PageRequest) (repository.Page[model.Memo], error)

	// UpdateText reports how many memos changed (0 when id is unknown).
	UpdateText(ctx context.Context, id int64, text string) (int64, error)
	// ReviseMemo writes m.Text back to the stored memo with m.ID.
	ReviseMemo(ctx context.Context, m model.Memo) (int64, error)

	DeleteMemo(ctx context.Context, id int64) error
	DeleteLessThan(ctx context.Context, threshold int64) (int, error)

	RawScan(ctx context.Context) ([]repository.Row, error)
	ScanAfter(ctx context.Context, after int64, p repository.PageRequest) (repository.Page[repository.Row], error)

	// SeedDummies inserts n "Sample...i" memos in a single transaction.
	SeedDummies(ctx context.Context, n int) ([]model.Memo, error)
}
