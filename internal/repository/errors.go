package repository

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level errors I prefer to bubble up from repository implementations.
var (
	ErrNotFound = errors.New("not found")

	// ErrConstraint marks any data-integrity violation reported by the store.
	ErrConstraint = errors.New("constraint violation")
	// ErrAlreadyExists and ErrConflict are the two constraint flavours I
	// handle explicitly upstream; both satisfy errors.Is(err, ErrConstraint).
	ErrAlreadyExists = fmt.Errorf("%w: already exists", ErrConstraint)
	ErrConflict      = fmt.Errorf("%w: conflict", ErrConstraint)

	// ErrUnavailable wraps connectivity failures. The cause stays in the chain.
	ErrUnavailable = errors.New("storage unavailable")

	// Caller input violations, reported before any query runs.
	ErrInvalidRange = errors.New("invalid range")
	ErrInvalidPage  = errors.New("invalid page")
	ErrInvalidSort  = errors.New("invalid sort")
)

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds while the
// original cause remains reachable through errors.As.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// MapPgError translates common Postgres error codes to domain errors.
// I only map what I expect to handle explicitly at higher layers; everything else passes through.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgErr.Code == pgerrcode.ForeignKeyViolation:
			return ErrConflict
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			if pgErr.ConstraintName == "" {
				return ErrConstraint
			}
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CrashShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow,
			pgErr.Code == pgerrcode.TooManyConnections:
			return Unavailable(err)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return Unavailable(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Unavailable(err)
	}
	return err
}
