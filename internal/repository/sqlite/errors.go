package sqlite

import (
	"database/sql"
	"errors"

	"github.com/maxviazov/memo-service/internal/repository"
)

// SQLite result codes, https://www.sqlite.org/rescode.html
const (
	codeBusy       = 5
	codeLocked     = 6
	codeIOErr      = 10
	codeCantOpen   = 14
	codeConstraint = 19

	codeConstraintForeignKey = 787
	codeConstraintPrimaryKey = 1555
	codeConstraintUnique     = 2067
)

// coder is satisfied by the driver's error type; the low byte is the primary
// result code and the rest carries the extended code.
type coder interface {
	Code() int
}

// mapSQLiteError is the SQLite counterpart of repository.MapPgError.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrConnDone) {
		return repository.Unavailable(err)
	}
	var c coder
	if !errors.As(err, &c) {
		return err
	}
	code := c.Code()
	switch code & 0xff {
	case codeConstraint:
		switch code {
		case codeConstraintUnique, codeConstraintPrimaryKey:
			return repository.ErrAlreadyExists
		case codeConstraintForeignKey:
			return repository.ErrConflict
		}
		return repository.ErrConstraint
	case codeBusy, codeLocked, codeIOErr, codeCantOpen:
		return repository.Unavailable(err)
	}
	return err
}
