// File path: internal/store/errors.go
package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound reports that a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or missing input, raised before any write.
type ValidationError struct {
	Msg     string
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details == "" {
		return e.Msg
	}
	return e.Msg + ": " + e.Details
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports a referential integrity violation surfaced from the
// database, typically a census write naming a missing species, location or
// observer, or a duplicate observer email.
type ConflictError struct {
	Reference string
	Err       error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("constraint violation on %s: %v", e.Reference, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// TransactionError reports a failure inside a compound write. The transaction
// is always rolled back before the error surfaces.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// classifyWriteError converts driver-level constraint failures into the store
// taxonomy; anything unrecognized becomes a TransactionError for op.
func classifyWriteError(op, reference string, err error) error {
	if err == nil {
		return nil
	}
	if isForeignKeyViolation(err) || isUniqueViolation(err) {
		return &ConflictError{Reference: reference, Err: err}
	}
	return &TransactionError{Op: op, Err: err}
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
