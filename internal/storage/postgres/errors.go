package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserNotFound is returned when no user has the given id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when signing up with a taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when a password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInsufficientFunds is returned when a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrStarterTaken is returned when a user who already owns Pokémon asks for a starter.
	ErrStarterTaken = errors.New("starter already chosen")
	// ErrInvalidStarter is returned for a starter outside the offered set.
	ErrInvalidStarter = errors.New("invalid starter")
	// ErrOwnedNotFound is returned when a user does not own the requested Pokémon.
	ErrOwnedNotFound = errors.New("owned pokemon not found")
	// ErrPasswordTooLong is returned for a password bcrypt cannot hash.
	ErrPasswordTooLong = fmt.Errorf("password longer than %d bytes", MaxPasswordBytes)
)

// RecordStoreError reports an unexpected database failure. Expected outcomes
// such as ErrUserNotFound are returned bare, never wrapped in this type.
type RecordStoreError struct {
	Op  string
	Err error
}

func (e *RecordStoreError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *RecordStoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &RecordStoreError{Op: op, Err: err}
}

// sqlState returns the SQLSTATE of a PostgreSQL error, or "".
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isDuplicateKeyError reports a unique_violation.
func isDuplicateKeyError(err error) bool { return sqlState(err) == "23505" }

// isForeignKeyError reports a foreign_key_violation.
func isForeignKeyError(err error) bool { return sqlState(err) == "23503" }
