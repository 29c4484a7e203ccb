package service

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Shared CRUD errors. Handlers map these to HTTP statuses.
var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateRecord   = errors.New("record already exists")
	ErrHasDependents     = errors.New("record is referenced by other records")
	ErrOpenAttemptExists = errors.New("student has an exam in progress")
	ErrOneCorrectOption  = errors.New("exactly one option must be marked correct")
)

// Postgres error codes the services care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isPgErr reports whether err is a Postgres error with the given code.
func isPgErr(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
