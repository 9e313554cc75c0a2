package store

import "errors"

// Sentinel errors returned by the stores. Callers should use [errors.Is] to
// match against these values.
var (
	// ErrCorruptState is returned when the state file exists but cannot be
	// decoded. The file is left untouched.
	ErrCorruptState = errors.New("sync state is corrupt")

	// ErrUnknownBackend is returned for a state backend other than "file"
	// or "sqlite".
	ErrUnknownBackend = errors.New("unknown state backend")

	// ErrTokenNotFound is returned when no LinkedIn token has been saved.
	ErrTokenNotFound = errors.New("linkedin token not found")

	// ErrTokenExpired is returned when the saved LinkedIn token has expired.
	ErrTokenExpired = errors.New("linkedin token expired")

	// ErrWorkbook is returned when the workbook cannot be opened or written.
	ErrWorkbook = errors.New("workbook error")
)

// Low-level database operation errors. These are returned (or wrapped) by
// the sqlite state store when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing an INSERT fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRows is returned when scanning a state row fails.
	ErrScanningRows = errors.New("failed to scan sync state rows")
)
