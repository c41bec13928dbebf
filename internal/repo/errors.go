package repo

import "errors"

var (
	// ErrNotFound is returned when a row matching the query does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername and ErrDuplicateEmail map the users table unique
	// constraints. The constraints live in the database so concurrent inserts
	// cannot race past an application-level existence check.
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
)
