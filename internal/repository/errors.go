package repository

import (
	"errors"
	"fmt"
)

// ErrDatabaseNotReachable is returned when the database does not answer a trivial query.
var ErrDatabaseNotReachable = errors.New("database is not reachable")

// EntityIsNotUnique is returned when a write violates a uniqueness constraint.
type EntityIsNotUnique struct {
	Entity any
	// Field is the column guarded by the violated constraint, empty when unknown.
	Field  string
	Detail string
	Err    error
}

func (e *EntityIsNotUnique) Error() string {
	return fmt.Sprintf("entity is not unique: %s", e.Detail)
}

func (e *EntityIsNotUnique) Unwrap() error {
	return e.Err
}

// EntityDoesNotExist is returned when a lookup matches no row.
type EntityDoesNotExist struct {
	Entity string
	ID     string
	Detail string
}

func (e *EntityDoesNotExist) Error() string {
	return fmt.Sprintf("entity does not exist: %s", e.Detail)
}
