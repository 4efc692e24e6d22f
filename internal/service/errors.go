package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"restaurantservice/internal/model"
)

var (
	// ErrAppIsNotHealthy is returned when a dependency of the service is down.
	ErrAppIsNotHealthy = errors.New("app is not healthy")
	// ErrInvalidToken is returned for every bearer token that does not resolve to a live user and token.
	ErrInvalidToken = errors.New("token is not valid")
	// ErrPermissionDenied is returned when the caller lacks the admin flag.
	ErrPermissionDenied = errors.New("permission denied")
)

// UserAlreadyExists is returned when username or email is taken.
type UserAlreadyExists struct {
	User   *model.User
	Field  string
	Detail string
	Err    error
}

func (e *UserAlreadyExists) Error() string {
	return fmt.Sprintf("user already exists: %s", e.Detail)
}

func (e *UserAlreadyExists) Unwrap() error {
	return e.Err
}

// UserDoesNotExist is returned when no user has the given id.
type UserDoesNotExist struct {
	ID  uuid.UUID
	Err error
}

func (e *UserDoesNotExist) Error() string {
	return fmt.Sprintf("user %s does not exist", e.ID)
}

func (e *UserDoesNotExist) Unwrap() error {
	return e.Err
}

// TokenDoesNotExist is returned when the user owns no token with the given id.
type TokenDoesNotExist struct {
	ID uuid.UUID
}

func (e *TokenDoesNotExist) Error() string {
	return fmt.Sprintf("token %s does not exist", e.ID)
}
