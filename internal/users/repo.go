package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no profile is stored for a user id.
var ErrNotFound = errors.New("user not found")

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
