package repository

import (
	"context"
	"errors"
	"time"

	"messagely/internal/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("repository: user not found")
	// ErrDuplicateUsername is returned when an insert violates the username unique key.
	ErrDuplicateUsername = errors.New("repository: username already exists")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
}
