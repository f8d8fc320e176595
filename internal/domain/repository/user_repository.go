// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"cliptube/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshTokenMismatch is returned when a compare-and-swap on the stored
	// refresh token matches no row, i.e. the expected token is no longer current.
	ErrRefreshTokenMismatch = errors.New("stored refresh token does not match")
)

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUsernameOrEmail retrieves a user matching either the username or the
	// email. Both arguments are expected to be case-normalized by the caller;
	// an empty argument matches nothing.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// UpdateRefreshToken unconditionally overwrites the stored refresh token for
	// the user, invalidating whatever token was current before.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	// RotateRefreshToken replaces the stored refresh token only if the current
	// value equals oldToken. The update must be atomic per user so concurrent
	// rotations with the same stale token cannot both succeed; the loser
	// receives ErrRefreshTokenMismatch.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, oldToken, newToken string) error

	// ClearRefreshToken empties the stored refresh token, ending the session.
	// Clearing an already-empty token is not an error.
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
}
