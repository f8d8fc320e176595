// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"io"

	"cliptube/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// MediaUpload is a local upload handle: the file as received from the client,
// not yet persisted to durable storage.
type MediaUpload struct {
	Filename string
	Content  io.Reader
}

// RegisterInput defines the data required to register a new account.
// Avatar is mandatory; CoverImage is optional.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *MediaUpload
	CoverImage *MediaUpload
}

// LoginInput defines the data required to log in. At least one of Username or
// Email must be set.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account, sanitized.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the issued token pair and the sanitized account.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// RefreshOutput returns the rotated token pair.
type RefreshOutput struct {
	AccessToken  string
	RefreshToken string
}

// AccountUsecase defines the interface for account and session operations.
// This is the contract that the delivery layer (e.g., API handlers) depends on.
type AccountUsecase interface {
	// Register creates a new identity record and returns it sanitized.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials and issues a fresh token pair, persisting the
	// refresh token on the identity record.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Refresh rotates a valid, current refresh token into a new token pair.
	// A token that has already been rotated away is rejected even if unexpired.
	Refresh(ctx context.Context, refreshToken string) (*RefreshOutput, error)

	// Logout clears the stored refresh token for the account. Idempotent.
	Logout(ctx context.Context, userID uuid.UUID) error

	// GetCurrentUser returns the sanitized account for an authenticated user.
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}
