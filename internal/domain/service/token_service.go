package service

import (
	"time"

	"cliptube/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Verification failure reasons. The session manager maps both to an
// unauthorized response but propagates the distinction in the message.
var (
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid is returned when a token is malformed or its signature
	// does not verify under the expected secret and algorithm.
	ErrTokenInvalid = errors.New("token is invalid")
)

// AccessClaims is the payload of an access token: enough identity data to
// authorize individual requests without a database lookup.
type AccessClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. It carries only the user ID
// to minimize exposed data if a refresh token leaks.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the account UUID.
func (c *AccessClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "invalid subject claim")
	}

	return id, nil
}

// UserID parses the subject claim as the account UUID.
func (c *RefreshClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "invalid subject claim")
	}

	return id, nil
}

// TokenService defines the interface for issuing and verifying the signed,
// time-limited access/refresh token pair. Implementations are pure functions
// of their inputs plus the current time; persistence of the refresh token is
// the caller's job.
type TokenService interface {
	// GeneratePair issues a fresh access and refresh token for the user.
	GeneratePair(user *entity.User) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken verifies signature and expiry of an access token and
	// returns its claims. Fails with ErrTokenExpired or ErrTokenInvalid.
	ValidateAccessToken(tokenString string) (*AccessClaims, error)

	// ValidateRefreshToken verifies signature and expiry of a refresh token and
	// returns its claims. Fails with ErrTokenExpired or ErrTokenInvalid.
	ValidateRefreshToken(tokenString string) (*RefreshClaims, error)

	// AccessTokenDuration returns the configured lifetime of access tokens.
	AccessTokenDuration() time.Duration

	// RefreshTokenDuration returns the configured lifetime of refresh tokens.
	RefreshTokenDuration() time.Duration
}
