package middleware

import (
	"strings"

	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Context keys set by the Authenticate middleware for downstream handlers.
const (
	// ContextKeyUserID holds the authenticated account's uuid.UUID.
	ContextKeyUserID = "userID"
	// ContextKeyClaims holds the *service.AccessClaims of the verified token.
	ContextKeyClaims = "accessClaims"

	// AccessTokenCookie is the cookie browsers send the access token in.
	AccessTokenCookie = "accessToken"
)

// AuthMiddleware provides middleware for JWT authentication.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the access token and stores the caller's identity on
// the request context. The token is taken from the Authorization header when
// present, otherwise from the access token cookie, so both API clients and
// browsers are served.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			return errors.Wrap(domainerrors.ErrUnauthorized, "missing access token")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return errors.Wrap(domainerrors.ErrAccessTokenInvalid, "access token rejected")
		}

		userID, err := claims.UserID()
		if err != nil {
			return errors.Wrap(domainerrors.ErrAccessTokenInvalid, "access token subject is not a valid user id")
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyClaims, claims)

		return next(c)
	}
}

// extractAccessToken pulls the raw token from the Authorization header or the
// access token cookie. Header wins when both are present.
func extractAccessToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != authHeader {
			return strings.TrimSpace(tokenString)
		}

		return ""
	}

	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}

	return cookie.Value
}
