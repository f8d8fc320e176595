package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/service"
	mockSvc "cliptube/internal/mocks/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accessClaimsFor(userID uuid.UUID) *service.AccessClaims {
	return &service.AccessClaims{
		Username: "testuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID.String(),
		},
	}
}

func invokeAuth(t *testing.T, tokenSvc service.TokenService, decorate func(*http.Request)) (echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return nil }
	err := NewAuthMiddleware(tokenSvc).Authenticate(next)(c)

	return c, err
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	userID := uuid.New()

	tokenSvc.EXPECT().
		ValidateAccessToken("valid-token").
		Return(accessClaimsFor(userID), nil)

	c, err := invokeAuth(t, tokenSvc, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer valid-token")
	})

	require.NoError(t, err)
	assert.Equal(t, userID, c.Get(ContextKeyUserID))
	assert.NotNil(t, c.Get(ContextKeyClaims))
}

func TestAuthMiddleware_CookieFallback(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)
	userID := uuid.New()

	tokenSvc.EXPECT().
		ValidateAccessToken("cookie-token").
		Return(accessClaimsFor(userID), nil)

	c, err := invokeAuth(t, tokenSvc, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
	})

	require.NoError(t, err)
	assert.Equal(t, userID, c.Get(ContextKeyUserID))
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)

	_, err := invokeAuth(t, tokenSvc, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)

	_, err := invokeAuth(t, tokenSvc, func(req *http.Request) {
		req.Header.Set("Authorization", "not-a-bearer-token")
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)

	tokenSvc.EXPECT().
		ValidateAccessToken("expired-token").
		Return(nil, service.ErrTokenExpired)

	_, err := invokeAuth(t, tokenSvc, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer expired-token")
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccessTokenInvalid))
}

func TestAuthMiddleware_BadSubject(t *testing.T) {
	tokenSvc := mockSvc.NewMockTokenService(t)

	claims := &service.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
	}
	tokenSvc.EXPECT().
		ValidateAccessToken("odd-token").
		Return(claims, nil)

	_, err := invokeAuth(t, tokenSvc, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer odd-token")
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccessTokenInvalid))
}
