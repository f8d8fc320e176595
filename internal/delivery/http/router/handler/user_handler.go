// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"cliptube/internal/delivery/http/middleware"
	"cliptube/internal/delivery/http/response"
	"cliptube/internal/domain/entity"
	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/service"
	"cliptube/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RefreshTokenCookie is the cookie browsers send the refresh token in.
const RefreshTokenCookie = "refreshToken"

// userResponse is the wire shape of an account. Credential material never has
// a field here, so it cannot leak by accident.
type userResponse struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newUserResponse(user *entity.User) *userResponse {
	if user == nil {
		return nil
	}

	return &userResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FullName:      user.FullName,
		AvatarURL:     user.AvatarURL,
		CoverImageURL: user.CoverImageURL,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// LoginRequest represents the login request body. At least one of username or
// email identifies the account.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User         *userResponse `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserHandler holds dependencies for account-related handlers.
type UserHandler struct {
	uc       usecase.AccountUsecase
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.AccountUsecase, tokenSvc service.TokenService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		uc:       uc,
		tokenSvc: tokenSvc,
		logger:   logger,
	}
}

// Register handles the account registration request. The body is multipart
// form data: text fields plus a mandatory avatar file and an optional cover
// image file.
func (h *UserHandler) Register(c echo.Context) error {
	input := &usecase.RegisterInput{
		FullName: c.FormValue("fullName"),
		Email:    c.FormValue("email"),
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}

	avatar, avatarFile, err := openFormFile(c, "avatar")
	if err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, "avatar file is required")
	}
	defer avatarFile.Close()
	input.Avatar = avatar

	if cover, coverFile, err := openFormFile(c, "coverImage"); err == nil {
		defer coverFile.Close()
		input.CoverImage = cover
	}

	output, err := h.uc.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newUserResponse(output.User), "User registered successfully")
}

// Login handles the login request. The token pair is returned in the body and
// mirrored into cookies for browser clients.
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setAuthCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, &loginResponse{
		User:         newUserResponse(output.User),
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	}, "Login successful")
}

// RefreshToken rotates the refresh token into a new pair. The incoming token
// is read from the refresh cookie, falling back to the JSON body.
func (h *UserHandler) RefreshToken(c echo.Context) error {
	refreshToken := ""
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.Bind(&body); err == nil {
			refreshToken = body.RefreshToken
		}
	}

	output, err := h.uc.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		return errors.WithStack(err)
	}

	h.setAuthCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, &refreshResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	}, "Token refreshed successfully")
}

// Logout ends the caller's session and expires the auth cookies.
func (h *UserHandler) Logout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.Logout(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	h.clearAuthCookies(c)

	return response.Success(c, http.StatusOK, map[string]string{}, "Logout successful")
}

// CurrentUser returns the authenticated account.
func (h *UserHandler) CurrentUser(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.GetCurrentUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user), "Current user fetched successfully")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

// currentUserID reads the user ID placed on the context by the auth middleware.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.Wrap(domainerrors.ErrUnauthorized, "missing authenticated user")
	}

	return userID, nil
}

// openFormFile opens a multipart file field as an upload handle. The caller
// must close the returned file.
func openFormFile(c echo.Context, field string) (*usecase.MediaUpload, multipart.File, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "form file %q missing", field)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open form file %q", field)
	}

	return &usecase.MediaUpload{
		Filename: fileHeader.Filename,
		Content:  file,
	}, file, nil
}

// setAuthCookies mirrors the token pair into httpOnly cookies so browser
// clients never touch the tokens from script.
func (h *UserHandler) setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(authCookie(middleware.AccessTokenCookie, accessToken, h.tokenSvc.AccessTokenDuration()))
	c.SetCookie(authCookie(RefreshTokenCookie, refreshToken, h.tokenSvc.RefreshTokenDuration()))
}

// clearAuthCookies expires both auth cookies.
func (h *UserHandler) clearAuthCookies(c echo.Context) {
	c.SetCookie(authCookie(middleware.AccessTokenCookie, "", -time.Second))
	c.SetCookie(authCookie(RefreshTokenCookie, "", -time.Second))
}

func authCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
