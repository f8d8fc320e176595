// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "cliptube/internal/delivery/context"
	"cliptube/internal/domain/entity"
	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/repository"
	"cliptube/internal/domain/service"
	"cliptube/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface. It orchestrates the
// hasher, token service and media storage around the user record store; all
// session state lives on that record.
type accountService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	mediaStorage service.MediaStorage
	logger       *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	MediaStorage service.MediaStorage
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		mediaStorage: params.MediaStorage,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete account registration process.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))

	// The password is stored exactly as submitted; trimming applies only to
	// the non-empty check so Login's Check sees the same bytes Hash saw.
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(input.Password) == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "all fields are required")
	}
	if input.Avatar == nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "avatar file is required")
	}

	srv.log(ctx).Info("Starting registration", slog.String("username", username), slog.String("email", email))

	// Uniqueness pre-check on the primary. The unique constraints remain the
	// backstop for races; a constraint violation on Create maps to the same
	// conflict error.
	existing, err := srv.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check existing user")
	}
	if existing != nil {
		srv.log(ctx).Warn("Registration conflict", slog.String("username", username), slog.String("email", email))

		return nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "registration failed")
	}

	// Upload media before touching the database (network-bound).
	avatarURL, err := srv.mediaStorage.Save(ctx, input.Avatar.Filename, input.Avatar.Content)
	if err != nil {
		srv.log(ctx).Error("Failed to store avatar", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrInternalError, "failed to store avatar")
	}

	coverImageURL := ""
	if input.CoverImage != nil {
		coverImageURL, err = srv.mediaStorage.Save(ctx, input.CoverImage.Filename, input.CoverImage.Content)
		if err != nil {
			srv.log(ctx).Error("Failed to store cover image", slog.Any("error", err))

			return nil, errors.Wrap(domainerrors.ErrInternalError, "failed to store cover image")
		}
	}

	// Hash outside any transaction (bcrypt is CPU-bound).
	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
		PasswordHash:  passwordHash,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		srv.log(ctx).Error("Failed to create user", slog.String("username", username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	// Re-read the persisted record. A missing row here is a fatal
	// inconsistency, not something to retry.
	createdUser, err := srv.userRepo.FindByID(ctx, newUser.ID)
	if err != nil {
		srv.log(ctx).Error("Created user could not be re-read", slog.Any("userID", newUser.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrUserCreationFailed, "failed to load user after registration")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", createdUser.ID))

	return &usecase.RegisterOutput{User: createdUser.Sanitized()}, nil
}

// Login verifies credentials and issues a fresh token pair. The stored refresh
// token is overwritten, which implicitly invalidates any previous session.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "login input is required")
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" && email == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "either username or email is required")
	}

	srv.log(ctx).Debug("Starting login", slog.String("username", username), slog.String("email", email))

	user, err := srv.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed, user not found", slog.String("username", username), slog.String("email", email))

			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find user for login")
	}

	// Check password outside any transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed, password mismatch", slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	accessToken, refreshToken, err := srv.tokenService.GeneratePair(user)
	if err != nil {
		srv.log(ctx).Error("Failed to generate tokens", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrInternalError, "failed to generate tokens")
	}

	if err := srv.userRepo.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		srv.log(ctx).Error("Failed to persist refresh token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to persist refresh token during login")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitized(),
	}, nil
}

// Refresh rotates a presented refresh token into a new pair. The incoming
// token must verify cryptographically, be unexpired, and exactly match the
// token stored on the identity record; a token that was rotated away is
// rejected even when its signature and expiry are still good.
func (srv *accountService) Refresh(ctx context.Context, refreshToken string) (*usecase.RefreshOutput, error) {
	if refreshToken == "" {
		return nil, errors.Wrap(domainerrors.ErrUnauthorized, "refresh token is required")
	}

	srv.log(ctx).Debug("Attempting to refresh token pair")

	claims, err := srv.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			return nil, errors.Wrap(domainerrors.ErrRefreshTokenExpired, "refresh rejected")
		}

		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh rejected")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh rejected")
	}

	var output *usecase.RefreshOutput

	// The reuse check and the swap run in one transaction so two concurrent
	// refreshes with the same stale token cannot both succeed; the row-level
	// compare-and-swap decides the winner.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh rejected")
			}

			return errors.Wrap(err, "failed to find user for refresh")
		}

		if user.RefreshToken != refreshToken {
			return errors.Wrap(domainerrors.ErrRefreshTokenReused, "refresh rejected")
		}

		newAccessToken, newRefreshToken, err := srv.tokenService.GeneratePair(user)
		if err != nil {
			return errors.Wrap(domainerrors.ErrInternalError, "failed to generate tokens")
		}

		if err := userRepo.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenMismatch) {
				// A concurrent refresh won the swap between our read and write.
				return errors.Wrap(domainerrors.ErrRefreshTokenReused, "refresh rejected")
			}

			return errors.Wrap(err, "failed to rotate refresh token")
		}

		output = &usecase.RefreshOutput{
			AccessToken:  newAccessToken,
			RefreshToken: newRefreshToken,
		}

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Refresh rejected", slog.Any("userID", userID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Token pair rotated", slog.Any("userID", userID))

	return output, nil
}

// Logout clears the stored refresh token, ending the session. Logging out an
// already logged-out account is not an error.
func (srv *accountService) Logout(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Logging out", slog.Any("userID", userID))

	if err := srv.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to clear refresh token", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to clear refresh token")
	}

	return nil
}

// GetCurrentUser returns the sanitized account for an authenticated user.
func (srv *accountService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "current user not found")
		}

		return nil, errors.Wrap(err, "failed to find current user")
	}

	return user.Sanitized(), nil
}
