package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cliptube/config"
	"cliptube/internal/domain/entity"
	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/repository"
	"cliptube/internal/domain/service"
	"cliptube/internal/infra/auth"
	mockRepo "cliptube/internal/mocks/repository"
	mockSvc "cliptube/internal/mocks/service"
	"cliptube/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service      usecase.AccountUsecase
	txManager    *mockRepo.MockTransactionManager
	userRepo     *mockRepo.MockUserRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
	mediaStorage *mockSvc.MockMediaStorage
}

func createTestAccountService(t *testing.T) accountServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)
	mediaStorage := mockSvc.NewMockMediaStorage(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAccountService(AccountServiceParams{
		TxManager:    txManager,
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		MediaStorage: mediaStorage,
		Logger:       logger,
	})

	return accountServiceFixtures{
		service:      service,
		txManager:    txManager,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		mediaStorage: mediaStorage,
	}
}

func newRegisterInput() *usecase.RegisterInput {
	return &usecase.RegisterInput{
		FullName: "Test User",
		Email:    "test@example.com",
		Username: "testuser",
		Password: "Password123!",
		Avatar: &usecase.MediaUpload{
			Filename: "avatar.png",
			Content:  strings.NewReader("avatar-bytes"),
		},
	}
}

func newStoredUser() *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Username:     "testuser",
		Email:        "test@example.com",
		FullName:     "Test User",
		AvatarURL:    "https://cdn.example.com/media/avatar.png",
		PasswordHash: "hashed_password",
		RefreshToken: "stored_refresh_token",
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now(),
	}
}

func refreshClaimsFor(userID uuid.UUID) *service.RefreshClaims {
	return &service.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID.String(),
		},
	}
}

func TestAccountService_Register_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := newRegisterInput()

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "test@example.com").
		Return(nil, repository.ErrUserNotFound)

	fx.mediaStorage.EXPECT().
		Save(ctx, "avatar.png", input.Avatar.Content).
		Return("https://cdn.example.com/media/avatar.png", nil)

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	createdID := uuid.New()
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(ctx context.Context, user *entity.User) {
			user.ID = createdID
		}).
		Return(nil)

	fx.userRepo.EXPECT().
		FindByID(ctx, createdID).
		Return(&entity.User{
			ID:           createdID,
			Username:     "testuser",
			Email:        "test@example.com",
			FullName:     "Test User",
			AvatarURL:    "https://cdn.example.com/media/avatar.png",
			PasswordHash: "hashed_password",
		}, nil)

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, createdID, output.User.ID)
	assert.Equal(t, "test@example.com", output.User.Email)
	assert.Empty(t, output.User.PasswordHash)
	assert.Empty(t, output.User.RefreshToken)
}

func TestAccountService_Register_WithCoverImage(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := newRegisterInput()
	input.CoverImage = &usecase.MediaUpload{
		Filename: "cover.jpg",
		Content:  strings.NewReader("cover-bytes"),
	}

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "test@example.com").
		Return(nil, repository.ErrUserNotFound)

	fx.mediaStorage.EXPECT().
		Save(ctx, "avatar.png", input.Avatar.Content).
		Return("https://cdn.example.com/media/avatar.png", nil)
	fx.mediaStorage.EXPECT().
		Save(ctx, "cover.jpg", input.CoverImage.Content).
		Return("https://cdn.example.com/media/cover.jpg", nil)

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	createdID := uuid.New()
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(ctx context.Context, user *entity.User) {
			assert.Equal(t, "https://cdn.example.com/media/cover.jpg", user.CoverImageURL)
			user.ID = createdID
		}).
		Return(nil)

	fx.userRepo.EXPECT().
		FindByID(ctx, createdID).
		Return(&entity.User{ID: createdID, CoverImageURL: "https://cdn.example.com/media/cover.jpg"}, nil)

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/cover.jpg", output.User.CoverImageURL)
}

func TestAccountService_Register_MissingFields(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()

	for _, input := range []*usecase.RegisterInput{
		{Email: "a@b.c", Username: "u", Password: "p"},
		{FullName: "n", Username: "u", Password: "p"},
		{FullName: "n", Email: "a@b.c", Password: "p"},
		{FullName: "n", Email: "a@b.c", Username: "u"},
		{FullName: "   ", Email: "a@b.c", Username: "u", Password: "p"},
	} {
		output, err := fx.service.Register(ctx, input)

		require.Error(t, err)
		assert.Nil(t, output)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	}
}

func TestAccountService_Register_MissingAvatar(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := newRegisterInput()
	input.Avatar = nil

	output, err := fx.service.Register(ctx, input)

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAccountService_Register_Conflict(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := newRegisterInput()

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "test@example.com").
		Return(newStoredUser(), nil)

	output, err := fx.service.Register(ctx, input)

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

// The uniqueness pre-check can race another registration; a constraint
// violation on insert surfaces as the same conflict error.
func TestAccountService_Register_ConflictOnInsert(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := newRegisterInput()

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "test@example.com").
		Return(nil, repository.ErrUserNotFound)

	fx.mediaStorage.EXPECT().
		Save(ctx, "avatar.png", input.Avatar.Content).
		Return("https://cdn.example.com/media/avatar.png", nil)

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Return(domainerrors.ErrUserAlreadyExists.WrapMessage("username or email already exists"))

	output, err := fx.service.Register(ctx, input)

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestAccountService_Register_NormalizesIdentifiers(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := newRegisterInput()
	input.Username = "  TestUser  "
	input.Email = " Test@Example.COM "

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "test@example.com").
		Return(newStoredUser(), nil)

	_, err := fx.service.Register(ctx, input)

	require.Error(t, err)
}

func TestAccountService_Login_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()
	input := &usecase.LoginInput{
		Username: "testuser",
		Password: "Password123!",
	}

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "").
		Return(user, nil)

	fx.hasher.EXPECT().Check(input.Password, user.PasswordHash).Return(true)

	fx.tokenService.EXPECT().
		GeneratePair(user).
		Return("new_access_token", "new_refresh_token", nil)

	fx.userRepo.EXPECT().
		UpdateRefreshToken(ctx, user.ID, "new_refresh_token").
		Return(nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "new_access_token", output.AccessToken)
	assert.Equal(t, "new_refresh_token", output.RefreshToken)
	assert.Equal(t, user.ID, output.User.ID)
	assert.Empty(t, output.User.PasswordHash)
	assert.Empty(t, output.User.RefreshToken)
}

func TestAccountService_Login_ByEmail(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()
	input := &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "Password123!",
	}

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "", "test@example.com").
		Return(user, nil)

	fx.hasher.EXPECT().Check(input.Password, user.PasswordHash).Return(true)
	fx.tokenService.EXPECT().GeneratePair(user).Return("at", "rt", nil)
	fx.userRepo.EXPECT().UpdateRefreshToken(ctx, user.ID, "rt").Return(nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, user.Email, output.User.Email)
}

func TestAccountService_Login_NoIdentifier(t *testing.T) {
	fx := createTestAccountService(t)

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{Password: "p"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAccountService_Login_UserNotFound(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "ghost", "").
		Return(nil, repository.ErrUserNotFound)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "ghost", Password: "p"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "").
		Return(user, nil)
	fx.hasher.EXPECT().Check("wrong", user.PasswordHash).Return(false)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "testuser", Password: "wrong"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

// Both failure modes of login answer 404, so the response does not reveal
// whether the account exists.
func TestAccountService_Login_FailureStatusesMatch(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "ghost", "").
		Return(nil, repository.ErrUserNotFound)
	_, missErr := fx.service.Login(ctx, &usecase.LoginInput{Username: "ghost", Password: "p"})

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "").
		Return(user, nil)
	fx.hasher.EXPECT().Check("wrong", user.PasswordHash).Return(false)
	_, badPassErr := fx.service.Login(ctx, &usecase.LoginInput{Username: "testuser", Password: "wrong"})

	var missApp domainerrors.AppError
	var badPassApp domainerrors.AppError
	require.True(t, errors.As(missErr, &missApp))
	require.True(t, errors.As(badPassErr, &badPassApp))
	assert.Equal(t, missApp.HTTPCode(), badPassApp.HTTPCode())
}

func TestAccountService_Login_NilInput(t *testing.T) {
	fx := createTestAccountService(t)

	output, err := fx.service.Login(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	assert.Nil(t, output)
}

func TestAccountService_Register_HashesSubmittedPassword(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	input := newRegisterInput()
	input.Password = " secret1 "

	fx.userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "test@example.com").
		Return(nil, repository.ErrUserNotFound)
	fx.mediaStorage.EXPECT().
		Save(ctx, "avatar.png", input.Avatar.Content).
		Return("https://cdn.example.com/media/avatar.png", nil)

	// The surrounding whitespace is part of the password.
	fx.hasher.EXPECT().Hash(" secret1 ").Return("hashed_password", nil)

	createdID := uuid.New()
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(ctx context.Context, user *entity.User) {
			user.ID = createdID
		}).
		Return(nil)
	fx.userRepo.EXPECT().
		FindByID(ctx, createdID).
		Return(newStoredUser(), nil)

	_, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
}

// Registration followed by login with the identical password must succeed
// even when the password carries surrounding whitespace. Runs against the
// real bcrypt hasher so the stored hash and the check see the same bytes.
func TestAccountService_RegisterThenLogin_WhitespacePassword(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	tokenService := mockSvc.NewMockTokenService(t)
	mediaStorage := mockSvc.NewMockMediaStorage(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAccountService(AccountServiceParams{
		TxManager:    txManager,
		UserRepo:     userRepo,
		Hasher:       auth.NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}}),
		TokenService: tokenService,
		MediaStorage: mediaStorage,
		Logger:       logger,
	})

	ctx := context.Background()
	input := newRegisterInput()
	input.Password = " secret1 "

	var stored *entity.User

	userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "test@example.com").
		Return(nil, repository.ErrUserNotFound).
		Once()
	mediaStorage.EXPECT().
		Save(ctx, "avatar.png", input.Avatar.Content).
		Return("https://cdn.example.com/media/avatar.png", nil)
	userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(ctx context.Context, user *entity.User) {
			user.ID = uuid.New()
			stored = user
		}).
		Return(nil)
	userRepo.EXPECT().
		FindByID(ctx, mock.AnythingOfType("uuid.UUID")).
		RunAndReturn(func(ctx context.Context, id uuid.UUID) (*entity.User, error) {
			return stored, nil
		})

	_, err := service.Register(ctx, input)
	require.NoError(t, err)

	userRepo.EXPECT().
		FindByUsernameOrEmail(ctx, "testuser", "").
		Return(stored, nil).
		Once()
	tokenService.EXPECT().GeneratePair(stored).Return("access-token", "refresh-token", nil)
	userRepo.EXPECT().UpdateRefreshToken(ctx, stored.ID, "refresh-token").Return(nil)

	output, err := service.Login(ctx, &usecase.LoginInput{Username: "testuser", Password: " secret1 "})

	require.NoError(t, err)
	assert.Equal(t, "access-token", output.AccessToken)
}

func TestAccountService_Refresh_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()

	fx.tokenService.EXPECT().
		ValidateRefreshToken("stored_refresh_token").
		Return(refreshClaimsFor(user.ID), nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)

			mockUserRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)

			fx.tokenService.EXPECT().
				GeneratePair(user).
				Return("rotated_access_token", "rotated_refresh_token", nil)

			mockUserRepo.EXPECT().
				RotateRefreshToken(ctx, user.ID, "stored_refresh_token", "rotated_refresh_token").
				Return(nil)

			return fn(mockFactory)
		})

	output, err := fx.service.Refresh(ctx, "stored_refresh_token")

	require.NoError(t, err)
	assert.Equal(t, "rotated_access_token", output.AccessToken)
	assert.Equal(t, "rotated_refresh_token", output.RefreshToken)
}

func TestAccountService_Refresh_EmptyToken(t *testing.T) {
	fx := createTestAccountService(t)

	output, err := fx.service.Refresh(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))
}

func TestAccountService_Refresh_ExpiredToken(t *testing.T) {
	fx := createTestAccountService(t)

	fx.tokenService.EXPECT().
		ValidateRefreshToken("expired").
		Return(nil, service.ErrTokenExpired)

	output, err := fx.service.Refresh(context.Background(), "expired")

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenExpired))
}

func TestAccountService_Refresh_InvalidSignature(t *testing.T) {
	fx := createTestAccountService(t)

	fx.tokenService.EXPECT().
		ValidateRefreshToken("forged").
		Return(nil, service.ErrTokenInvalid)

	output, err := fx.service.Refresh(context.Background(), "forged")

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAccountService_Refresh_UnknownUser(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.EXPECT().
		ValidateRefreshToken("orphaned").
		Return(refreshClaimsFor(userID), nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, userID).Return(nil, repository.ErrUserNotFound)

			return fn(mockFactory)
		})

	output, err := fx.service.Refresh(ctx, "orphaned")

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

// A token that verifies but no longer matches the stored one was already
// rotated away, so presenting it again must fail.
func TestAccountService_Refresh_ReusedToken(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()
	user.RefreshToken = "current_refresh_token"

	fx.tokenService.EXPECT().
		ValidateRefreshToken("old_refresh_token").
		Return(refreshClaimsFor(user.ID), nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)

			return fn(mockFactory)
		})

	output, err := fx.service.Refresh(ctx, "old_refresh_token")

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenReused))
}

// A stale token also loses when a concurrent rotation swaps the stored value
// between the read and the write.
func TestAccountService_Refresh_LostConcurrentRotation(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()

	fx.tokenService.EXPECT().
		ValidateRefreshToken("stored_refresh_token").
		Return(refreshClaimsFor(user.ID), nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)

			fx.tokenService.EXPECT().
				GeneratePair(user).
				Return("a2", "r2", nil)

			mockUserRepo.EXPECT().
				RotateRefreshToken(ctx, user.ID, "stored_refresh_token", "r2").
				Return(repository.ErrRefreshTokenMismatch)

			return fn(mockFactory)
		})

	output, err := fx.service.Refresh(ctx, "stored_refresh_token")

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenReused))
}

// After logout the stored token is empty, so a previously issued refresh token
// no longer matches and is rejected.
func TestAccountService_Refresh_AfterLogout(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()
	user.RefreshToken = ""

	fx.tokenService.EXPECT().
		ValidateRefreshToken("stored_refresh_token").
		Return(refreshClaimsFor(user.ID), nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)

			return fn(mockFactory)
		})

	output, err := fx.service.Refresh(ctx, "stored_refresh_token")

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenReused))
}

func TestAccountService_Logout_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.userRepo.EXPECT().ClearRefreshToken(ctx, userID).Return(nil).Twice()

	require.NoError(t, fx.service.Logout(ctx, userID))
	// Logging out again is a no-op, not an error.
	require.NoError(t, fx.service.Logout(ctx, userID))
}

func TestAccountService_GetCurrentUser_Success(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	user := newStoredUser()

	fx.userRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)

	got, err := fx.service.GetCurrentUser(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)
	assert.Empty(t, got.RefreshToken)
}

func TestAccountService_GetCurrentUser_NotFound(t *testing.T) {
	fx := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.userRepo.EXPECT().FindByID(ctx, userID).Return(nil, repository.ErrUserNotFound)

	got, err := fx.service.GetCurrentUser(ctx, userID)

	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
