// Package usecase implements authentication business logic.
package usecase

import (
	"context"
	"strings"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/marketplace/internal/auth/service"
	apperrors "github.com/allisson/marketplace/internal/errors"
	userDomain "github.com/allisson/marketplace/internal/user/domain"
	appValidation "github.com/allisson/marketplace/internal/validation"
)

// RegisterInput contains the input data for user registration
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput contains the input data for login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair holds a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// UseCase defines the interface for authentication business logic operations
type UseCase interface {
	Register(ctx context.Context, input RegisterInput) (*userDomain.User, error)
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Profile(ctx context.Context, userID uuid.UUID) (*userDomain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *userDomain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userDomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userDomain.User, error)
}

// AuthUseCase handles registration, login and the refresh token lifecycle.
type AuthUseCase struct {
	userRepo       UserRepository
	jwtService     *service.JWTService
	refreshStore   *service.RefreshTokenStore
	passwordHasher *pwdhash.PasswordHasher
}

// NewAuthUseCase creates a new AuthUseCase
func NewAuthUseCase(
	userRepo UserRepository,
	jwtService *service.JWTService,
	refreshStore *service.RefreshTokenStore,
) (*AuthUseCase, error) {
	// Interactive policy for user-facing password hashing
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &AuthUseCase{
		userRepo:       userRepo,
		jwtService:     jwtService,
		refreshStore:   refreshStore,
		passwordHasher: hasher,
	}, nil
}

// validateRegisterInput validates registration input using jellydator/validation
func (uc *AuthUseCase) validateRegisterInput(input RegisterInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
			appValidation.Username,
			validation.Length(3, 50).Error("username must be between 3 and 50 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates a new user account
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*userDomain.User, error) {
	if err := uc.validateRegisterInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &userDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(strings.ToLower(input.Email)),
		Password: hashedPassword,
	}

	// Repository returns ErrUserAlreadyExists on a duplicate email or username
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a token pair.
// Credential failures are reported as ErrUnauthorized without revealing
// whether the email or the password was wrong.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email, validation.Required.Error("email is required")),
		validation.Field(&input.Password, validation.Required.Error("password is required")),
	)
	if err := appValidation.WrapValidationError(err); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(input.Email)))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	ok, err := uc.passwordHasher.Verify([]byte(input.Password), user.Password)
	if err != nil || !ok {
		return nil, apperrors.ErrUnauthorized
	}

	return uc.issueTokenPair(ctx, user.ID)
}

// Refresh rotates a refresh token: the presented grant is revoked and a new
// pair is issued. A token that fails verification against the stored hash is
// treated as revoked or reused and rejected.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, tokenID, err := uc.jwtService.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	ok, err := uc.refreshStore.Verify(ctx, userID, tokenID, refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to verify refresh token")
	}
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	if err := uc.refreshStore.Revoke(ctx, userID, tokenID); err != nil {
		return nil, apperrors.Wrap(err, "failed to revoke refresh token")
	}

	return uc.issueTokenPair(ctx, userID)
}

// Logout revokes every refresh token grant for the user.
func (uc *AuthUseCase) Logout(ctx context.Context, userID uuid.UUID) error {
	return uc.refreshStore.RevokeAll(ctx, userID)
}

// Profile returns the authenticated user's account data.
func (uc *AuthUseCase) Profile(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// issueTokenPair generates an access and refresh token and stores the refresh
// token hash under a fresh token id.
func (uc *AuthUseCase) issueTokenPair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	accessToken, err := uc.jwtService.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.Must(uuid.NewV7())
	refreshToken, err := uc.jwtService.GenerateRefreshToken(userID, tokenID)
	if err != nil {
		return nil, err
	}

	if err := uc.refreshStore.Save(ctx, userID, tokenID, refreshToken, uc.jwtService.RefreshTTL()); err != nil {
		return nil, apperrors.Wrap(err, "failed to store refresh token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(uc.jwtService.AccessTTL().Seconds()),
	}, nil
}
