package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"nextup-api/domain/models"
	"nextup-api/domain/ports"
	"nextup-api/domain/repositories"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
)

type UserServiceImpl struct {
	userRepo  repositories.UserRepository
	verifier  ports.IdentityVerifierPort
	oauth     *oauth2.Config
	jwtSecret string
	jwtTTL    time.Duration
}

func NewUserService(
	userRepo repositories.UserRepository,
	verifier ports.IdentityVerifierPort,
	jwtSecret string,
	jwtTTL time.Duration,
	googleClientID, googleClientSecret, googleRedirectURL string,
) services.UserService {
	if jwtTTL <= 0 {
		jwtTTL = 7 * 24 * time.Hour
	}
	return &UserServiceImpl{
		userRepo: userRepo,
		verifier: verifier,
		oauth: &oauth2.Config{
			ClientID:     googleClientID,
			ClientSecret: googleClientSecret,
			RedirectURL:  googleRedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// LoginWithIDToken ใช้ทั้ง web (Google Identity Services) และ desktop (deep link)
func (s *UserServiceImpl) LoginWithIDToken(ctx context.Context, idToken string) (string, *models.User, error) {
	identity, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		logger.WarnContext(ctx, "ID token verification failed", "error", err)
		return "", nil, fmt.Errorf("%w: %v", services.ErrInvalidIDToken, err)
	}
	return s.loginOrRegister(ctx, identity)
}

// LoginWithAuthCode แลก authorization code แล้วใช้ id_token ที่ได้มา
func (s *UserServiceImpl) LoginWithAuthCode(ctx context.Context, code string) (string, *models.User, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to exchange code for token", "error", err)
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}
	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", nil, fmt.Errorf("%w: token response has no id_token", services.ErrInvalidIDToken)
	}
	return s.LoginWithIDToken(ctx, idToken)
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.DisplayName,
		"email":    user.Email,
		"role":     user.Role,
		"exp":      now.Add(s.jwtTTL).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetGoogleOAuthURL สร้าง URL สำหรับ redirect ไป Google OAuth
func (s *UserServiceImpl) GetGoogleOAuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// loginOrRegister login ด้วย Google subject, ผูก email เดิม, หรือสร้าง user ใหม่
func (s *UserServiceImpl) loginOrRegister(ctx context.Context, identity *ports.GoogleIdentity) (string, *models.User, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, identity.Subject)
	switch {
	case err == nil:
		// user มีอยู่แล้ว
	case !errors.Is(err, repositories.ErrNotFound):
		return "", nil, err
	default:
		user, err = s.linkOrCreate(ctx, identity)
		if err != nil {
			return "", nil, err
		}
	}

	if !user.IsActive {
		logger.WarnContext(ctx, "Google login failed - account disabled", "user_id", user.ID)
		return "", nil, services.ErrAccountDisabled
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate JWT", "user_id", user.ID, "error", err)
		return "", nil, err
	}

	logger.InfoContext(ctx, "Google login successful", "user_id", user.ID, "email", user.Email)
	return token, user, nil
}

func (s *UserServiceImpl) linkOrCreate(ctx context.Context, identity *ports.GoogleIdentity) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, identity.Email)
	if err == nil {
		// มี email แล้วแต่ยังไม่ผูก Google
		existing.GoogleID = identity.Subject
		if existing.Avatar == "" {
			existing.Avatar = identity.Picture
		}
		existing.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, existing.ID, existing); err != nil {
			logger.ErrorContext(ctx, "Failed to link Google account", "user_id", existing.ID, "error", err)
			return nil, err
		}
		logger.InfoContext(ctx, "Google account linked", "user_id", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:          uuid.New(),
		GoogleID:    identity.Subject,
		Email:       identity.Email,
		DisplayName: identity.Name,
		Avatar:      identity.Picture,
		Role:        "user",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.ErrorContext(ctx, "Failed to create Google user", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Google user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}
