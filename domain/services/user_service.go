package services

import (
	"context"

	"github.com/google/uuid"

	"nextup-api/domain/models"
)

type UserService interface {
	// LoginWithIDToken verify Google ID token แล้ว login หรือสร้าง user ใหม่
	LoginWithIDToken(ctx context.Context, idToken string) (string, *models.User, error)
	// LoginWithAuthCode แลก OAuth code (web redirect flow) แล้ว login
	LoginWithAuthCode(ctx context.Context, code string) (string, *models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GenerateJWT(user *models.User) (string, error)

	// Google OAuth
	GetGoogleOAuthURL(state string) string
}
