package ports

import "context"

// GoogleIdentity claims ที่ได้จาก ID token ที่ verify แล้ว
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityVerifierPort verify ID token จาก identity provider
type IdentityVerifierPort interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
}
