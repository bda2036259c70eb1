package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"nextup-api/domain/ports"
)

var (
	ErrNoAudience       = errors.New("no Google client id configured")
	ErrEmailNotVerified = errors.New("google account email is not verified")
)

// validateFunc = idtoken.Validate (แทนได้ใน test)
type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier ตรวจ ID token ที่ Google ออกให้ web หรือ desktop client
type GoogleVerifier struct {
	audiences []string
	validate  validateFunc
}

var _ ports.IdentityVerifierPort = (*GoogleVerifier)(nil)

// NewGoogleVerifier audiences = OAuth client ids ที่ยอมรับ
func NewGoogleVerifier(audiences ...string) *GoogleVerifier {
	var clean []string
	for _, a := range audiences {
		if a = strings.TrimSpace(a); a != "" {
			clean = append(clean, a)
		}
	}
	return &GoogleVerifier{audiences: clean, validate: idtoken.Validate}
}

func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, token string) (*ports.GoogleIdentity, error) {
	if len(v.audiences) == 0 {
		return nil, ErrNoAudience
	}

	var lastErr error
	for _, aud := range v.audiences {
		payload, err := v.validate(ctx, token, aud)
		if err != nil {
			lastErr = err
			continue
		}
		return identityFromPayload(payload)
	}
	return nil, fmt.Errorf("validate id token: %w", lastErr)
}

func identityFromPayload(payload *idtoken.Payload) (*ports.GoogleIdentity, error) {
	identity := &ports.GoogleIdentity{
		Subject:       payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		Name:          claimString(payload.Claims, "name"),
		Picture:       claimString(payload.Claims, "picture"),
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, fmt.Errorf("id token has no subject or email")
	}
	if !identity.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return identity, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// email_verified มาเป็น bool หรือ "true" แล้วแต่ issuer
func claimBool(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
