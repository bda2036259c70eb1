package identity

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/api/idtoken"
)

func TestGoogleVerifier(t *testing.T) {
	valid := &idtoken.Payload{
		Subject: "g-1",
		Claims: map[string]interface{}{
			"email":          "ada@example.com",
			"email_verified": true,
			"name":           "Ada",
		},
	}

	tests := []struct {
		name      string
		audiences []string
		validate  validateFunc
		wantErr   error
		wantSub   string
	}{
		{
			name:      "second audience matches",
			audiences: []string{"web", "desktop"},
			validate: func(_ context.Context, _ string, aud string) (*idtoken.Payload, error) {
				if aud != "desktop" {
					return nil, errors.New("audience mismatch")
				}
				return valid, nil
			},
			wantSub: "g-1",
		},
		{
			name:      "no audience configured",
			audiences: []string{" "},
			wantErr:   ErrNoAudience,
		},
		{
			name:      "unverified email",
			audiences: []string{"web"},
			validate: func(context.Context, string, string) (*idtoken.Payload, error) {
				return &idtoken.Payload{Subject: "g-2", Claims: map[string]interface{}{
					"email": "x@example.com", "email_verified": "false",
				}}, nil
			},
			wantErr: ErrEmailNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewGoogleVerifier(tt.audiences...)
			if tt.validate != nil {
				v.validate = tt.validate
			}

			identity, err := v.VerifyIDToken(context.Background(), "token")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if identity.Subject != tt.wantSub || identity.Name != "Ada" {
				t.Errorf("identity = %+v", identity)
			}
		})
	}
}
