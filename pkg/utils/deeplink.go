package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidDeepLink = errors.New("invalid deep link")

// DeepLinkAuth token ที่ desktop app ได้รับผ่าน nextup://auth?...
type DeepLinkAuth struct {
	IDToken     string
	AccessToken string
}

// ParseDeepLink แยก token ออกจาก {scheme}://auth?idToken=..&accessToken=..
// scheme ว่าง = ไม่ตรวจ scheme
func ParseDeepLink(raw, scheme string) (*DeepLinkAuth, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeepLink, err)
	}
	if scheme != "" && !strings.EqualFold(u.Scheme, scheme) {
		return nil, fmt.Errorf("%w: unexpected scheme %q", ErrInvalidDeepLink, u.Scheme)
	}

	// nextup://auth?... → host = auth, nextup:/auth?... → path = /auth
	target := u.Host
	if target == "" {
		target = strings.Trim(u.Opaque+u.Path, "/")
	}
	if target != "auth" {
		return nil, fmt.Errorf("%w: unexpected target %q", ErrInvalidDeepLink, target)
	}

	q := u.Query()
	auth := &DeepLinkAuth{
		IDToken:     q.Get("idToken"),
		AccessToken: q.Get("accessToken"),
	}
	if auth.IDToken == "" {
		return nil, fmt.Errorf("%w: missing idToken", ErrInvalidDeepLink)
	}
	return auth, nil
}

// BuildDeepLink สร้าง link ที่ส่ง token กลับไปหา desktop app
func BuildDeepLink(scheme string, auth *DeepLinkAuth) string {
	q := url.Values{}
	q.Set("idToken", auth.IDToken)
	if auth.AccessToken != "" {
		q.Set("accessToken", auth.AccessToken)
	}
	return scheme + "://auth?" + q.Encode()
}
