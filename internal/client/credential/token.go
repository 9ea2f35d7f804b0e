// Package credential inspects the session credential handed out by the
// backend. The client never verifies signatures (it has no key); it only
// reads the claims it needs to avoid using a credential it knows is dead.
package credential

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Info is what the client can learn from a credential without the key.
// Opaque (non-JWT) credentials yield an empty Info.
type Info struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect reads the registered claims of a JWT credential. Opaque tokens
// return an empty Info and no error; a token that looks like a JWT but
// cannot be decoded returns common.ErrInvalidToken.
func Inspect(token string) (Info, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Info{}, common.ErrInvalidToken
	}
	if strings.Count(token, ".") != 2 {
		return Info{}, nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	info := Info{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// Check returns nil for a usable credential, common.ErrTokenExpired when the
// exp claim has passed at now, and common.ErrInvalidToken when it cannot be
// read at all.
func Check(token string, now time.Time) error {
	info, err := Inspect(token)
	if err != nil {
		return err
	}
	if !info.ExpiresAt.IsZero() && !now.Before(info.ExpiresAt) {
		return common.ErrTokenExpired
	}
	return nil
}

// IsAuthError reports whether err means the credential is gone for good.
func IsAuthError(err error) bool {
	return errors.Is(err, common.ErrTokenExpired) || errors.Is(err, common.ErrInvalidToken)
}
