package utils

import (
	eum "eum/errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

type TokenClaims struct {
	UserID   int64
	Nickname string
	Expires  time.Time // 零值表示没有 exp
}

// ParseTokenUnverified reads the claims of an access token issued by the EUM
// backend. The signature is not checked here; the backend does that on every call.
func ParseTokenUnverified(tokenStr string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, errors.Wrap(eum.ErrInvalidToken, err.Error())
	}

	res := &TokenClaims{}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, errors.Wrap(eum.ErrInvalidToken, err.Error())
	}
	if exp != nil {
		res.Expires = exp.Time
	}

	switch v := claims["userId"].(type) {
	case float64:
		res.UserID = int64(v)
	case string:
		res.UserID, _ = strconv.ParseInt(v, 10, 64)
	}
	if res.UserID == 0 {
		if sub, err := claims.GetSubject(); err == nil {
			res.UserID, _ = strconv.ParseInt(sub, 10, 64)
		}
	}
	res.Nickname, _ = claims["nickname"].(string)

	return res, nil
}

// Expired reports whether the claims carry an expiry that is before now.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}
