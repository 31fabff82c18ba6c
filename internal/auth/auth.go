package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt"
)

// ErrAuthRequired means no usable credential accompanied the request. The
// handler layer turns it into a redirect to login; it is never surfaced as a
// system error and no upstream call is made.
var ErrAuthRequired = errors.New("authentication required")

// Context is the credential state for one request, threaded explicitly into
// the booking and payment flow instead of being read from ambient storage.
type Context struct {
	UserID int64
	Token  string
}

func (c Context) Valid() bool {
	return c.Token != "" && c.UserID > 0
}

// Verifier checks bearer tokens issued by the auth service.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// FromAuthorizationHeader parses a "Bearer <jwt>" header into a Context.
// Anything short of a valid signed token with a user id is ErrAuthRequired.
func (v *Verifier) FromAuthorizationHeader(header string) (Context, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	if raw == "" {
		return Context{}, ErrAuthRequired
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Context{}, ErrAuthRequired
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Context{}, ErrAuthRequired
	}

	userID := userIDClaim(claims)
	if userID <= 0 {
		return Context{}, ErrAuthRequired
	}

	return Context{UserID: userID, Token: raw}, nil
}

// userIDClaim reads the user id, which the auth service has issued both as
// a "userId" claim and as the subject.
func userIDClaim(claims jwt.MapClaims) int64 {
	switch v := claims["userId"].(type) {
	case float64:
		return int64(v)
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id
		}
	}
	if sub, ok := claims["sub"].(string); ok {
		if id, err := strconv.ParseInt(sub, 10, 64); err == nil {
			return id
		}
	}
	return 0
}
