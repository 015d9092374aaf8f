package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the snapshot of the authenticated customer carried alongside the
// tokens. It is display data only; the server remains the source of truth.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// Session holds the credentials for one authenticated customer. Exactly one
// live instance exists per client; it is created on login or registration,
// mutated only by the token refresh routine, and destroyed on logout or an
// irrecoverable refresh failure.
type Session struct {
	ClientID     string // client-generated id for this device/session
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Expired reports whether the access token's recorded expiry has passed.
// A zero ExpiresAt means the expiry is unknown and the token is assumed
// live until the server says otherwise.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return now.After(s.ExpiresAt)
}

// ExpiryFromToken extracts the exp claim from a JWT access token without
// verifying the signature. The client has no verification key and does not
// need one; it only wants the expiry the server already committed to.
// Returns the zero time when the token is not a JWT or carries no exp.
func ExpiryFromToken(accessToken string) time.Time {
	if strings.Count(accessToken, ".") != 2 {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
