package session

import "time"

// Store holds the single live Session for this client. Implementations must
// be safe for concurrent use: every outbound request reads the latest value
// at send time while the refresh routine is the only writer besides explicit
// login and logout.
type Store interface {
	// Get returns the current session, or nil when unauthenticated.
	Get() *Session

	// Set replaces the current session.
	Set(s *Session)

	// UpdateTokens swaps in a refreshed access token (and expiry) without
	// touching the rest of the session. It is a no-op when no session
	// exists.
	UpdateTokens(accessToken string, expiresAt time.Time)

	// Clear destroys the current session.
	Clear()
}
