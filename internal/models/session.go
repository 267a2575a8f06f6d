package models

import "time"

// User is the normalized identity-provider profile cached alongside a session.
// UID is the only field guaranteed to be present.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Session is one authenticated client session: the bearer credential, the
// refresh credential, an absolute expiry, and the cached user profile.
type Session struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt"` // epoch milliseconds
	User         *User  `json:"user"`
}

// Valid reports whether the session can still authenticate requests at the
// given instant. A session with no expiry is never valid, and the expiry
// instant itself counts as expired.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.ExpiresAt <= 0 {
		return false
	}
	return now.UnixMilli() < s.ExpiresAt
}

// ExpiresIn returns the remaining session lifetime, zero when expired.
func (s *Session) ExpiresIn(now time.Time) time.Duration {
	if !s.Valid(now) {
		return 0
	}
	return time.Duration(s.ExpiresAt-now.UnixMilli()) * time.Millisecond
}
