package model

import "time"

// User is the profile snapshot cached next to the token for display.
type User struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is a live token plus its cached user snapshot.
type Session struct {
	Token string `json:"token"`
	// ExpiresAt is nil when the token carries no readable expiry claim.
	ExpiresAt *time.Time `json:"expires_at"`
	User      *User      `json:"user"`
}

// Clone returns a deep copy safe to hand to callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{Token: s.Token}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		out.ExpiresAt = &t
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// HasExpiry reports whether an expiry instant is known.
func (s *Session) HasExpiry() bool {
	return s != nil && s.ExpiresAt != nil
}
