package domain

// Session is the authenticated identity plus verification state for the
// active user. Created on sign-in, destroyed on sign-out, mutated only by
// the session gate.
type Session struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	AuthToken     string `json:"-"`
}
