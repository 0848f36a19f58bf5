package models

// SessionSource records how the current session was established.
type SessionSource string

const (
	SourceNone     SessionSource = ""
	SourceLogin    SessionSource = "login"
	SourceRegister SessionSource = "register"
)

// Session is the current identity. The store persists it under two legacy
// flags (isLoggedIn, isRegistered); in memory a single boolean plus the
// source tag carry the same information.
type Session struct {
	Username      string        `json:"username"`
	Email         string        `json:"email,omitempty"`
	Authenticated bool          `json:"authenticated"`
	Source        SessionSource `json:"source,omitempty"`
}
