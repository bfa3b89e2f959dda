// Package session describes the caller on whose behalf a search runs.
package session

// Profile is the caller's role in the catalog.
type Profile string

// Known profiles.
const (
	Administrator  Profile = "Administrator"
	UserAdmin      Profile = "UserAdmin"
	Reviewer       Profile = "Reviewer"
	Editor         Profile = "Editor"
	RegisteredUser Profile = "RegisteredUser"
	Guest          Profile = "Guest"
)

// IsValid reports whether p is a known profile.
func (p Profile) IsValid() bool {
	switch p {
	case Administrator, UserAdmin, Reviewer, Editor, RegisteredUser, Guest:
		return true
	}
	return false
}

// Session is the security context of one search call.
type Session struct {
	UserID        string
	Profile       Profile
	Groups        []string
	Authenticated bool
}

// Anonymous returns a guest session.
func Anonymous() Session {
	return Session{Profile: Guest}
}

// IsAdmin reports whether the caller is an authenticated administrator.
func (s Session) IsAdmin() bool {
	return s.Authenticated && s.Profile == Administrator
}

// IsReviewer reports whether the caller is an authenticated reviewer.
func (s Session) IsReviewer() bool {
	return s.Authenticated && s.Profile == Reviewer
}

// OwnerID returns the user id when the session is authenticated.
func (s Session) OwnerID() (string, bool) {
	if !s.Authenticated || s.UserID == "" {
		return "", false
	}
	return s.UserID, true
}
