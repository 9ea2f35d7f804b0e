package models

// AuthSession is the client's view of who is signed in.
//
// IsAuthenticated implies User != nil. IsLoading is transient and never
// persisted.
type AuthSession struct {
	User            *User `json:"user,omitempty"`
	Role            Role  `json:"role,omitempty"`
	IsAuthenticated bool  `json:"isAuthenticated"`
	IsLoading       bool  `json:"-"`
}

// Normalize enforces the session invariants in place.
func (s *AuthSession) Normalize() {
	if s.User == nil {
		s.IsAuthenticated = false
		s.Role = ""
		return
	}
	s.Role = s.User.Role
}
