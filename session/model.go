package session

import "slices"

// Session is the client's record of an authenticated identity and its bearer
// credential.
//
// A Session is created on sign-in, replaced wholesale on token refresh and
// destroyed on sign-out. Values handed out by the Portal are copies; mutate them
// freely.
type Session struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Roles      []string `json:"roles"`
	Token      string   `json:"token"`
	EmployeeID string   `json:"employeeId"`
}

// Clone returns a deep copy of s. Clone of nil is nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Roles = slices.Clone(s.Roles)
	return &out
}

// HasRole reports whether role is one of the session's roles.
func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithToken returns a copy of s carrying token in place of the current one.
// Identity fields are untouched.
func (s *Session) WithToken(token string) *Session {
	out := s.Clone()
	if out == nil {
		return nil
	}
	out.Token = token
	return out
}
