package model

// Identity is the authenticated user as returned by the tracker API and as
// persisted in session storage.
type Identity struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

// Session holds the bearer credential and the identity it belongs to.
// Both are set together or not at all.
type Session struct {
	Token    string
	Identity *Identity
}

func (s Session) IsAuthenticated() bool {
	return s.Identity != nil
}
