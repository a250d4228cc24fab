package domain

// Actor is the already-authenticated identity behind a request. Services
// trust it; establishing it (token validation) is the middleware's job.
type Actor struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the actor holds administrative capability.
func (a Actor) IsAdmin() bool { return a.Role == "admin" }
