package domain

import "time"

type Role string

const RoleAdmin Role = "admin"

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Principal is the identity carried by a verified session.
type Principal struct {
	UserID string
	Email  string
	Role   Option[Role]
}

// AuthContext is handed to every use case explicitly.
// The zero value is anonymous.
type AuthContext struct {
	principal Option[Principal]
}

func Anonymous() AuthContext { return AuthContext{} }

func Authenticated(p Principal) AuthContext { return AuthContext{principal: Some(p)} }

func (a AuthContext) Principal() (Principal, bool) { return a.principal.Get() }

func (a AuthContext) IsAuthenticated() bool { return a.principal.IsSome() }

func (a AuthContext) IsAdmin() bool {
	p, ok := a.principal.Get()
	if !ok {
		return false
	}
	r, ok := p.Role.Get()
	return ok && r == RoleAdmin
}

type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         Option[Role] `json:"role"`
	CreatedAt    time.Time    `json:"createdAt"`
}
