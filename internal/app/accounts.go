package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"travel_cms/internal/adapters/observability"
	"travel_cms/internal/domain"
)

const minPasswordLen = 8

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by sign-up and sign-in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type AccountService struct {
	users    domain.UserDirectory
	sessions domain.Sessions
	cost     int
}

func NewAccountService(users domain.UserDirectory, sessions domain.Sessions) *AccountService {
	return &AccountService{users: users, sessions: sessions, cost: bcrypt.DefaultCost}
}

func (a *AccountService) SignUp(ctx context.Context, in Credentials) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	var ve domain.ValidationErrors
	required(&ve, "email", email, "Email is required")
	if len(in.Password) < minPasswordLen {
		ve.Add("password", "Password must be at least 8 characters")
	}
	if err := ve.Err(); err != nil {
		return Session{}, err
	}
	u, err := a.create(ctx, email, in.Password, domain.None[domain.Role]())
	if errors.Is(err, domain.ErrConflict) {
		return Session{}, domain.ValidationErrors{{Field: "email", Message: "Email is already registered"}}
	}
	if err != nil {
		return Session{}, err
	}
	return a.issue(u)
}

func (a *AccountService) SignIn(ctx context.Context, in Credentials) (Session, error) {
	u, err := a.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return Session{}, domain.ErrInvalidCredentials
	}
	return a.issue(u)
}

// Me returns the stored user behind the session.
func (a *AccountService) Me(ctx context.Context, ac domain.AuthContext) (domain.User, error) {
	p, ok := ac.Principal()
	if !ok {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return a.users.GetUser(ctx, p.UserID)
}

// Current re-reads the user behind p. Sessions carry the role they were
// issued with; this is what makes a later grant or removal apply right away.
func (a *AccountService) Current(ctx context.Context, p domain.Principal) (domain.Principal, error) {
	u, err := a.users.GetUser(ctx, p.UserID)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// SetRole grants role to a user.
func (a *AccountService) SetRole(ctx context.Context, ac domain.AuthContext, userID string, role domain.Role) (u domain.User, err error) {
	defer func() { observability.ObserveMutation("users", "set_role", outcome(err)) }()
	if err = requireAdmin(ac); err != nil {
		return u, err
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return u, domain.ValidationErrors{{Field: "role", Message: "Unknown role"}}
	}
	return a.users.SetUserRole(ctx, userID, domain.Some(role))
}

func (a *AccountService) RemoveRole(ctx context.Context, ac domain.AuthContext, userID string) (u domain.User, err error) {
	defer func() { observability.ObserveMutation("users", "remove_role", outcome(err)) }()
	if err = requireAdmin(ac); err != nil {
		return u, err
	}
	return a.users.SetUserRole(ctx, userID, domain.None[domain.Role]())
}

// EnsureAdmin creates the bootstrap admin, or grants the role to an
// existing account with that email. The password of an existing account is left alone.
func (a *AccountService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	u, err := a.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if _, err = a.create(ctx, email, password, domain.Some(domain.RoleAdmin)); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		log.Info().Str("email", email).Msg("bootstrap admin created")
		return nil
	case err != nil:
		return fmt.Errorf("lookup admin: %w", err)
	}
	if r, ok := u.Role.Get(); ok && r == domain.RoleAdmin {
		return nil
	}
	if _, err = a.users.SetUserRole(ctx, u.ID, domain.Some(domain.RoleAdmin)); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	log.Info().Str("email", email).Msg("bootstrap admin promoted")
	return nil
}

func (a *AccountService) create(ctx context.Context, email, password string, role domain.Option[domain.Role]) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	return a.users.CreateUser(ctx, domain.User{Email: email, PasswordHash: string(hash), Role: role})
}

func (a *AccountService) issue(u domain.User) (Session, error) {
	tok, exp, err := a.sessions.Issue(u)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: tok, ExpiresAt: exp, User: u}, nil
}
