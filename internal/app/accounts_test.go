package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel_cms/internal/app"
	"travel_cms/internal/domain"
	"travel_cms/internal/storage/memory"
)

func TestSignUpSignIn(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a := app.NewAccountService(st, fakeSessions{})

	s, err := a.SignUp(ctx, app.Credentials{Email: " Ana@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", s.User.Email)
	assert.False(t, s.User.Role.IsSome())
	assert.Equal(t, "tok-"+s.User.ID, s.Token)

	_, err = a.SignUp(ctx, app.Credentials{Email: "ana@example.com", Password: "another one"})
	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve[0].Field)

	_, err = a.SignIn(ctx, app.Credentials{Email: "ana@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = a.SignIn(ctx, app.Credentials{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	in, err := a.SignIn(ctx, app.Credentials{Email: "ANA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, in.User.ID)
}

func TestSignUp_ShortPassword(t *testing.T) {
	a := app.NewAccountService(memory.New(), fakeSessions{})
	_, err := a.SignUp(context.Background(), app.Credentials{Email: "a@b.c", Password: "short"})
	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve[0].Field)
}

func TestRoleChange_NonAdminRejected(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a := app.NewAccountService(st, fakeSessions{})
	target, err := a.SignUp(ctx, app.Credentials{Email: "t@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = a.SetRole(ctx, member, target.User.ID, domain.RoleAdmin)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Equal(t, "Not Authorized", err.Error())

	u, err := st.GetUser(ctx, target.User.ID)
	require.NoError(t, err)
	assert.False(t, u.Role.IsSome(), "no user may be altered")

	_, err = a.RemoveRole(ctx, domain.Anonymous(), target.User.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestRoleChange_Admin(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a := app.NewAccountService(st, fakeSessions{})
	target, err := a.SignUp(ctx, app.Credentials{Email: "t@example.com", Password: "password1"})
	require.NoError(t, err)

	u, err := a.SetRole(ctx, admin, target.User.ID, domain.RoleAdmin)
	require.NoError(t, err)
	r, _ := u.Role.Get()
	assert.Equal(t, domain.RoleAdmin, r)

	_, err = a.SetRole(ctx, admin, target.User.ID, domain.Role("owner"))
	var ve domain.ValidationErrors
	assert.ErrorAs(t, err, &ve)

	u, err = a.RemoveRole(ctx, admin, target.User.ID)
	require.NoError(t, err)
	assert.False(t, u.Role.IsSome())

	_, err = a.SetRole(ctx, admin, "missing", domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a := app.NewAccountService(st, fakeSessions{})

	require.NoError(t, a.EnsureAdmin(ctx, "", ""))
	require.NoError(t, a.EnsureAdmin(ctx, "Root@Example.com", "bootstrap-pass"))
	require.NoError(t, a.EnsureAdmin(ctx, "root@example.com", "other-pass"))

	s, err := a.SignIn(ctx, app.Credentials{Email: "root@example.com", Password: "bootstrap-pass"})
	require.NoError(t, err)
	r, ok := s.User.Role.Get()
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, r)

	me, err := a.Me(ctx, domain.Authenticated(domain.Principal{UserID: s.User.ID}))
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", me.Email)

	_, err = a.Me(ctx, domain.Anonymous())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a := app.NewAccountService(st, fakeSessions{})
	s, err := a.SignUp(ctx, app.Credentials{Email: "boss@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, a.EnsureAdmin(ctx, "boss@example.com", "ignored-pass"))
	u, err := st.GetUser(ctx, s.User.ID)
	require.NoError(t, err)
	assert.True(t, u.Role.IsSome())
}

func TestCurrent_ReflectsStoredRole(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a := app.NewAccountService(st, fakeSessions{})
	s, err := a.SignUp(ctx, app.Credentials{Email: "t@example.com", Password: "password1"})
	require.NoError(t, err)

	// a session minted while the user was still an admin
	stale := domain.Principal{UserID: s.User.ID, Email: s.User.Email, Role: domain.Some(domain.RoleAdmin)}
	cur, err := a.Current(ctx, stale)
	require.NoError(t, err)
	assert.False(t, cur.Role.IsSome())
	assert.False(t, domain.Authenticated(cur).IsAdmin())

	_, err = a.SetRole(ctx, admin, s.User.ID, domain.RoleAdmin)
	require.NoError(t, err)
	cur, err = a.Current(ctx, domain.Principal{UserID: s.User.ID})
	require.NoError(t, err)
	assert.True(t, domain.Authenticated(cur).IsAdmin())

	_, err = a.Current(ctx, domain.Principal{UserID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
