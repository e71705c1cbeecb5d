package service

import (
	"context"
	"testing"
	"time"

	"go-inventory-orders/internal/model"
	"go-inventory-orders/pkg/jwt"

	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*memStore, UserService, AuthService) {
	store := newMemStore()
	users := memUserRepo{store: store}
	return store, NewUserService(users, nil), NewAuthService(users, jwt.NewManager("test-secret", time.Hour), nil)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	_, users, auth := newAuthFixture()

	u, err := users.Register(ctx, &RegisterRequest{UserName: " carol ", Password: "Pa$s1"})
	require.NoError(t, err)
	require.Equal(t, "carol", u.UserName)
	require.Equal(t, model.RoleUser, u.Role)
	require.NotEqual(t, "Pa$s1", u.Password)

	_, err = users.Register(ctx, &RegisterRequest{UserName: "carol", Password: "Pa$s1"})
	require.ErrorIs(t, err, ErrUserNameExists)

	_, err = users.Register(ctx, &RegisterRequest{UserName: "dave", Password: "password"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = auth.Login(ctx, "carol", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody", "Pa$s1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := auth.Login(ctx, "carol", "Pa$s1")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	id, err := auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, id.UserID)
	require.Equal(t, "carol", id.UserName)
	require.False(t, id.IsAdmin())
}

func TestSecondLoginRevokesFirstToken(t *testing.T) {
	ctx := context.Background()
	_, users, auth := newAuthFixture()
	_, err := users.Register(ctx, &RegisterRequest{UserName: "carol", Password: "Pa$s1"})
	require.NoError(t, err)

	first, err := auth.Login(ctx, "carol", "Pa$s1")
	require.NoError(t, err)
	second, err := auth.Login(ctx, "carol", "Pa$s1")
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, first.Token)
	require.ErrorIs(t, err, ErrSessionRevoked)
	_, err = auth.Authenticate(ctx, second.Token)
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	_, users, auth := newAuthFixture()
	u, err := users.Register(ctx, &RegisterRequest{UserName: "carol", Password: "Pa$s1"})
	require.NoError(t, err)
	login, err := auth.Login(ctx, "carol", "Pa$s1")
	require.NoError(t, err)
	caller := Identity{UserID: u.ID, UserName: u.UserName, Role: u.Role}

	require.ErrorIs(t, auth.ChangePassword(ctx, caller, "nope", "N3w!pass"), ErrWrongPassword)
	require.ErrorIs(t, auth.ChangePassword(ctx, caller, "Pa$s1", "weak"), ErrValidation)
	require.NoError(t, auth.ChangePassword(ctx, caller, "Pa$s1", "N3w!pass"))

	_, err = auth.Authenticate(ctx, login.Token)
	require.ErrorIs(t, err, ErrSessionRevoked)
	_, err = auth.Login(ctx, "carol", "Pa$s1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "carol", "N3w!pass")
	require.NoError(t, err)
}

func TestEnsureAdminSeedsSystemAccount(t *testing.T) {
	ctx := context.Background()
	store, users, auth := newAuthFixture()

	admin, err := users.EnsureAdmin(ctx, "admin", "Admin@123")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin())
	require.True(t, admin.IsSystemAccount)

	again, err := users.EnsureAdmin(ctx, "admin", "ignored")
	require.NoError(t, err)
	require.Equal(t, admin.ID, again.ID)
	require.Len(t, store.users, 1)

	res, err := auth.Login(ctx, "admin", "Admin@123")
	require.NoError(t, err)
	id, err := auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.True(t, id.IsAdmin())
	require.True(t, id.IsSystemAccount)

	_, err = users.Register(ctx, &RegisterRequest{UserName: "carol", Password: "Pa$s1"})
	require.NoError(t, err)

	_, err = users.GetAllUsers(ctx, Identity{Role: model.RoleUser})
	require.ErrorIs(t, err, ErrForbidden)
	list, err := users.GetAllUsers(ctx, *id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "carol", list[0].UserName)
}
