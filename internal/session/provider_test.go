package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sace/internal/errdefs"
	"sace/internal/model"
	"sace/internal/session"
	"sace/internal/session/mocks"
)

func setup(t *testing.T) (*session.Provider, *session.MemoryStore, *mocks.MockAuthAPI) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := session.NewMemoryStore()
	api := mocks.NewMockAuthAPI(ctrl)
	return session.NewProvider(store, api, nil), store, api
}

func student() model.User {
	return model.User{ID: 7, Email: "ana@uni.edu", FirstName: "Ana", Role: model.RoleStudent}
}

func persist(t *testing.T, store session.Store, token string, user model.User) {
	t.Helper()
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), session.KeyToken, []byte(token)))
	require.NoError(t, store.Set(context.Background(), session.KeyUser, raw))
}

func assertEmpty(t *testing.T, p *session.Provider, store session.Store) {
	t.Helper()
	assert.False(t, p.IsAuthenticated())
	_, ok := p.CurrentUser()
	assert.False(t, ok)
	_, ok, err := store.Get(context.Background(), session.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.Get(context.Background(), session.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ── Init ────────────────────────────────────────────────────────────

func TestInit(t *testing.T) {
	t.Run("NothingPersisted", func(t *testing.T) {
		p, _, _ := setup(t)
		require.NoError(t, p.Init(context.Background()))
		assert.False(t, p.IsAuthenticated())
	})

	t.Run("RevalidatesAndRefreshesUser", func(t *testing.T) {
		p, store, api := setup(t)
		persist(t, store, "tok", student())

		fresh := student()
		fresh.FirstName = "Anabel"
		api.EXPECT().GetUserByEmail(gomock.Any(), "ana@uni.edu").Return(&fresh, nil)

		require.NoError(t, p.Init(context.Background()))
		assert.True(t, p.IsAuthenticated())
		assert.Equal(t, "tok", p.Token())
		user, ok := p.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, "Anabel", user.FirstName)

		raw, ok, err := store.Get(context.Background(), session.KeyUser)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, string(raw), "Anabel")
	})

	t.Run("RevalidationFailureDiscardsSession", func(t *testing.T) {
		p, store, api := setup(t)
		persist(t, store, "tok", student())
		api.EXPECT().GetUserByEmail(gomock.Any(), "ana@uni.edu").
			Return(nil, &errdefs.APIError{Status: http.StatusUnauthorized})

		require.NoError(t, p.Init(context.Background()))
		assertEmpty(t, p, store)
	})

	t.Run("UnreadableUserDiscardsSession", func(t *testing.T) {
		p, store, _ := setup(t)
		require.NoError(t, store.Set(context.Background(), session.KeyToken, []byte("tok")))
		require.NoError(t, store.Set(context.Background(), session.KeyUser, []byte("{not json")))

		require.NoError(t, p.Init(context.Background()))
		assertEmpty(t, p, store)
	})

	t.Run("TokenWithoutUserIsIgnored", func(t *testing.T) {
		p, store, _ := setup(t)
		require.NoError(t, store.Set(context.Background(), session.KeyToken, []byte("tok")))

		require.NoError(t, p.Init(context.Background()))
		assert.False(t, p.IsAuthenticated())
	})
}

// ── Login ───────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	in := model.LoginInput{Email: "ana@uni.edu", Password: "secret1"}

	t.Run("Success", func(t *testing.T) {
		p, store, api := setup(t)
		api.EXPECT().Login(gomock.Any(), in).
			Return(&model.AuthResponse{Token: "jwt", Type: "Bearer", User: student()}, nil)

		require.NoError(t, p.Login(context.Background(), in))
		assert.True(t, p.IsAuthenticated())
		assert.True(t, p.HasRole(model.RoleStudent))
		assert.False(t, p.HasRole(model.RoleInstructor))

		raw, ok, err := store.Get(context.Background(), session.KeyToken)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "jwt", string(raw))
	})

	t.Run("ServerMessageIsSurfaced", func(t *testing.T) {
		p, store, api := setup(t)
		api.EXPECT().Login(gomock.Any(), in).
			Return(nil, &errdefs.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"})

		err := p.Login(context.Background(), in)
		require.Error(t, err)
		assert.Equal(t, "Invalid credentials", err.Error())
		assert.ErrorIs(t, err, errdefs.ErrUnauthenticated)
		assertEmpty(t, p, store)
	})

	t.Run("FallbackMessage", func(t *testing.T) {
		p, _, api := setup(t)
		api.EXPECT().Login(gomock.Any(), in).Return(nil, errdefs.ErrTransport)

		err := p.Login(context.Background(), in)
		require.Error(t, err)
		assert.Equal(t, "Login failed", err.Error())
	})

	t.Run("FailureKeepsExistingSession", func(t *testing.T) {
		p, store, api := setup(t)
		api.EXPECT().Login(gomock.Any(), in).
			Return(&model.AuthResponse{Token: "first", User: student()}, nil)
		require.NoError(t, p.Login(context.Background(), in))

		api.EXPECT().Login(gomock.Any(), in).Return(nil, errdefs.ErrTransport)
		require.Error(t, p.Login(context.Background(), in))

		assert.Equal(t, "first", p.Token())
		raw, _, _ := store.Get(context.Background(), session.KeyToken)
		assert.Equal(t, "first", string(raw))
	})

	t.Run("InvalidInputNeverCallsBackend", func(t *testing.T) {
		p, _, _ := setup(t)
		err := p.Login(context.Background(), model.LoginInput{Email: "not-an-email", Password: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, errdefs.ErrValidation)
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("EmptyTokenIsFailure", func(t *testing.T) {
		p, store, api := setup(t)
		api.EXPECT().Login(gomock.Any(), in).Return(&model.AuthResponse{User: student()}, nil)

		err := p.Login(context.Background(), in)
		require.Error(t, err)
		assert.Equal(t, "Login failed", err.Error())
		assertEmpty(t, p, store)
	})
}

// ── Register ────────────────────────────────────────────────────────

func TestRegister(t *testing.T) {
	in := model.SignupInput{Name: "Ana", Email: "ana@uni.edu", Password: "secret1", PasswordConfirm: "secret1"}

	t.Run("Success", func(t *testing.T) {
		p, _, api := setup(t)
		u := student()
		u.Role = model.RoleUnassigned
		api.EXPECT().Signup(gomock.Any(), in).Return(&model.AuthResponse{Token: "jwt", User: u}, nil)

		require.NoError(t, p.Register(context.Background(), in))
		role, ok := p.CurrentRole()
		require.True(t, ok)
		assert.Equal(t, model.RoleUnassigned, role)
	})

	t.Run("PasswordMismatch", func(t *testing.T) {
		p, _, _ := setup(t)
		bad := in
		bad.PasswordConfirm = "other12"
		err := p.Register(context.Background(), bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password")
	})

	t.Run("ShortPassword", func(t *testing.T) {
		p, _, _ := setup(t)
		bad := in
		bad.Password, bad.PasswordConfirm = "abc", "abc"
		err := p.Register(context.Background(), bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6")
	})

	t.Run("Conflict", func(t *testing.T) {
		p, _, api := setup(t)
		api.EXPECT().Signup(gomock.Any(), in).
			Return(nil, &errdefs.APIError{Status: http.StatusConflict, Message: "Email is already in use"})

		err := p.Register(context.Background(), in)
		require.Error(t, err)
		assert.Equal(t, "Email is already in use", err.Error())
		assert.ErrorIs(t, err, errdefs.ErrConflict)
	})
}

// ── LoginWithGoogle ─────────────────────────────────────────────────

func TestLoginWithGoogle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		p, _, api := setup(t)
		u := student()
		u.Provider = model.AuthProviderGoogle
		api.EXPECT().GoogleLogin(gomock.Any(), model.GoogleLoginInput{Token: "g-token"}).
			Return(&model.AuthResponse{Token: "jwt", User: u}, nil)

		require.NoError(t, p.LoginWithGoogle(context.Background(), " g-token "))
		assert.True(t, p.IsAuthenticated())
	})

	t.Run("Failure", func(t *testing.T) {
		p, _, api := setup(t)
		api.EXPECT().GoogleLogin(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		err := p.LoginWithGoogle(context.Background(), "g-token")
		require.Error(t, err)
		assert.Equal(t, "Google login failed", err.Error())
	})

	t.Run("EmptyToken", func(t *testing.T) {
		p, _, _ := setup(t)
		err := p.LoginWithGoogle(context.Background(), "  ")
		assert.ErrorIs(t, err, errdefs.ErrValidation)
	})
}

// ── Logout ──────────────────────────────────────────────────────────

func TestLogout(t *testing.T) {
	signIn := func(t *testing.T, p *session.Provider, api *mocks.MockAuthAPI) {
		api.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(&model.AuthResponse{Token: "jwt", User: student()}, nil)
		require.NoError(t, p.Login(context.Background(), model.LoginInput{Email: "ana@uni.edu", Password: "pw"}))
	}

	t.Run("Success", func(t *testing.T) {
		p, store, api := setup(t)
		signIn(t, p, api)
		api.EXPECT().Logout(gomock.Any()).Return(nil)

		require.NoError(t, p.Logout(context.Background()))
		assertEmpty(t, p, store)
	})

	t.Run("BackendFailureStillClears", func(t *testing.T) {
		p, store, api := setup(t)
		signIn(t, p, api)
		api.EXPECT().Logout(gomock.Any()).Return(errdefs.ErrTransport)

		require.NoError(t, p.Logout(context.Background()))
		assertEmpty(t, p, store)
	})

	t.Run("AnonymousSkipsBackend", func(t *testing.T) {
		p, store, _ := setup(t)
		require.NoError(t, p.Logout(context.Background()))
		assertEmpty(t, p, store)
	})
}

// ── Invalidate / UpdateUser ─────────────────────────────────────────

func TestInvalidate(t *testing.T) {
	p, store, api := setup(t)
	api.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(&model.AuthResponse{Token: "jwt", User: student()}, nil)
	require.NoError(t, p.Login(context.Background(), model.LoginInput{Email: "ana@uni.edu", Password: "pw"}))

	p.Invalidate(context.Background())
	assertEmpty(t, p, store)
	assert.Empty(t, p.Token())
}

func TestUpdateUser(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		p, _, _ := setup(t)
		assert.ErrorIs(t, p.UpdateUser(context.Background(), student()), errdefs.ErrUnauthenticated)
	})

	t.Run("Persists", func(t *testing.T) {
		p, store, api := setup(t)
		api.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(&model.AuthResponse{Token: "jwt", User: student()}, nil)
		require.NoError(t, p.Login(context.Background(), model.LoginInput{Email: "ana@uni.edu", Password: "pw"}))

		updated := student()
		updated.LastName = "Lopez"
		require.NoError(t, p.UpdateUser(context.Background(), updated))

		user, _ := p.CurrentUser()
		assert.Equal(t, "Lopez", user.LastName)
		raw, _, _ := store.Get(context.Background(), session.KeyUser)
		assert.Contains(t, string(raw), "Lopez")
	})
}
