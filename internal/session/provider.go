// Package session owns the client's identity: the bearer token, the cached
// user record and their persistence between runs.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"sace/internal/errdefs"
	"sace/internal/logging"
	"sace/internal/model"
)

const (
	fallbackLogin       = "Login failed"
	fallbackRegister    = "Registration failed"
	fallbackGoogleLogin = "Google login failed"
)

//go:generate mockgen -source=provider.go -destination=mocks/auth_api_mock.go -package=mocks

// AuthAPI is the backend surface the provider calls.
type AuthAPI interface {
	Login(ctx context.Context, in model.LoginInput) (*model.AuthResponse, error)
	Signup(ctx context.Context, in model.SignupInput) (*model.AuthResponse, error)
	GoogleLogin(ctx context.Context, in model.GoogleLoginInput) (*model.AuthResponse, error)
	Logout(ctx context.Context) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type Provider struct {
	store  Store
	api    AuthAPI
	logger *logging.Logger

	mu    sync.RWMutex
	token string
	user  *model.User
}

func NewProvider(store Store, api AuthAPI, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Provider{
		store:  store,
		api:    api,
		logger: logger,
	}
}

// Init restores a persisted session and revalidates it against the backend.
// A session that cannot be revalidated is discarded, leaving the provider
// unauthenticated. The returned error reports storage failures only.
func (p *Provider) Init(ctx context.Context) error {
	token, user, err := p.load(ctx)
	if err != nil {
		return err
	}
	if token == "" || user == nil {
		return nil
	}

	fresh, err := p.api.GetUserByEmail(ctx, user.Email)
	if err != nil {
		p.logger.Info(ctx, "discarding persisted session", zap.String("email", user.Email), zap.Error(err))
		if clearErr := p.clear(ctx); clearErr != nil {
			return clearErr
		}
		return nil
	}

	if err := p.persistUser(ctx, fresh); err != nil {
		return err
	}
	p.mu.Lock()
	p.token = token
	p.user = fresh
	p.mu.Unlock()
	return nil
}

func (p *Provider) load(ctx context.Context) (string, *model.User, error) {
	rawToken, okToken, err := p.store.Get(ctx, KeyToken)
	if err != nil {
		return "", nil, fmt.Errorf("session: read token: %w", err)
	}
	rawUser, okUser, err := p.store.Get(ctx, KeyUser)
	if err != nil {
		return "", nil, fmt.Errorf("session: read user: %w", err)
	}
	if !okToken || !okUser || len(rawToken) == 0 {
		return "", nil, nil
	}

	var user model.User
	if err := json.Unmarshal(rawUser, &user); err != nil || user.Email == "" {
		p.logger.Warn(ctx, "persisted user is unreadable, clearing session", zap.Error(err))
		return "", nil, p.clear(ctx)
	}
	return string(rawToken), &user, nil
}

func (p *Provider) Login(ctx context.Context, in model.LoginInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := model.Validate(in); err != nil {
		return errdefs.Describe(err, fallbackLogin)
	}
	resp, err := p.api.Login(ctx, in)
	return p.establish(ctx, resp, err, fallbackLogin)
}

// Register creates a LOCAL account and signs it in.
func (p *Provider) Register(ctx context.Context, in model.SignupInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := model.Validate(in); err != nil {
		return errdefs.Describe(err, fallbackRegister)
	}
	resp, err := p.api.Signup(ctx, in)
	return p.establish(ctx, resp, err, fallbackRegister)
}

// LoginWithGoogle exchanges a token obtained from the external identity
// provider for a backend session.
func (p *Provider) LoginWithGoogle(ctx context.Context, externalToken string) error {
	in := model.GoogleLoginInput{Token: strings.TrimSpace(externalToken)}
	if err := model.Validate(in); err != nil {
		return errdefs.Describe(err, fallbackGoogleLogin)
	}
	resp, err := p.api.GoogleLogin(ctx, in)
	return p.establish(ctx, resp, err, fallbackGoogleLogin)
}

func (p *Provider) establish(ctx context.Context, resp *model.AuthResponse, err error, fallback string) error {
	if err == nil && (resp == nil || resp.Token == "") {
		err = fmt.Errorf("%w: response carried no token", errdefs.ErrTransport)
	}
	if err != nil {
		return errdefs.Describe(err, fallback)
	}

	rawUser, err := json.Marshal(resp.User)
	if err != nil {
		return &errdefs.UserError{Message: fallback, Err: err}
	}
	if err := p.store.Set(ctx, KeyToken, []byte(resp.Token)); err != nil {
		return &errdefs.UserError{Message: fallback, Err: fmt.Errorf("session: write token: %w", err)}
	}
	if err := p.store.Set(ctx, KeyUser, rawUser); err != nil {
		_ = p.store.Delete(ctx, KeyToken)
		return &errdefs.UserError{Message: fallback, Err: fmt.Errorf("session: write user: %w", err)}
	}

	user := resp.User
	p.mu.Lock()
	p.token = resp.Token
	p.user = &user
	p.mu.Unlock()

	p.logger.Info(ctx, "signed in", zap.String("email", user.Email), zap.String("role", user.Role.String()))
	return nil
}

// Logout notifies the backend and clears the session. A failed backend call
// never blocks the local logout.
func (p *Provider) Logout(ctx context.Context) error {
	if p.IsAuthenticated() {
		if err := p.api.Logout(ctx); err != nil {
			p.logger.Warn(ctx, "backend logout failed", zap.Error(err))
		}
	}
	return p.clear(ctx)
}

// Invalidate drops the session without contacting the backend. It is what
// the transport calls after a 401.
func (p *Provider) Invalidate(ctx context.Context) {
	if err := p.clear(ctx); err != nil {
		p.logger.Error(ctx, "failed to clear session", zap.Error(err))
	}
}

func (p *Provider) clear(ctx context.Context) error {
	p.mu.Lock()
	p.token = ""
	p.user = nil
	p.mu.Unlock()

	if err := p.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// UpdateUser replaces the cached user after a profile change.
func (p *Provider) UpdateUser(ctx context.Context, user model.User) error {
	if !p.IsAuthenticated() {
		return errdefs.ErrUnauthenticated
	}
	if err := p.persistUser(ctx, &user); err != nil {
		return err
	}
	p.mu.Lock()
	p.user = &user
	p.mu.Unlock()
	return nil
}

func (p *Provider) persistUser(ctx context.Context, user *model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, KeyUser, raw); err != nil {
		return fmt.Errorf("session: write user: %w", err)
	}
	return nil
}

func (p *Provider) CurrentUser() (model.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return model.User{}, false
	}
	return *p.user, true
}

func (p *Provider) IsAuthenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token != "" && p.user != nil
}

func (p *Provider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// CurrentRole returns the role of the cached user.
func (p *Provider) CurrentRole() (model.Role, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return "", false
	}
	return p.user.Role, true
}

func (p *Provider) HasRole(role model.Role) bool {
	have, ok := p.CurrentRole()
	return ok && have == role
}

// Close releases the underlying store when it holds resources.
func (p *Provider) Close() error {
	if c, ok := p.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
