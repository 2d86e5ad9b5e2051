// Package guard decides whether a bearer token may open a protected view.
//
// Decisions are made from the token's own claims, without contacting the
// backend. Anything that cannot be decoded, has no expiry or has expired is
// treated as unauthenticated.
package guard

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sace/internal/model"
)

// Claims mirrors what the backend embeds in its tokens.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Access is the outcome of a guard check. All four fields are independent.
type Access struct {
	IsAuthenticated bool
	HasRole         bool
	Role            model.Role
	UserID          string
}

var denied = Access{}

type Guard struct {
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Guard)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

func New(opts ...Option) *Guard {
	g := &Guard{
		now:    time.Now,
		parser: jwt.NewParser(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check authenticates token without requiring a role. An authenticated token
// always has HasRole set.
func (g *Guard) Check(token string) Access {
	claims, ok := g.decode(token)
	if !ok {
		return denied
	}
	role, _ := model.ParseRole(claims.Role)
	return Access{
		IsAuthenticated: true,
		HasRole:         true,
		Role:            role,
		UserID:          claims.Subject,
	}
}

// CheckRole authenticates token and compares its role claim with required.
// Roles are disjoint; there is no hierarchy and comparison is case-sensitive.
func (g *Guard) CheckRole(token string, required model.Role) Access {
	claims, ok := g.decode(token)
	if !ok {
		return denied
	}
	role, known := model.ParseRole(claims.Role)
	return Access{
		IsAuthenticated: true,
		HasRole:         known && matches(role, required),
		Role:            role,
		UserID:          claims.Subject,
	}
}

func (g *Guard) HasRole(token string, role model.Role) bool {
	return g.CheckRole(token, role).HasRole
}

func (g *Guard) Role(token string) (model.Role, bool) {
	a := g.Check(token)
	return a.Role, a.IsAuthenticated
}

func (g *Guard) UserID(token string) (string, bool) {
	a := g.Check(token)
	return a.UserID, a.IsAuthenticated
}

func matches(have, want model.Role) bool {
	switch want {
	case model.RoleStudent:
		return have == model.RoleStudent
	case model.RoleInstructor:
		return have == model.RoleInstructor
	case model.RoleUnassigned:
		return have == model.RoleUnassigned
	default:
		return false
	}
}

func (g *Guard) decode(token string) (*Claims, bool) {
	if token == "" {
		return nil, false
	}
	claims := &Claims{}
	if _, _, err := g.parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(g.now()) {
		return nil, false
	}
	return claims, true
}
