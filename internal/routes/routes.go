// Package routes maps navigable paths to views and decides, from the bearer
// token alone, whether a path renders or redirects.
package routes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sace/internal/errdefs"
	"sace/internal/guard"
	"sace/internal/model"
)

const (
	PathRoot        = "/"
	PathLogin       = "/login"
	PathRegister    = "/register"
	PathTerms       = "/terms"
	PathPrivacy     = "/privacy"
	PathDashboard   = "/dashboard"
	PathSubmissions = "/submissions"
	PathInstructor  = "/instructor"
	PathProfile     = "/profile"
)

type View string

const (
	ViewLogin               View = "login"
	ViewRegister            View = "register"
	ViewTerms               View = "terms"
	ViewPrivacy             View = "privacy"
	ViewInstructorDashboard View = "instructor-dashboard"
	ViewStudentDashboard    View = "student-dashboard"
	ViewDefaultDashboard    View = "default-dashboard"
	ViewSubmissions         View = "submissions"
	ViewInstructorReview    View = "instructor-review"
	ViewProfile             View = "profile"
)

type access int

const (
	public access = iota
	authenticated
	roleOnly
)

type route struct {
	view     View
	access   access
	role     model.Role
	redirect string
}

var table = map[string]route{
	PathRoot:        {redirect: PathLogin},
	PathLogin:       {view: ViewLogin, access: public},
	PathRegister:    {view: ViewRegister, access: public},
	PathTerms:       {view: ViewTerms, access: public},
	PathPrivacy:     {view: ViewPrivacy, access: public},
	PathDashboard:   {access: authenticated},
	PathSubmissions: {view: ViewSubmissions, access: roleOnly, role: model.RoleStudent},
	PathInstructor:  {view: ViewInstructorReview, access: roleOnly, role: model.RoleInstructor},
	PathProfile:     {view: ViewProfile, access: authenticated},
}

// Decision is either a view to render or a path to go to instead.
type Decision struct {
	View     View
	Redirect string
}

func (d Decision) IsRedirect() bool {
	return d.Redirect != ""
}

func render(v View) Decision     { return Decision{View: v} }
func redirect(p string) Decision { return Decision{Redirect: p} }

type Router struct {
	guard *guard.Guard
}

func NewRouter(g *guard.Guard) *Router {
	return &Router{guard: g}
}

// Resolve decides what path shows for token. Unknown paths are ErrNotFound.
func (r *Router) Resolve(path, token string) (Decision, error) {
	rt, ok := table[normalize(path)]
	if !ok {
		return Decision{}, fmt.Errorf("%w: route %q", errdefs.ErrNotFound, path)
	}
	if rt.redirect != "" {
		return redirect(rt.redirect), nil
	}

	switch rt.access {
	case public:
		return render(rt.view), nil
	case authenticated:
		a := r.guard.Check(token)
		if !a.IsAuthenticated {
			return redirect(PathLogin), nil
		}
		if rt.view == "" {
			return render(DashboardFor(a.Role)), nil
		}
		return render(rt.view), nil
	default:
		a := r.guard.CheckRole(token, rt.role)
		if !a.IsAuthenticated {
			return redirect(PathLogin), nil
		}
		if !a.HasRole {
			return redirect(PathDashboard), nil
		}
		return render(rt.view), nil
	}
}

const maxHops = 8

// Follow resolves path, following redirects, and returns the final path and
// the view rendered there.
func (r *Router) Follow(path, token string) (string, View, error) {
	current := normalize(path)
	for range maxHops {
		d, err := r.Resolve(current, token)
		if err != nil {
			return current, "", err
		}
		if !d.IsRedirect() {
			return current, d.View, nil
		}
		current = d.Redirect
	}
	return current, "", fmt.Errorf("routes: redirect loop at %q", path)
}

// DashboardFor picks the dashboard variant for role.
func DashboardFor(role model.Role) View {
	switch role {
	case model.RoleInstructor:
		return ViewInstructorDashboard
	case model.RoleStudent:
		return ViewStudentDashboard
	default:
		return ViewDefaultDashboard
	}
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// Navigator moves the user to another path.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// History is a Navigator that remembers where the user was sent.
type History struct {
	mu      sync.Mutex
	visited []string
}

func NewHistory(start string) *History {
	return &History{visited: []string{normalize(start)}}
}

func (h *History) Navigate(_ context.Context, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visited = append(h.visited, normalize(path))
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.visited) == 0 {
		return PathRoot
	}
	return h.visited[len(h.visited)-1]
}

func (h *History) Visited() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.visited...)
}
