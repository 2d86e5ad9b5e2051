package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"golang.org/x/crypto/bcrypt"

	"sace/internal/errdefs"
	"sace/internal/logging"
	"sace/internal/model"
)

const defaultMaxUploadBytes = 10 << 20

type Deps struct {
	Repo      *Repository
	Tokens    *TokenIssuer
	Google    GoogleVerifier
	Publisher Publisher
	Metrics   *Metrics
	Logger    *logging.Logger
}

type Options struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	MaxUploadBytes     int64
	// SignupRole is given to accounts created by signup or Google login.
	SignupRole model.Role
}

// Server is a small backend speaking the SACE HTTP contract, used for local
// development and end-to-end tests of the client.
type Server struct {
	repo      *Repository
	tokens    *TokenIssuer
	google    GoogleVerifier
	publisher Publisher
	metrics   *Metrics
	logger    *logging.Logger
	opts      Options
}

func New(deps Deps, opts Options) (*Server, error) {
	if deps.Repo == nil || deps.Tokens == nil {
		return nil, errors.New("devserver: repository and token issuer are required")
	}
	if opts.SignupRole == "" {
		opts.SignupRole = model.RoleUnassigned
	}
	if !opts.SignupRole.IsValid() {
		return nil, fmt.Errorf("devserver: invalid signup role %q", opts.SignupRole)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		repo:      deps.Repo,
		tokens:    deps.Tokens,
		google:    deps.Google,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		opts:      opts,
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	if s.google == nil {
		s.google = NewGoogleTokenDecoder("")
	}
	if s.publisher == nil {
		s.publisher = NewLogPublisher(s.logger)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	allowed := s.opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-Id"},
		ExposedHeaders:   []string{"X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(NewLoggingMiddleware(s.logger, s.metrics))
	if s.opts.RateLimitPerMinute > 0 {
		r.Use(httprate.Limit(s.opts.RateLimitPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	authenticated := NewAuthMiddleware(s.tokens)
	instructor := requireRole(model.RoleInstructor)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", s.signup)
		r.Post("/login", s.login)
		r.Post("/google", s.googleLogin)
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/logout", s.logout)
			r.Get("/user/{email}", s.userByEmail)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/me", s.me)
		r.Put("/me", s.updateMe)
		r.Delete("/me", s.deleteMe)
		r.Put("/me/password", s.changePassword)
		r.Get("/{id}", s.userByID)
	})

	r.Route("/submissions", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", s.listOwn)
		r.Post("/upload", s.upload)
		r.Post("/link", s.submitLink)
		r.With(instructor).Get("/all", s.listAll)
		r.Get("/{id}", s.getSubmission)
		r.Delete("/{id}", s.deleteSubmission)
		r.With(instructor).Patch("/{id}/status", s.updateStatus)
	})

	return r
}

// SeedInstructor creates an instructor account unless the email is taken.
func SeedInstructor(repo *Repository, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := repo.UserByEmail(email); err == nil {
		return false, nil
	} else if !errors.Is(err, errdefs.ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	u := &userRecord{
		User: model.User{
			Email:     email,
			FirstName: "Instructor",
			Role:      model.RoleInstructor,
			Provider:  model.AuthProviderLocal,
		},
		PasswordHash: hash,
	}
	if err := repo.CreateUser(u); err != nil {
		return false, err
	}
	return true, nil
}
