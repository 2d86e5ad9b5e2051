package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sace/internal/errdefs"
	"sace/internal/logging"
	"sace/internal/model"
)

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var in model.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		fail(w, r, err, "Registration failed")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := model.Validate(in); err != nil {
		fail(w, r, err, "Registration failed")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(w, r, err, "Registration failed")
		return
	}

	first, last := splitName(in.Name)
	u := &userRecord{
		User: model.User{
			Email:     in.Email,
			FirstName: first,
			LastName:  last,
			Role:      s.opts.SignupRole,
			Provider:  model.AuthProviderLocal,
		},
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(u); err != nil {
		if errors.Is(err, errdefs.ErrConflict) {
			err = &errdefs.UserError{Message: "Email already registered", Err: err}
		}
		fail(w, r, err, "Registration failed")
		return
	}

	s.issue(w, r, u.User)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in model.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		fail(w, r, err, "Login failed")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := model.Validate(in); err != nil {
		fail(w, r, err, "Login failed")
		return
	}

	u, err := s.repo.UserByEmail(in.Email)
	if err != nil && !errors.Is(err, errdefs.ErrNotFound) {
		fail(w, r, err, "Login failed")
		return
	}
	if u == nil || len(u.PasswordHash) == 0 ||
		bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.Password)) != nil {
		writeErrorJSON(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.issue(w, r, u.User)
}

func (s *Server) googleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in model.GoogleLoginInput
	if err := decodeJSON(r, &in); err != nil {
		fail(w, r, err, "Google login failed")
		return
	}
	if err := model.Validate(in); err != nil {
		fail(w, r, err, "Google login failed")
		return
	}

	identity, err := s.google.Verify(ctx, in.Token)
	if err != nil {
		writeErrorJSON(w, http.StatusUnauthorized, "Invalid Google token: "+err.Error())
		return
	}

	u, err := s.googleUser(identity)
	if err != nil {
		fail(w, r, err, "Google login failed")
		return
	}
	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Info(ctx, "google login", zap.Int64("user_id", u.ID))
	}

	s.issue(w, r, u.User)
}

// googleUser finds the account for identity, linking an existing local
// account by email or creating a new one.
func (s *Server) googleUser(identity GoogleIdentity) (*userRecord, error) {
	u, err := s.repo.UserByGoogleID(identity.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, errdefs.ErrNotFound) {
		return nil, err
	}

	existing, err := s.repo.UserByEmail(identity.Email)
	switch {
	case err == nil:
		return s.repo.UpdateUser(existing.ID, func(u *userRecord) error {
			u.GoogleID = identity.Subject
			if u.ProfileImageURL == nil && identity.Picture != "" {
				u.ProfileImageURL = &identity.Picture
			}
			return nil
		})
	case !errors.Is(err, errdefs.ErrNotFound):
		return nil, err
	}

	first, last := splitName(identity.Name)
	u = &userRecord{
		User: model.User{
			Email:     identity.Email,
			FirstName: first,
			LastName:  last,
			Role:      s.opts.SignupRole,
			Provider:  model.AuthProviderGoogle,
		},
		GoogleID: identity.Subject,
	}
	if identity.Picture != "" {
		u.ProfileImageURL = &identity.Picture
	}
	if err := s.repo.CreateUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Server) issue(w http.ResponseWriter, r *http.Request, u model.User) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		fail(w, r, err, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, model.AuthResponse{Token: token, Type: "Bearer", User: u})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, "Logged out successfully")
}

func (s *Server) userByEmail(w http.ResponseWriter, r *http.Request) {
	u, err := s.repo.UserByEmail(chi.URLParam(r, "email"))
	if err != nil {
		fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u.User)
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
