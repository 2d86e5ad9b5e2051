package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"sace/internal/errdefs"
	"sace/internal/model"
)

var errWrongPassword = &errdefs.UserError{Message: "Current password is incorrect", Err: errdefs.ErrValidation}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := callerID(r)
	u, err := s.repo.UserByID(id)
	if err != nil {
		fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) userByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	u, err := s.repo.UserByID(id)
	if err != nil {
		fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var in model.UpdateProfileInput
	if err := decodeJSON(r, &in); err != nil {
		fail(w, r, err, "Failed to update profile")
		return
	}
	if in.Email != nil {
		trimmed := strings.TrimSpace(*in.Email)
		in.Email = &trimmed
	}
	if err := model.Validate(in); err != nil {
		fail(w, r, err, "Failed to update profile")
		return
	}

	id, _ := callerID(r)
	u, err := s.repo.UpdateUser(id, func(u *userRecord) error {
		if in.FirstName != nil {
			u.FirstName = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			u.LastName = strings.TrimSpace(*in.LastName)
		}
		if in.Email != nil && *in.Email != "" {
			u.Email = *in.Email
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errdefs.ErrConflict) {
			err = &errdefs.UserError{Message: "Email already in use", Err: err}
		}
		fail(w, r, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var in model.ChangePasswordInput
	if err := decodeJSON(r, &in); err != nil {
		fail(w, r, err, "Failed to change password")
		return
	}
	if err := model.Validate(in); err != nil {
		if len(in.NewPassword) > 0 && len(in.NewPassword) < 6 {
			err = &errdefs.UserError{Message: "New password must be at least 6 characters long", Err: err}
		}
		fail(w, r, err, "Failed to change password")
		return
	}

	id, _ := callerID(r)
	_, err := s.repo.UpdateUser(id, func(u *userRecord) error {
		if len(u.PasswordHash) == 0 || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.CurrentPassword)) != nil {
			return errWrongPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		return nil
	})
	if err != nil {
		fail(w, r, err, "Failed to change password")
		return
	}
	writeMessage(w, "Password changed successfully")
}

func (s *Server) deleteMe(w http.ResponseWriter, r *http.Request) {
	id, _ := callerID(r)
	if err := s.repo.DeleteUser(id); err != nil {
		fail(w, r, err, "Failed to delete account")
		return
	}
	writeMessage(w, "User account deleted successfully")
}
