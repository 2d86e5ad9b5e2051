package devserver

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sace/internal/errdefs"
	"sace/internal/model"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := OpenRepository(filepath.Join(t.TempDir(), "nested", "sace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	clock := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return repo
}

func newUser(t *testing.T, repo *Repository, email string) *userRecord {
	t.Helper()
	u := &userRecord{User: model.User{Email: email, Role: model.RoleStudent}}
	require.NoError(t, repo.CreateUser(u))
	return u
}

func newSubmission(t *testing.T, repo *Repository, owner *userRecord, name string) *submissionRecord {
	t.Helper()
	s := &submissionRecord{
		Submission: model.Submission{FileName: name, FileType: "PDF", Status: model.SubmissionStatusSubmitted, OwnerEmail: owner.Email},
		OwnerID:    owner.ID,
	}
	require.NoError(t, repo.CreateSubmission(s))
	return s
}

// ── Users ───────────────────────────────────────────────────────────

func TestRepositoryUsers(t *testing.T) {
	repo := setupRepo(t)

	t.Run("CreateAssignsIDs", func(t *testing.T) {
		a := newUser(t, repo, "a@uni.edu")
		b := newUser(t, repo, "b@uni.edu")
		assert.Equal(t, int64(1), a.ID)
		assert.Equal(t, int64(2), b.ID)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("EmailIsUniqueIgnoringCase", func(t *testing.T) {
		err := repo.CreateUser(&userRecord{User: model.User{Email: "A@UNI.EDU"}})
		assert.ErrorIs(t, err, errdefs.ErrConflict)
	})

	t.Run("Lookups", func(t *testing.T) {
		u, err := repo.UserByEmail(" A@uni.edu ")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)

		u, err = repo.UserByID(2)
		require.NoError(t, err)
		assert.Equal(t, "b@uni.edu", u.Email)

		_, err = repo.UserByID(99)
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
		_, err = repo.UserByEmail("nobody@uni.edu")
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})

	t.Run("GoogleID", func(t *testing.T) {
		u := &userRecord{User: model.User{Email: "g@uni.edu"}, GoogleID: "google-123"}
		require.NoError(t, repo.CreateUser(u))

		got, err := repo.UserByGoogleID("google-123")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = repo.UserByGoogleID("other")
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})
}

func TestRepositoryUpdateUser(t *testing.T) {
	repo := setupRepo(t)
	a := newUser(t, repo, "a@uni.edu")
	newUser(t, repo, "b@uni.edu")
	sub := newSubmission(t, repo, a, "srs.pdf")

	t.Run("EmailChangeMovesIndexAndSubmissions", func(t *testing.T) {
		u, err := repo.UpdateUser(a.ID, func(u *userRecord) error {
			u.Email = "new@uni.edu"
			u.FirstName = "Ana"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Ana", u.FirstName)

		_, err = repo.UserByEmail("a@uni.edu")
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
		got, err := repo.UserByEmail("new@uni.edu")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)

		s, err := repo.Submission(sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "new@uni.edu", s.OwnerEmail)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		_, err := repo.UpdateUser(a.ID, func(u *userRecord) error {
			u.Email = "b@uni.edu"
			u.FirstName = "Changed"
			return nil
		})
		assert.ErrorIs(t, err, errdefs.ErrConflict)

		got, err := repo.UserByID(a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.FirstName)
	})

	t.Run("CallbackErrorAborts", func(t *testing.T) {
		_, err := repo.UpdateUser(a.ID, func(u *userRecord) error {
			u.FirstName = "Changed"
			return errdefs.ErrValidation
		})
		assert.ErrorIs(t, err, errdefs.ErrValidation)

		got, err := repo.UserByID(a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.FirstName)
	})
}

func TestRepositoryDeleteUser(t *testing.T) {
	repo := setupRepo(t)
	a := newUser(t, repo, "a@uni.edu")
	b := newUser(t, repo, "b@uni.edu")
	newSubmission(t, repo, a, "one.pdf")
	newSubmission(t, repo, a, "two.pdf")
	kept := newSubmission(t, repo, b, "three.pdf")

	require.NoError(t, repo.DeleteUser(a.ID))

	_, err := repo.UserByEmail("a@uni.edu")
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	all, err := repo.ListSubmissions(0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)

	assert.ErrorIs(t, repo.DeleteUser(a.ID), errdefs.ErrNotFound)
}

// ── Submissions ─────────────────────────────────────────────────────

func TestRepositorySubmissions(t *testing.T) {
	repo := setupRepo(t)
	a := newUser(t, repo, "a@uni.edu")
	b := newUser(t, repo, "b@uni.edu")
	first := newSubmission(t, repo, a, "first.pdf")
	second := newSubmission(t, repo, b, "second.pdf")
	third := newSubmission(t, repo, a, "third.pdf")

	t.Run("ListNewestFirst", func(t *testing.T) {
		all, err := repo.ListSubmissions(0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("ListByOwner", func(t *testing.T) {
		own, err := repo.ListSubmissions(a.ID)
		require.NoError(t, err)
		require.Len(t, own, 2)
		assert.Equal(t, third.ID, own[0].ID)
		assert.Equal(t, first.ID, own[1].ID)
	})

	t.Run("Update", func(t *testing.T) {
		before, err := repo.Submission(first.ID)
		require.NoError(t, err)

		updated, err := repo.UpdateSubmission(first.ID, func(s *submissionRecord) error {
			s.Status = model.SubmissionStatusApproved
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, model.SubmissionStatusApproved, updated.Status)
		assert.True(t, updated.UpdatedAt.After(before.UpdatedAt.Time))
		assert.Equal(t, before.CreatedAt.Time, updated.CreatedAt.Time)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteSubmission(second.ID))
		_, err := repo.Submission(second.ID)
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteSubmission(second.ID), errdefs.ErrNotFound)
	})
}
