package lifecycle_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sace/internal/errdefs"
	"sace/internal/lifecycle"
	"sace/internal/lifecycle/mocks"
	"sace/internal/model"
)

func setup(t *testing.T, opts ...lifecycle.Option) (*lifecycle.Controller, *mocks.MockSubmissionAPI, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	api := mocks.NewMockSubmissionAPI(ctrl)
	return lifecycle.NewController(api, opts...), api, ctrl
}

func sub(id int64, status model.SubmissionStatus) model.Submission {
	return model.Submission{ID: id, FileName: "srs.pdf", FileType: "PDF", Status: status}
}

func loaded(t *testing.T, c *lifecycle.Controller, api *mocks.MockSubmissionAPI, items ...model.Submission) {
	t.Helper()
	api.EXPECT().ListSubmissions(gomock.Any()).Return(items, nil)
	require.NoError(t, c.Refresh(context.Background()))
}

func ids(items []model.Submission) []int64 {
	out := make([]int64, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", size)), 0o600))
	return path
}

// ── Refresh ─────────────────────────────────────────────────────────

func TestRefresh(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c, api, _ := setup(t)
		assert.False(t, c.Loaded())
		loaded(t, c, api, sub(1, model.SubmissionStatusSubmitted), sub(2, model.SubmissionStatusApproved))

		assert.True(t, c.Loaded())
		assert.Equal(t, []int64{1, 2}, ids(c.Submissions()))
	})

	t.Run("FailureKeepsCache", func(t *testing.T) {
		c, api, _ := setup(t)
		loaded(t, c, api, sub(1, model.SubmissionStatusSubmitted))

		api.EXPECT().ListSubmissions(gomock.Any()).Return(nil, errdefs.ErrTransport)
		err := c.Refresh(context.Background())
		require.Error(t, err)
		assert.Equal(t, "Failed to load submissions", err.Error())
		assert.Equal(t, []int64{1}, ids(c.Submissions()))
	})

	t.Run("SnapshotIsACopy", func(t *testing.T) {
		c, api, _ := setup(t)
		loaded(t, c, api, sub(1, model.SubmissionStatusSubmitted))

		snap := c.Submissions()
		snap[0].Status = model.SubmissionStatusApproved
		assert.Equal(t, model.SubmissionStatusSubmitted, c.Submissions()[0].Status)
	})
}

// ── Upload ──────────────────────────────────────────────────────────

func TestUploadFile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c, api, _ := setup(t)
		path := writeFile(t, "srs.pdf", 128)
		created := sub(5, model.SubmissionStatusSubmitted)

		api.EXPECT().UploadSubmission(gomock.Any(), "srs.pdf", gomock.Any()).Return(&created, nil)
		api.EXPECT().ListSubmissions(gomock.Any()).Return([]model.Submission{created}, nil)

		got, err := c.UploadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.ID)
		assert.Equal(t, model.SubmissionStatusSubmitted, got.Status)
		assert.Equal(t, []int64{5}, ids(c.Submissions()))
	})

	t.Run("RefreshFailurePrependsCreated", func(t *testing.T) {
		c, api, _ := setup(t)
		loaded(t, c, api, sub(1, model.SubmissionStatusApproved))
		path := writeFile(t, "srs.docx", 64)
		created := sub(6, model.SubmissionStatusSubmitted)

		api.EXPECT().UploadSubmission(gomock.Any(), "srs.docx", gomock.Any()).Return(&created, nil)
		api.EXPECT().ListSubmissions(gomock.Any()).Return(nil, errdefs.ErrTransport)

		_, err := c.UploadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, []int64{6, 1}, ids(c.Submissions()))
	})

	t.Run("OversizedNeverSent", func(t *testing.T) {
		c, _, _ := setup(t, lifecycle.WithUploadPolicy(lifecycle.UploadPolicy{MaxBytes: 100}))
		path := writeFile(t, "srs.pdf", 101)

		_, err := c.UploadFile(context.Background(), path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errdefs.ErrValidation)
	})

	t.Run("WrongTypeNeverSent", func(t *testing.T) {
		c, _, _ := setup(t)
		path := writeFile(t, "notes.txt", 10)

		_, err := c.UploadFile(context.Background(), path)
		require.Error(t, err)
		assert.Equal(t, "only PDF and DOCX files are allowed", err.Error())
	})

	t.Run("MissingFile", func(t *testing.T) {
		c, _, _ := setup(t)
		_, err := c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
		assert.ErrorIs(t, err, errdefs.ErrValidation)
	})

	t.Run("ServerMessage", func(t *testing.T) {
		c, api, _ := setup(t)
		loaded(t, c, api, sub(1, model.SubmissionStatusSubmitted))
		path := writeFile(t, "srs.pdf", 10)

		api.EXPECT().UploadSubmission(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &errdefs.APIError{Status: http.StatusBadRequest, Message: "Could not extract text"})

		_, err := c.UploadFile(context.Background(), path)
		require.Error(t, err)
		assert.Equal(t, "Could not extract text", err.Error())
		assert.Equal(t, []int64{1}, ids(c.Submissions()))
	})

	t.Run("FallbackMessage", func(t *testing.T) {
		c, api, _ := setup(t)
		api.EXPECT().UploadSubmission(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errdefs.ErrTransport)

		_, err := c.Upload(context.Background(), "srs.pdf", 10, strings.NewReader("x"))
		require.Error(t, err)
		assert.Equal(t, "Upload failed", err.Error())
	})
}

// ── SubmitLink ──────────────────────────────────────────────────────

func TestSubmitLink(t *testing.T) {
	t.Run("BlankNeverSent", func(t *testing.T) {
		c, _, _ := setup(t)
		_, err := c.SubmitLink(context.Background(), "   ")
		assert.ErrorIs(t, err, errdefs.ErrValidation)
	})

	t.Run("TrimsAndRefreshes", func(t *testing.T) {
		c, api, _ := setup(t)
		link := "https://docs.google.com/document/d/abc"
		created := model.Submission{ID: 3, FileType: model.FileTypeLink, GoogleDriveLink: &link, Status: model.SubmissionStatusSubmitted}

		api.EXPECT().SubmitLink(gomock.Any(), link).Return(&created, nil)
		api.EXPECT().ListSubmissions(gomock.Any()).Return([]model.Submission{created}, nil)

		got, err := c.SubmitLink(context.Background(), "  "+link+" ")
		require.NoError(t, err)
		assert.True(t, got.IsLink())
	})

	t.Run("Rejected", func(t *testing.T) {
		c, api, _ := setup(t)
		api.EXPECT().SubmitLink(gomock.Any(), "https://example.com/x").
			Return(nil, &errdefs.APIError{Status: http.StatusBadRequest, Message: "Invalid Google Drive link"})

		_, err := c.SubmitLink(context.Background(), "https://example.com/x")
		require.Error(t, err)
		assert.Equal(t, "Invalid Google Drive link", err.Error())
		assert.ErrorIs(t, err, errdefs.ErrValidation)
	})
}

// ── Delete ──────────────────────────────────────────────────────────

func TestDelete(t *testing.T) {
	t.Run("RemovesExactlyThatID", func(t *testing.T) {
		c, api, ctrl := setup(t)
		loaded(t, c, api,
			sub(1, model.SubmissionStatusSubmitted),
			sub(2, model.SubmissionStatusApproved),
			sub(3, model.SubmissionStatusRejected),
		)
		confirm := mocks.NewMockConfirmer(ctrl)
		confirm.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true)
		api.EXPECT().DeleteSubmission(gomock.Any(), int64(2)).Return(nil)

		require.NoError(t, c.Delete(context.Background(), 2, confirm))
		assert.Equal(t, []int64{1, 3}, ids(c.Submissions()))
	})

	t.Run("DeclinedSendsNothing", func(t *testing.T) {
		c, api, ctrl := setup(t)
		loaded(t, c, api, sub(1, model.SubmissionStatusSubmitted))
		confirm := mocks.NewMockConfirmer(ctrl)
		confirm.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false)

		err := c.Delete(context.Background(), 1, confirm)
		assert.ErrorIs(t, err, errdefs.ErrCancelled)
		assert.Equal(t, []int64{1}, ids(c.Submissions()))
	})

	t.Run("FailureKeepsCache", func(t *testing.T) {
		c, api, _ := setup(t)
		loaded(t, c, api, sub(1, model.SubmissionStatusSubmitted))
		api.EXPECT().DeleteSubmission(gomock.Any(), int64(1)).
			Return(&errdefs.APIError{Status: http.StatusInternalServerError})

		err := c.Delete(context.Background(), 1, nil)
		require.Error(t, err)
		assert.Equal(t, "Failed to delete submission", err.Error())
		assert.Equal(t, []int64{1}, ids(c.Submissions()))
	})
}

// ── Resubmit / Versions ─────────────────────────────────────────────

func TestResubmit(t *testing.T) {
	t.Run("KeepsPrevious", func(t *testing.T) {
		c, api, _ := setup(t)
		old := sub(1, model.SubmissionStatusRejected)
		loaded(t, c, api, old)
		path := writeFile(t, "srs-v2.pdf", 10)
		created := sub(2, model.SubmissionStatusSubmitted)

		api.EXPECT().UploadSubmission(gomock.Any(), "srs-v2.pdf", gomock.Any()).Return(&created, nil)
		api.EXPECT().ListSubmissions(gomock.Any()).Return([]model.Submission{created, old}, nil)

		_, err := c.Resubmit(context.Background(), 1, path)
		require.NoError(t, err)
		got := c.Submissions()
		require.Len(t, got, 2)
		assert.Equal(t, model.SubmissionStatusRejected, got[1].Status)
	})

	t.Run("UnknownPrevious", func(t *testing.T) {
		c, _, _ := setup(t)
		_, err := c.Resubmit(context.Background(), 42, "whatever.pdf")
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})
}

func TestVersions(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := sub(10, model.SubmissionStatusRejected)
	a.CreatedAt = model.NewTimestamp(base)
	b := sub(11, model.SubmissionStatusSubmitted)
	b.CreatedAt = model.NewTimestamp(base.Add(time.Hour))
	c := sub(9, model.SubmissionStatusRejected)
	c.CreatedAt = model.NewTimestamp(base)

	got := lifecycle.Versions([]model.Submission{b, a, c})
	require.Len(t, got, 3)
	assert.Equal(t, []int64{9, 10, 11}, []int64{got[0].Submission.ID, got[1].Submission.ID, got[2].Submission.ID})
	assert.Equal(t, "Version 1", got[0].Label)
	assert.Equal(t, 3, got[2].Number)
}

// ── Filter ──────────────────────────────────────────────────────────

func TestFilter(t *testing.T) {
	items := []model.Submission{
		sub(1, model.SubmissionStatusSubmitted),
		sub(2, model.SubmissionStatusUnderReview),
		sub(3, model.SubmissionStatusApproved),
		sub(4, model.SubmissionStatusRejected),
		sub(5, "ARCHIVED"),
		sub(6, "declined"),
	}

	t.Run("Categories", func(t *testing.T) {
		assert.Equal(t, []int64{1, 2, 5}, ids(lifecycle.Filter(items, model.StatusCategoryPending)))
		assert.Equal(t, []int64{3}, ids(lifecycle.Filter(items, model.StatusCategoryApproved)))
		assert.Equal(t, []int64{4, 6}, ids(lifecycle.Filter(items, model.StatusCategoryDeclined)))
		assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(lifecycle.Filter(items, model.StatusCategoryAll)))
	})

	t.Run("PartitionIsExact", func(t *testing.T) {
		seen := map[int64]int{}
		for _, cat := range []model.StatusCategory{model.StatusCategoryPending, model.StatusCategoryApproved, model.StatusCategoryDeclined} {
			for _, s := range lifecycle.Filter(items, cat) {
				seen[s.ID]++
			}
		}
		assert.Len(t, seen, len(items))
		for id, n := range seen {
			assert.Equal(t, 1, n, "submission %d", id)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first := lifecycle.Filter(items, model.StatusCategoryPending)
		for range 5 {
			assert.Equal(t, first, lifecycle.Filter(items, model.StatusCategoryPending))
		}
	})
}
