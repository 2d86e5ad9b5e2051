// Package lifecycle drives a student's submissions: listing, uploading
// documents, submitting links, deleting and resubmitting.
//
// The backend owns every status. The controller never moves a submission
// between states locally; after a mutation it re-reads the collection.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"sace/internal/errdefs"
	"sace/internal/logging"
	"sace/internal/model"
)

const (
	fallbackUpload = "Upload failed"
	fallbackLink   = "Link submission failed"
	fallbackDelete = "Failed to delete submission"
	fallbackList   = "Failed to load submissions"
)

//go:generate mockgen -source=controller.go -destination=mocks/controller_mocks.go -package=mocks

type SubmissionAPI interface {
	ListSubmissions(ctx context.Context) ([]model.Submission, error)
	UploadSubmission(ctx context.Context, fileName string, content io.Reader) (*model.Submission, error)
	SubmitLink(ctx context.Context, link string) (*model.Submission, error)
	DeleteSubmission(ctx context.Context, id int64) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type Controller struct {
	api    SubmissionAPI
	policy UploadPolicy
	logger *logging.Logger

	mu     sync.RWMutex
	items  []model.Submission
	loaded bool
}

type Option func(*Controller)

func WithUploadPolicy(p UploadPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func NewController(api SubmissionAPI, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		policy: DefaultUploadPolicy(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh replaces the cached collection with the backend's. On failure the
// previous collection is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.api.ListSubmissions(ctx)
	if err != nil {
		c.logger.Warn(ctx, "failed to load submissions", zap.Error(err))
		return errdefs.Describe(err, fallbackList)
	}
	c.mu.Lock()
	c.items = append([]model.Submission(nil), items...)
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Submissions returns a copy of the cached collection.
func (c *Controller) Submissions() []model.Submission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Submission(nil), c.items...)
}

func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Controller) Filter(category model.StatusCategory) []model.Submission {
	return Filter(c.Submissions(), category)
}

// UploadFile validates and uploads the document at path.
func (c *Controller) UploadFile(ctx context.Context, path string) (*model.Submission, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errdefs.Describe(errdefs.Invalid("cannot read %s: %v", filepath.Base(path), err), fallbackUpload)
	}
	if info.IsDir() {
		return nil, errdefs.Describe(errdefs.Invalid("%s is a directory", filepath.Base(path)), fallbackUpload)
	}
	if err := c.policy.Check(info.Name(), info.Size()); err != nil {
		return nil, errdefs.Describe(err, fallbackUpload)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errdefs.Describe(errdefs.Invalid("cannot read %s: %v", info.Name(), err), fallbackUpload)
	}
	defer func() { _ = f.Close() }()

	return c.Upload(ctx, info.Name(), info.Size(), f)
}

// Upload validates name and size, then sends content. Nothing is sent when
// validation fails.
func (c *Controller) Upload(ctx context.Context, name string, size int64, content io.Reader) (*model.Submission, error) {
	if err := c.policy.Check(name, size); err != nil {
		return nil, errdefs.Describe(err, fallbackUpload)
	}
	created, err := c.api.UploadSubmission(ctx, filepath.Base(name), content)
	if err != nil {
		c.logger.Error(ctx, "upload failed", zap.String("file", name), zap.Error(err))
		return nil, errdefs.Describe(err, fallbackUpload)
	}
	c.logger.Info(ctx, "submission uploaded", zap.Int64("id", created.ID), zap.String("file", created.FileName))
	c.afterCreate(ctx, *created)
	return created, nil
}

// SubmitLink submits a shared-document link. Blank links are rejected
// locally; the backend decides whether the link is acceptable.
func (c *Controller) SubmitLink(ctx context.Context, link string) (*model.Submission, error) {
	link = strings.TrimSpace(link)
	if err := model.Validate(model.LinkInput{DriveLink: link}); err != nil {
		return nil, errdefs.Describe(err, fallbackLink)
	}
	created, err := c.api.SubmitLink(ctx, link)
	if err != nil {
		c.logger.Error(ctx, "link submission failed", zap.Error(err))
		return nil, errdefs.Describe(err, fallbackLink)
	}
	c.logger.Info(ctx, "link submitted", zap.Int64("id", created.ID))
	c.afterCreate(ctx, *created)
	return created, nil
}

// Resubmit uploads a new document after previous was reviewed. The new
// submission is independent; previous is left as it is.
func (c *Controller) Resubmit(ctx context.Context, previous int64, path string) (*model.Submission, error) {
	if _, ok := c.find(previous); !ok {
		return nil, errdefs.Describe(fmt.Errorf("%w: submission %d", errdefs.ErrNotFound, previous), fallbackUpload)
	}
	return c.UploadFile(ctx, path)
}

// Delete removes submission id after confirm approves it. A declined
// confirmation returns errdefs.ErrCancelled and sends nothing.
func (c *Controller) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if confirm != nil && !confirm.Confirm(ctx, "Are you sure you want to delete this submission?") {
		return errdefs.ErrCancelled
	}
	if err := c.api.DeleteSubmission(ctx, id); err != nil {
		c.logger.Error(ctx, "delete failed", zap.Int64("id", id), zap.Error(err))
		return errdefs.Describe(err, fallbackDelete)
	}

	c.mu.Lock()
	kept := c.items[:0:0]
	for _, s := range c.items {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.items = kept
	c.mu.Unlock()

	c.logger.Info(ctx, "submission deleted", zap.Int64("id", id))
	return nil
}

// afterCreate re-reads the collection. If that fails the confirmed entity is
// put at the front of the cache instead.
func (c *Controller) afterCreate(ctx context.Context, created model.Submission) {
	err := c.Refresh(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.items {
		if s.ID == created.ID {
			return
		}
	}
	c.items = append([]model.Submission{created}, c.items...)
}

func (c *Controller) find(id int64) (model.Submission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.items {
		if s.ID == id {
			return s, true
		}
	}
	return model.Submission{}, false
}

// Version labels one submission in a student's history.
type Version struct {
	Number     int
	Label      string
	Submission model.Submission
}

// Versions orders the cached submissions oldest first and numbers them.
func (c *Controller) Versions() []Version {
	return Versions(c.Submissions())
}

func Versions(items []model.Submission) []Version {
	sorted := append([]model.Submission(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].CreatedAt.Time, sorted[j].CreatedAt.Time
		if !a.Equal(b) {
			return a.Before(b)
		}
		return sorted[i].ID < sorted[j].ID
	})
	out := make([]Version, len(sorted))
	for i, s := range sorted {
		out[i] = Version{Number: i + 1, Label: fmt.Sprintf("Version %d", i+1), Submission: s}
	}
	return out
}

// Filter keeps the submissions that belong to category, preserving order.
func Filter(items []model.Submission, category model.StatusCategory) []model.Submission {
	out := make([]model.Submission, 0, len(items))
	for _, s := range items {
		if category.Includes(s.Status) {
			out = append(out, s)
		}
	}
	return out
}
