// Package review is the instructor side: every submission in the system,
// approve and reject decisions, and a periodic refresh while the view is
// open.
package review

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"sace/internal/errdefs"
	"sace/internal/guard"
	"sace/internal/lifecycle"
	"sace/internal/logging"
	"sace/internal/model"
	"sace/internal/routes"
)

const (
	fallbackUpdate = "Failed to update submission status"
	fallbackList   = "Failed to load submissions"
)

//go:generate mockgen -source=workflow.go -destination=mocks/workflow_mocks.go -package=mocks

type SubmissionAPI interface {
	ListAllSubmissions(ctx context.Context) ([]model.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id int64, status model.SubmissionStatus) (*model.Submission, error)
}

type Workflow struct {
	api    SubmissionAPI
	logger *logging.Logger

	mu    sync.RWMutex
	items []model.Submission
}

type Option func(*Workflow)

func WithLogger(logger *logging.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// Open admits token into the review view. Without a valid session the user
// is sent to the login view; without the INSTRUCTOR role, to the dashboard.
func Open(ctx context.Context, g *guard.Guard, token string, api SubmissionAPI, nav routes.Navigator, opts ...Option) (*Workflow, error) {
	access := g.CheckRole(token, model.RoleInstructor)
	if !access.IsAuthenticated {
		nav.Navigate(ctx, routes.PathLogin)
		return nil, errdefs.ErrUnauthenticated
	}
	if !access.HasRole {
		nav.Navigate(ctx, routes.PathDashboard)
		return nil, fmt.Errorf("%w: review requires the %s role", errdefs.ErrForbidden, model.RoleInstructor)
	}
	return New(api, opts...), nil
}

// New builds a workflow without a role check.
func New(api SubmissionAPI, opts ...Option) *Workflow {
	w := &Workflow{
		api:    api,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Refresh re-reads every submission. On failure the previous collection is
// kept.
func (w *Workflow) Refresh(ctx context.Context) error {
	items, err := w.api.ListAllSubmissions(ctx)
	if err != nil {
		w.logger.Warn(ctx, "failed to load submissions", zap.Error(err))
		return errdefs.Describe(err, fallbackList)
	}
	w.mu.Lock()
	w.items = append([]model.Submission(nil), items...)
	w.mu.Unlock()
	return nil
}

func (w *Workflow) Submissions() []model.Submission {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]model.Submission(nil), w.items...)
}

func (w *Workflow) Filter(category model.StatusCategory) []model.Submission {
	return lifecycle.Filter(w.Submissions(), category)
}

// CanApprove reports whether the approve action is offered for s.
func CanApprove(s model.Submission) bool {
	return s.Status.Normalized() != model.SubmissionStatusApproved
}

// CanReject reports whether the reject action is offered for s.
func CanReject(s model.Submission) bool {
	return s.Status.Normalized() != model.SubmissionStatusRejected
}

// CanBeginReview reports whether s is waiting to be picked up.
func CanBeginReview(s model.Submission) bool {
	return s.Status.Normalized() == model.SubmissionStatusSubmitted
}

func (w *Workflow) Approve(ctx context.Context, id int64) error {
	return w.transition(ctx, id, model.SubmissionStatusApproved, CanApprove)
}

func (w *Workflow) Reject(ctx context.Context, id int64) error {
	return w.transition(ctx, id, model.SubmissionStatusRejected, CanReject)
}

// BeginReview marks a submitted document as being looked at.
func (w *Workflow) BeginReview(ctx context.Context, id int64) error {
	return w.transition(ctx, id, model.SubmissionStatusUnderReview, CanBeginReview)
}

// transition asks the backend to move id to target and then re-reads the
// collection, whether or not the backend agreed. The cached entity is never
// patched locally.
func (w *Workflow) transition(ctx context.Context, id int64, target model.SubmissionStatus, allowed func(model.Submission) bool) error {
	if s, ok := w.find(id); ok && !allowed(s) {
		err := fmt.Errorf("%w: submission %d is already %s", errdefs.ErrConflict, id, s.Status.Label())
		return &errdefs.UserError{Message: err.Error(), Err: err}
	}

	_, err := w.api.UpdateSubmissionStatus(ctx, id, target)
	if err != nil {
		w.logger.Error(ctx, "status update failed",
			zap.Int64("id", id),
			zap.String("status", target.String()),
			zap.Error(err),
		)
	} else {
		w.logger.Info(ctx, "status updated", zap.Int64("id", id), zap.String("status", target.String()))
	}

	if refreshErr := w.Refresh(ctx); refreshErr != nil {
		w.logger.Warn(ctx, "refresh after status update failed", zap.Error(refreshErr))
	}

	if err != nil {
		return errdefs.Describe(err, fallbackUpdate)
	}
	return nil
}

func (w *Workflow) find(id int64) (model.Submission, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, s := range w.items {
		if s.ID == id {
			return s, true
		}
	}
	return model.Submission{}, false
}

type Stats struct {
	Total          int
	Completed      int
	NeedsReview    int
	Pending        int
	CompletionRate int
}

func (w *Workflow) Stats() Stats {
	return ComputeStats(w.Submissions())
}

// ComputeStats summarises items. Completed counts approvals; NeedsReview
// counts declined documents awaiting a new version.
func ComputeStats(items []model.Submission) Stats {
	st := Stats{Total: len(items)}
	for _, s := range items {
		switch s.Status.Category() {
		case model.StatusCategoryApproved:
			st.Completed++
		case model.StatusCategoryDeclined:
			st.NeedsReview++
		default:
			st.Pending++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = int(math.Floor(float64(st.Completed)/float64(st.Total)*100 + 0.5))
	}
	return st
}
