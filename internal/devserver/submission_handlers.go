package devserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sace/internal/ctxdata"
	"sace/internal/errdefs"
	"sace/internal/lifecycle"
	"sace/internal/logging"
	"sace/internal/model"
)

var allowedUploadTypes = map[string]struct{}{
	"PDF":  {},
	"DOCX": {},
}

var driveHosts = map[string]struct{}{
	"drive.google.com": {},
	"docs.google.com":  {},
}

func badRequest(message string) error {
	return &errdefs.UserError{Message: message, Err: errdefs.ErrValidation}
}

func (s *Server) listOwn(w http.ResponseWriter, r *http.Request) {
	id, _ := callerID(r)
	s.list(w, r, id)
}

func (s *Server) listAll(w http.ResponseWriter, r *http.Request) {
	s.list(w, r, 0)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, ownerID int64) {
	records, err := s.repo.ListSubmissions(ownerID)
	if err != nil {
		fail(w, r, err, "Failed to load submissions")
		return
	}
	out := make([]model.Submission, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Submission)
	}
	writeJSON(w, http.StatusOK, out)
}

// submission loads the {id} submission, visible to its owner and to
// instructors.
func (s *Server) submission(r *http.Request) (*submissionRecord, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, badRequest("Invalid submission id")
	}
	rec, err := s.repo.Submission(id)
	if err != nil {
		return nil, err
	}
	caller, _ := callerID(r)
	if rec.OwnerID != caller && !ctxdata.HasRole(r.Context(), model.RoleInstructor) {
		return nil, errdefs.ErrNotFound
	}
	return rec, nil
}

func (s *Server) getSubmission(w http.ResponseWriter, r *http.Request) {
	rec, err := s.submission(r)
	if err != nil {
		fail(w, r, err, "Submission not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.Submission)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorJSON(w, http.StatusBadRequest, s.sizeMessage())
			return
		}
		writeErrorJSON(w, http.StatusBadRequest, "File is required")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUploadBytes+1))
	if err != nil {
		fail(w, r, err, "File upload failed")
		return
	}
	switch {
	case len(content) == 0:
		writeErrorJSON(w, http.StatusBadRequest, "File is empty")
		return
	case int64(len(content)) > s.opts.MaxUploadBytes:
		writeErrorJSON(w, http.StatusBadRequest, s.sizeMessage())
		return
	}

	name := filepath.Base(header.Filename)
	fileType := lifecycle.FileType(name)
	if _, ok := allowedUploadTypes[fileType]; !ok {
		writeErrorJSON(w, http.StatusBadRequest, "Only PDF and DOCX files are allowed")
		return
	}

	rec := &submissionRecord{
		Submission: model.Submission{
			FileName: name,
			FileType: fileType,
			FileSize: int64(len(content)),
			Status:   model.SubmissionStatusSubmitted,
		},
	}
	if text, err := extractText(fileType, content); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "text extraction failed", zap.String("file", name), zap.Error(err))
		}
	} else {
		rec.ExtractedText = &text
		if analysis, err := analyzeSections(text); err == nil {
			rec.SectionAnalysis = &analysis
		}
	}

	s.create(w, r, rec)
}

func (s *Server) sizeMessage() string {
	return fmt.Sprintf("File size exceeds %dMB limit", s.opts.MaxUploadBytes>>20)
}

func (s *Server) submitLink(w http.ResponseWriter, r *http.Request) {
	var in model.LinkInput
	if err := decodeJSON(r, &in); err != nil {
		fail(w, r, err, "Link submission failed")
		return
	}
	link := strings.TrimSpace(in.DriveLink)
	if link == "" {
		writeErrorJSON(w, http.StatusBadRequest, "Drive link is required")
		return
	}
	if !isDriveLink(link) {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid Google Drive link")
		return
	}

	s.create(w, r, &submissionRecord{
		Submission: model.Submission{
			FileName:        "Google Drive Link",
			FileType:        model.FileTypeLink,
			Status:          model.SubmissionStatusSubmitted,
			GoogleDriveLink: &link,
		},
	})
}

func isDriveLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	_, ok := driveHosts[strings.ToLower(u.Hostname())]
	return ok
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, rec *submissionRecord) {
	id, _ := callerID(r)
	owner, err := s.repo.UserByID(id)
	if err != nil {
		fail(w, r, err, "Submission failed")
		return
	}
	rec.OwnerID = owner.ID
	rec.OwnerEmail = owner.Email
	if err := s.repo.CreateSubmission(rec); err != nil {
		fail(w, r, err, "Submission failed")
		return
	}
	s.metrics.uploads.WithLabelValues(rec.FileType).Inc()
	writeJSON(w, http.StatusCreated, rec.Submission)
}

func (s *Server) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	rec, err := s.submission(r)
	if err != nil {
		fail(w, r, err, "Failed to delete submission")
		return
	}
	if caller, _ := callerID(r); rec.OwnerID != caller {
		writeErrorJSON(w, http.StatusForbidden, "Only the owner can delete a submission")
		return
	}
	if err := s.repo.DeleteSubmission(rec.ID); err != nil {
		fail(w, r, err, "Failed to delete submission")
		return
	}
	writeMessage(w, "Submission deleted successfully")
}

// checkTransition enforces the review state machine. UNDER_REVIEW can only
// follow SUBMITTED and a decision is only taken on a pending submission.
func checkTransition(from, to model.SubmissionStatus) error {
	from = from.Normalized()
	if from == to {
		return &errdefs.UserError{
			Message: "Submission is already " + strings.ToLower(to.Detail()),
			Err:     errdefs.ErrConflict,
		}
	}
	switch to {
	case model.SubmissionStatusUnderReview:
		if from != model.SubmissionStatusSubmitted {
			return &errdefs.UserError{
				Message: "Only submitted documents can be moved under review",
				Err:     errdefs.ErrConflict,
			}
		}
		return nil
	case model.SubmissionStatusApproved, model.SubmissionStatusRejected:
		if from.IsTerminal() {
			return &errdefs.UserError{
				Message: "Submission has already been " + strings.ToLower(from.Label()),
				Err:     errdefs.ErrConflict,
			}
		}
		return nil
	default:
		return badRequest("Invalid status: " + to.String())
	}
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in model.StatusUpdateInput
	if err := decodeJSON(r, &in); err != nil {
		fail(w, r, err, "Failed to update submission status")
		return
	}
	if strings.TrimSpace(in.Status.String()) == "" {
		writeErrorJSON(w, http.StatusBadRequest, "Status is required")
		return
	}
	to, ok := model.ToSubmissionStatus(in.Status.String())
	if !ok {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid status: "+in.Status.String())
		return
	}

	rec, err := s.submission(r)
	if err != nil {
		fail(w, r, err, "Failed to update submission status")
		return
	}

	var from model.SubmissionStatus
	updated, err := s.repo.UpdateSubmission(rec.ID, func(sub *submissionRecord) error {
		from = sub.Status
		if err := checkTransition(sub.Status, to); err != nil {
			return err
		}
		sub.Status = to
		return nil
	})
	if err != nil {
		fail(w, r, err, "Failed to update submission status")
		return
	}
	s.metrics.transitions.WithLabelValues(to.String()).Inc()

	caller, _ := ctxdata.GetCaller(ctx)
	event := ReviewEvent{
		SubmissionID: updated.ID,
		OwnerEmail:   updated.OwnerEmail,
		Reviewer:     caller.Email,
		From:         from,
		To:           to,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.publisher.PublishReview(ctx, event); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Error(ctx, "failed to publish review event", zap.Int64("submission_id", updated.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, updated.Submission)
}
