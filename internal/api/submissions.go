package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"sace/internal/model"
)

const uploadField = "file"

// ListSubmissions returns the caller's own submissions.
func (c *Client) ListSubmissions(ctx context.Context) ([]model.Submission, error) {
	return get[[]model.Submission](ctx, c, "/submissions")
}

// ListAllSubmissions returns every submission. Instructors only.
func (c *Client) ListAllSubmissions(ctx context.Context) ([]model.Submission, error) {
	return get[[]model.Submission](ctx, c, "/submissions/all")
}

func (c *Client) GetSubmission(ctx context.Context, id int64) (*model.Submission, error) {
	sub, err := get[model.Submission](ctx, c, submissionPath(id))
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UploadSubmission sends content as a multipart form under the "file" field.
func (c *Client) UploadSubmission(ctx context.Context, fileName string, content io.Reader) (*model.Submission, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadField, fileName)
	if err != nil {
		return nil, fmt.Errorf("api: build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("api: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api: build upload: %w", err)
	}

	req := request{
		method:      http.MethodPost,
		path:        "/submissions/upload",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	var out model.Submission
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitLink(ctx context.Context, link string) (*model.Submission, error) {
	return send[model.Submission](ctx, c, http.MethodPost, "/submissions/link", model.LinkInput{DriveLink: link})
}

func (c *Client) UpdateSubmissionStatus(ctx context.Context, id int64, status model.SubmissionStatus) (*model.Submission, error) {
	return send[model.Submission](ctx, c, http.MethodPatch, submissionPath(id)+"/status", model.StatusUpdateInput{Status: status})
}

func (c *Client) DeleteSubmission(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: submissionPath(id)}, nil)
}

func submissionPath(id int64) string {
	return "/submissions/" + strconv.FormatInt(id, 10)
}
