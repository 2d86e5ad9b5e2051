package model

import "strings"

type SubmissionStatus string

const (
	SubmissionStatusSubmitted   SubmissionStatus = "SUBMITTED"
	SubmissionStatusUnderReview SubmissionStatus = "UNDER_REVIEW"
	SubmissionStatusApproved    SubmissionStatus = "APPROVED"
	SubmissionStatusRejected    SubmissionStatus = "REJECTED"
)

func (s SubmissionStatus) String() string {
	return string(s)
}

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusUnderReview,
		SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	default:
		return false
	}
}

// ToSubmissionStatus normalizes a server status value. Case is ignored and the
// legacy aliases "pending" and "declined" are accepted.
func ToSubmissionStatus(status string) (SubmissionStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SUBMITTED", "PENDING":
		return SubmissionStatusSubmitted, true
	case "UNDER_REVIEW":
		return SubmissionStatusUnderReview, true
	case "APPROVED":
		return SubmissionStatusApproved, true
	case "REJECTED", "DECLINED":
		return SubmissionStatusRejected, true
	default:
		return SubmissionStatus(status), false
	}
}

// Normalized returns the canonical form of s, or s unchanged when unknown.
func (s SubmissionStatus) Normalized() SubmissionStatus {
	n, _ := ToSubmissionStatus(string(s))
	return n
}

// IsTerminal reports whether no further review transition is possible.
func (s SubmissionStatus) IsTerminal() bool {
	switch s.Normalized() {
	case SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	default:
		return false
	}
}

// Category maps a status onto exactly one display bucket. Unknown values are
// shown as pending, matching the badge fallback.
func (s SubmissionStatus) Category() StatusCategory {
	switch s.Normalized() {
	case SubmissionStatusApproved:
		return StatusCategoryApproved
	case SubmissionStatusRejected:
		return StatusCategoryDeclined
	default:
		return StatusCategoryPending
	}
}

// Label is the badge text shown for a status.
func (s SubmissionStatus) Label() string {
	switch s.Category() {
	case StatusCategoryApproved:
		return "Approved"
	case StatusCategoryDeclined:
		return "Declined"
	default:
		return "Pending"
	}
}

// Detail is the longer student-facing description, e.g. "Under Review".
func (s SubmissionStatus) Detail() string {
	switch s.Normalized() {
	case SubmissionStatusSubmitted:
		return "Submitted"
	case SubmissionStatusUnderReview:
		return "Under Review"
	case SubmissionStatusApproved:
		return "Approved"
	case SubmissionStatusRejected:
		return "Declined"
	default:
		return strings.ReplaceAll(string(s), "_", " ")
	}
}

type StatusCategory string

const (
	StatusCategoryAll      StatusCategory = "all"
	StatusCategoryPending  StatusCategory = "pending"
	StatusCategoryApproved StatusCategory = "approved"
	StatusCategoryDeclined StatusCategory = "declined"
)

func (c StatusCategory) IsValid() bool {
	switch c {
	case StatusCategoryAll, StatusCategoryPending, StatusCategoryApproved, StatusCategoryDeclined:
		return true
	default:
		return false
	}
}

func ToStatusCategory(s string) (StatusCategory, bool) {
	c := StatusCategory(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return StatusCategoryAll, true
	}
	return c, c.IsValid()
}

// Includes reports whether a submission with the given status belongs to c.
func (c StatusCategory) Includes(s SubmissionStatus) bool {
	if c == StatusCategoryAll {
		return true
	}
	return s.Category() == c
}

const FileTypeLink = "LINK"

type Submission struct {
	ID              int64            `json:"id"`
	FileName        string           `json:"fileName"`
	FileType        string           `json:"fileType"`
	FileSize        int64            `json:"fileSize"`
	Status          SubmissionStatus `json:"status"`
	GoogleDriveLink *string          `json:"googleDriveLink,omitempty"`
	OwnerEmail      string           `json:"ownerEmail,omitempty"`
	ExtractedText   *string          `json:"extractedText,omitempty"`
	// SectionAnalysis is the opaque payload produced by the analysis service:
	// usually JSON, sometimes free text.
	SectionAnalysis *string   `json:"sectionAnalysis,omitempty"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

func (s Submission) IsLink() bool {
	return s.FileType == FileTypeLink || (s.GoogleDriveLink != nil && *s.GoogleDriveLink != "")
}
