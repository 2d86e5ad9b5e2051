package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"sace/internal/lifecycle"
	"sace/internal/model"
	"sace/internal/review"
)

func printUser(out io.Writer, u model.User) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", u.DisplayName())
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
	if u.Provider != "" {
		fmt.Fprintf(tw, "Provider:\t%s\n", u.Provider)
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Member since:\t%s\n", u.CreatedAt.Format(time.DateOnly))
	}
	_ = tw.Flush()
}

func printSubmissions(out io.Writer, items []model.Submission, withOwner bool) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No submissions found.")
		return
	}
	now := time.Now()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if withOwner {
		fmt.Fprintln(tw, "ID\tSTUDENT\tDOCUMENT\tTYPE\tSTATUS\tSCORE\tSUBMITTED")
	} else {
		fmt.Fprintln(tw, "ID\tDOCUMENT\tTYPE\tSTATUS\tSCORE\tSUBMITTED")
	}
	for _, s := range items {
		if withOwner {
			fmt.Fprintf(tw, "%d\t%s\t", s.ID, s.OwnerEmail)
		} else {
			fmt.Fprintf(tw, "%d\t", s.ID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.FileName, s.FileType, s.Status.Label(), lifecycle.FormatScore(s), lifecycle.RelativeTime(s.CreatedAt.Time, now))
	}
	_ = tw.Flush()
}

func printSubmission(out io.Writer, s model.Submission) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", s.ID)
	fmt.Fprintf(tw, "Document:\t%s\n", s.FileName)
	if s.IsLink() && s.GoogleDriveLink != nil {
		fmt.Fprintf(tw, "Link:\t%s\n", *s.GoogleDriveLink)
	} else {
		fmt.Fprintf(tw, "Type:\t%s (%d bytes)\n", s.FileType, s.FileSize)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", s.Status.Detail())
	fmt.Fprintf(tw, "Score:\t%s\n", lifecycle.FormatScore(s))
	fmt.Fprintf(tw, "Submitted:\t%s\n", lifecycle.RelativeTime(s.CreatedAt.Time, time.Now()))
	if s.SectionAnalysis != nil {
		fmt.Fprintf(tw, "Analysis:\t%s\n", *s.SectionAnalysis)
	}
	_ = tw.Flush()
}

func printStats(out io.Writer, st review.Stats) {
	fmt.Fprintf(out, "Total: %d  Completed: %d  Needs review: %d  Pending: %d  Completion: %d%%\n",
		st.Total, st.Completed, st.NeedsReview, st.Pending, st.CompletionRate)
}
