package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"sace/internal/errdefs"
	"sace/internal/lifecycle"
	"sace/internal/model"
	"sace/internal/routes"
)

// studentController enters the submissions view and loads the student's
// submissions.
func studentController(cmd *cobra.Command) (*app, *lifecycle.Controller, error) {
	a := fromCommand(cmd)
	if _, err := a.enter(routes.PathSubmissions); err != nil {
		return nil, nil, err
	}
	c := a.controller()
	if err := c.Refresh(cmd.Context()); err != nil {
		return nil, nil, err
	}
	return a, c, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errdefs.Invalid("invalid submission id %q", raw)
	}
	return id, nil
}

func parseCategory(raw string) (model.StatusCategory, error) {
	c, ok := model.ToStatusCategory(raw)
	if !ok {
		return "", errdefs.Invalid("unknown status filter %q, use all, pending, approved or declined", raw)
	}
	return c, nil
}

func newSubmissionsCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "submissions",
		Aliases: []string{"subs"},
		Short:   "List and manage your SRS submissions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(status)
			if err != nil {
				return err
			}
			a, c, err := studentController(cmd)
			if err != nil {
				return err
			}
			printSubmissions(a.out, c.Filter(category), false)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "Filter: all, pending, approved or declined")
	cmd.AddCommand(newSubmissionShowCommand())
	cmd.AddCommand(newUploadCommand())
	cmd.AddCommand(newLinkCommand())
	cmd.AddCommand(newResubmitCommand())
	cmd.AddCommand(newSubmissionDeleteCommand())
	cmd.AddCommand(newVersionsCommand())
	return cmd
}

func newSubmissionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one submission and its section analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a := fromCommand(cmd)
			if _, err := a.enter(routes.PathSubmissions); err != nil {
				return err
			}
			s, err := a.client.GetSubmission(cmd.Context(), id)
			if err != nil {
				return errdefs.Describe(err, "Submission not found")
			}
			printSubmission(a.out, *s)
			return nil
		},
	}
}

func newUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a PDF or DOCX document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := studentController(cmd)
			if err != nil {
				return err
			}
			created, err := c.UploadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("File uploaded successfully! Submission #%d\n", created.ID)
			return nil
		},
	}
}

func newLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <url>",
		Short: "Submit a Google Drive link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := studentController(cmd)
			if err != nil {
				return err
			}
			created, err := c.SubmitLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("Link submitted successfully! Submission #%d\n", created.ID)
			return nil
		},
	}
}

func newResubmitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resubmit <id> <file>",
		Short: "Upload a new version after a review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			previous, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, c, err := studentController(cmd)
			if err != nil {
				return err
			}
			created, err := c.Resubmit(cmd.Context(), previous, args[1])
			if err != nil {
				return err
			}
			a.printf("Resubmitted as #%d\n", created.ID)
			return nil
		},
	}
}

func newSubmissionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, c, err := studentController(cmd)
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), id, a); err != nil {
				return err
			}
			a.printf("Submission deleted successfully\n")
			return nil
		},
	}
}

func newVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "Show your submission history, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := studentController(cmd)
			if err != nil {
				return err
			}
			versions := c.Versions()
			if len(versions) == 0 {
				a.printf("No submissions yet.\n")
				return nil
			}
			for _, v := range versions {
				a.printf("%s\t#%d\t%s\t%s\t%s\n", v.Label, v.Submission.ID, v.Submission.FileName,
					v.Submission.Status.Label(), lifecycle.FormatScore(v.Submission))
			}
			return nil
		},
	}
}
