package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"sace/internal/review"
	"sace/internal/routes"
)

// openReview enters the instructor view and loads every submission.
func openReview(cmd *cobra.Command) (*app, *review.Workflow, error) {
	a := fromCommand(cmd)
	ctx := cmd.Context()
	w, err := review.Open(ctx, a.guard, a.session.Token(), a.client, a.history, review.WithLogger(a.logger))
	if err != nil {
		if a.history.Current() == routes.PathLogin {
			return nil, nil, errNotSignedIn
		}
		return nil, nil, err
	}
	a.history.Navigate(ctx, routes.PathInstructor)
	if err := w.Refresh(ctx); err != nil {
		return nil, nil, err
	}
	return a, w, nil
}

func newReviewCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review student submissions (instructors only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(status)
			if err != nil {
				return err
			}
			a, w, err := openReview(cmd)
			if err != nil {
				return err
			}
			printSubmissions(a.out, w.Filter(category), true)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "Filter: all, pending, approved or declined")
	cmd.AddCommand(newTransitionCommand("approve", "Approve a submission", (*review.Workflow).Approve, "approved"))
	cmd.AddCommand(newTransitionCommand("reject", "Decline a submission", (*review.Workflow).Reject, "declined"))
	cmd.AddCommand(newTransitionCommand("begin", "Mark a submission as under review", (*review.Workflow).BeginReview, "moved under review"))
	cmd.AddCommand(newStatsCommand())
	cmd.AddCommand(newWatchCommand())
	return cmd
}

type transition func(w *review.Workflow, ctx context.Context, id int64) error

func newTransitionCommand(use, short string, do transition, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, w, err := openReview(cmd)
			if err != nil {
				return err
			}
			if err := do(w, cmd.Context(), id); err != nil {
				return err
			}
			a.printf("Submission #%d %s\n", id, done)
			return nil
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show review progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, w, err := openReview(cmd)
			if err != nil {
				return err
			}
			printStats(a.out, w.Stats())
			return nil
		},
	}
}

func newWatchCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the review queue until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, w, err := openReview(cmd)
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = a.cfg.RefreshInterval
			}
			ctx := cmd.Context()

			printStats(a.out, w.Stats())
			last := w.Stats()
			failures := make(chan error, 1)
			poller := w.AutoRefresh(interval, review.WithErrorHandler(func(err error) {
				select {
				case failures <- err:
				default:
				}
			}))
			poller.Start(ctx)
			defer poller.Stop()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-failures:
					a.printf("refresh failed: %v\n", err)
				case <-ticker.C:
					if !a.session.IsAuthenticated() {
						return errNotSignedIn
					}
					if st := w.Stats(); st != last {
						printStats(a.out, st)
						last = st
					}
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (defaults to SACE_REFRESH_INTERVAL)")
	return cmd
}
