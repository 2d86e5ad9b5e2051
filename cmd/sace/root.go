package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"sace/internal/config"
)

type globalFlags struct {
	apiURL string
	store  string
	debug  bool
	yes    bool
}

// execute runs the command line once and releases the session store.
func execute(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	var a *app
	root := newRootCommand(in, out, &a)
	root.SetArgs(args)
	root.SetOut(out)
	err := root.ExecuteContext(ctx)
	if a != nil {
		err = errors.Join(err, a.close())
	}
	return err
}

func newRootCommand(in io.Reader, out io.Writer, built **app) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           "sace",
		Short:         "Submit SRS documents and review them from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewClient()
			if err != nil {
				return err
			}
			if flags.apiURL != "" {
				cfg.APIBaseURL = flags.apiURL
			}
			if flags.store != "" {
				cfg.SessionStore = flags.store
			}
			cfg.Debug = cfg.Debug || flags.debug

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, in, out)
			if err != nil {
				return err
			}
			a.assumeOK = flags.yes
			*built = a
			cmd.SetContext(context.WithValue(ctx, appKey{}, a))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.apiURL, "api", "", "Backend base URL (overrides SACE_API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&flags.store, "session-store", "", "Session store: bolt, redis or memory")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Log requests to stderr")
	cmd.PersistentFlags().BoolVarP(&flags.yes, "yes", "y", false, "Answer yes to confirmation prompts")

	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newRegisterCommand())
	cmd.AddCommand(newGoogleLoginCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newWhoamiCommand())
	cmd.AddCommand(newOpenCommand())
	cmd.AddCommand(newProfileCommand())
	cmd.AddCommand(newSubmissionsCommand())
	cmd.AddCommand(newReviewCommand())
	return cmd
}
