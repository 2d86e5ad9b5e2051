package main

import (
	"github.com/spf13/cobra"

	"sace/internal/errdefs"
	"sace/internal/model"
	"sace/internal/routes"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			if _, err := a.enter(routes.PathProfile); err != nil {
				return err
			}
			user, err := a.client.GetMe(cmd.Context())
			if err != nil {
				return errdefs.Describe(err, "Failed to load profile")
			}
			printUser(a.out, *user)
			return nil
		},
	}

	cmd.AddCommand(newProfileUpdateCommand())
	cmd.AddCommand(newProfilePasswordCommand())
	cmd.AddCommand(newProfileDeleteCommand())
	return cmd
}

func newProfileUpdateCommand() *cobra.Command {
	var firstName, lastName, email string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change name or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			if _, err := a.enter(routes.PathProfile); err != nil {
				return err
			}

			var in model.UpdateProfileInput
			if cmd.Flags().Changed("first-name") {
				in.FirstName = &firstName
			}
			if cmd.Flags().Changed("last-name") {
				in.LastName = &lastName
			}
			if cmd.Flags().Changed("email") {
				in.Email = &email
			}
			if err := model.Validate(in); err != nil {
				return errdefs.Describe(err, "Failed to update profile")
			}

			user, err := a.client.UpdateMe(cmd.Context(), in)
			if err != nil {
				return errdefs.Describe(err, "Failed to update profile")
			}
			if err := a.session.UpdateUser(cmd.Context(), *user); err != nil {
				return err
			}
			a.printf("Profile updated.\n")
			printUser(a.out, *user)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func newProfilePasswordCommand() *cobra.Command {
	var in model.ChangePasswordInput

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			if _, err := a.enter(routes.PathProfile); err != nil {
				return err
			}
			in.CurrentPassword = a.prompt("Current password", in.CurrentPassword)
			in.NewPassword = a.prompt("New password", in.NewPassword)
			if err := model.Validate(in); err != nil {
				return errdefs.Describe(err, "Failed to change password")
			}

			ack, err := a.client.ChangePassword(cmd.Context(), in)
			if err != nil {
				return errdefs.Describe(err, "Failed to change password")
			}
			a.printf("%s\n", ack.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.CurrentPassword, "current", "", "Current password")
	cmd.Flags().StringVar(&in.NewPassword, "new", "", "New password, at least 6 characters")
	return cmd
}

func newProfileDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and every submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			ctx := cmd.Context()
			if _, err := a.enter(routes.PathProfile); err != nil {
				return err
			}
			if !a.Confirm(ctx, "Delete your account? This cannot be undone.") {
				return errdefs.ErrCancelled
			}

			ack, err := a.client.DeleteMe(ctx)
			if err != nil {
				return errdefs.Describe(err, "Failed to delete account")
			}
			a.session.Invalidate(ctx)
			a.printf("%s\n", ack.Message)
			return nil
		},
	}
}
