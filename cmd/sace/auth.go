package main

import (
	"github.com/spf13/cobra"

	"sace/internal/model"
	"sace/internal/routes"
)

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			in := model.LoginInput{
				Email:    a.prompt("Email", email),
				Password: a.prompt("Password", password),
			}
			if err := a.session.Login(cmd.Context(), in); err != nil {
				return err
			}
			return a.welcome()
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newRegisterCommand() *cobra.Command {
	var in model.SignupInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			in.Name = a.prompt("Full name", in.Name)
			in.Email = a.prompt("Email", in.Email)
			in.Password = a.prompt("Password", in.Password)
			in.PasswordConfirm = a.prompt("Confirm password", in.PasswordConfirm)
			if err := a.session.Register(cmd.Context(), in); err != nil {
				return err
			}
			return a.welcome()
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password, at least 6 characters")
	cmd.Flags().StringVar(&in.PasswordConfirm, "confirm", "", "Password again")
	return cmd
}

func newGoogleLoginCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "google-login",
		Short: "Sign in with a Google ID token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			if err := a.session.LoginWithGoogle(cmd.Context(), a.prompt("Google ID token", token)); err != nil {
				return err
			}
			return a.welcome()
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "ID token issued by Google")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			a.printf("Signed out.\n")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			user, ok := a.session.CurrentUser()
			if !ok {
				a.printf("Not signed in.\n")
				return nil
			}
			printUser(a.out, user)
			return nil
		},
	}
}

func newOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Resolve a path through the route guard and show the view it lands on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromCommand(cmd)
			final, view, err := a.router.Follow(args[0], a.session.Token())
			if err != nil {
				return err
			}
			a.history.Navigate(cmd.Context(), final)
			a.printf("%s\t%s\n", final, view)
			return nil
		},
	}
}

// welcome reports the sign-in and the dashboard the user lands on.
func (a *app) welcome() error {
	user, _ := a.session.CurrentUser()
	_, view, err := a.router.Follow(routes.PathDashboard, a.session.Token())
	if err != nil {
		return err
	}
	a.printf("Signed in as %s (%s). Dashboard: %s\n", user.DisplayName(), user.Role, view)
	return nil
}
