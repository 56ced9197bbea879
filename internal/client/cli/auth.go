package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type credentialFlags struct {
	Email    string
	Password string
	Name     string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&f.Password, "password", "", "account password (prompted when empty)")
}

func (f *credentialFlags) complete(e *env) error {
	var err error
	if f.Email, err = e.prompt(f.Email, "Email"); err != nil {
		return err
	}
	f.Password, err = e.prompt(f.Password, "Password")
	return err
}

func newRegisterCmd(e *env) *cobra.Command {
	flags := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in with it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.complete(e); err != nil {
				return err
			}
			p, err := e.identity.Register(cmd.Context(), flags.Email, flags.Password, flags.Name)
			if err != nil {
				return fmt.Errorf("register failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", p.Email)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&flags.Name, "name", "", "display name")

	return cmd
}

func newLoginCmd(e *env) *cobra.Command {
	flags := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.complete(e); err != nil {
				return err
			}
			p, err := e.identity.Login(cmd.Context(), flags.Email, flags.Password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", p.Email)
			return nil
		},
	}
	flags.bind(cmd)

	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e.identity.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := e.identity.Current()
			if p == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			name := p.DisplayName
			if name == "" {
				name = p.Email
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", name, p.Email)
			return nil
		},
	}
}
