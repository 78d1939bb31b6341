package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclelog/internal/config"
	"github.com/terraincognita07/cyclelog/internal/services"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCommand())
	cmd.AddCommand(newUserResetPasswordCommand())
	return cmd
}

func newUserCreateCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("email is required")
			}
			if password == "" {
				prompted, err := promptPassword(cmd, "Password: ")
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = prompted
			}

			rt, err := openRuntime(config.ScopeAdmin)
			if err != nil {
				return err
			}
			defer rt.Close()

			user, err := services.NewAuthService(rt.repos.Users).CreateUser(email, password)
			switch {
			case errors.Is(err, services.ErrEmailTaken):
				return fmt.Errorf("user %s already exists", strings.ToLower(strings.TrimSpace(email)))
			case errors.Is(err, services.ErrInvalidCredentials):
				return fmt.Errorf("invalid email address %q", email)
			case errors.Is(err, services.ErrWeakPassword):
				return errors.New("password must be at least 8 characters and mix upper case, lower case and digits")
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Created user %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newUserResetPasswordCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace a password with a temporary one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			normalizedEmail := services.NormalizeAuthEmail(email)
			if normalizedEmail == "" {
				return errors.New("a valid --email is required")
			}

			rt, err := openRuntime(config.ScopeAdmin)
			if err != nil {
				return err
			}
			defer rt.Close()

			temporaryPassword, err := services.NewAuthService(rt.repos.Users).ResetPassword(normalizedEmail)
			if errors.Is(err, services.ErrUserNotFound) {
				return fmt.Errorf("user %s not found", normalizedEmail)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✅ Password reset successful")
			fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
			fmt.Fprintln(out, "User must change password on next login.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}
