package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

// newLoginCommand signs in and persists the session.
func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if email == "" {
				email, err = prompt(cmd, "Email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
			}

			user, err := e.ident.Login(cmd.Context(), api.Credentials{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

// newRegisterCommand creates an account and signs in.
func newRegisterCommand() *cobra.Command {
	var (
		name       string
		email      string
		password   string
		role       string
		department string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if name == "" || email == "" || password == "" {
				return fmt.Errorf("--name, --email, and --password are required")
			}

			user, err := e.ident.Register(cmd.Context(), api.Registration{
				Name:            name,
				Email:           email,
				Password:        password,
				ConfirmPassword: password,
				Role:            api.Role(role),
				DepartmentID:    department,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", "student", "role (student|staff|supervisor|admin)")
	cmd.Flags().StringVar(&department, "department", "", "department ID")
	return cmd
}

// newLogoutCommand discards the persisted session.
func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.ident.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

// newWhoamiCommand prints the current identity.
func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}
			u := e.ident.CurrentUser()
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nrole: %s\n", u.Name, u.Email, u.Role)
			if u.DepartmentName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "department: %s\n", u.DepartmentName)
			}
			return nil
		},
	}
}

// prompt reads one trimmed line from the command's input.
func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	in := cmd.InOrStdin()
	if in == nil {
		in = os.Stdin
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
