package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

// newUsersCommand groups the admin user management subcommands.
func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users (admin only)",
	}
	cmd.AddCommand(
		newUsersListCommand(),
		newUsersGetCommand(),
		newUsersCreateCommand(),
		newUsersDeleteCommand(),
		newDepartmentsCommand(),
	)
	return cmd
}

// newDepartmentsCommand lists departments, mainly to look up the IDs the
// create and register commands expect.
func newDepartmentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}

			depts, err := e.client.Departments(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, d := range depts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.Description)
			}
			return w.Flush()
		},
	}
}

func newUsersListCommand() *cobra.Command {
	var (
		role   string
		search string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}

			page, err := e.client.ListUsers(cmd.Context(), api.UserFilter{
				Role:   api.Role(role),
				Search: search,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
			for _, u := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
					u.ID, u.Name, u.Email, u.Role, u.IsActive)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d users\n", len(page.Items), page.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "filter by role (student|staff|supervisor|admin)")
	cmd.Flags().StringVar(&search, "search", "", "filter by name or email")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum results")
	return cmd
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}

			u, err := e.client.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\nrole: %s\nactive: %t\n", u.Name, u.Email, u.Role, u.IsActive)
			if u.DepartmentName != "" {
				fmt.Fprintf(out, "department: %s\n", u.DepartmentName)
			}
			return nil
		},
	}
}

func newUsersCreateCommand() *cobra.Command {
	var (
		name       string
		email      string
		role       string
		department string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}
			if name == "" || email == "" {
				return fmt.Errorf("--name and --email are required")
			}

			u, err := e.client.CreateUser(cmd.Context(), api.NewUser{
				Name:         name,
				Email:        email,
				Role:         api.Role(role),
				DepartmentID: department,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "student", "role (student|staff|supervisor|admin)")
	cmd.Flags().StringVar(&department, "department", "", "department ID")
	return cmd
}

func newUsersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}
			if err := e.client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
