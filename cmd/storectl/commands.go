package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/ecomapp/storefront/internal/models"
	"github.com/ecomapp/storefront/internal/users"
	"github.com/spf13/cobra"
)

func newRootCmd(open openFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Administer storefront accounts",
		SilenceUsage:  true,
	}
	root.AddCommand(newCreateAdminCmd(open), newSetRoleCmd(open), newListUsersCmd(open))
	return root
}

func newCreateAdminCmd(open openFunc) *cobra.Command {
	var in users.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register an administrator, or promote the existing account with that email",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			in.Normalize()
			u, err := svc.Register(cmd.Context(), in)
			if err != nil && !errors.Is(err, users.ErrDuplicate) {
				return err
			}
			u, err = svc.SetRole(cmd.Context(), in.Email, models.RoleAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s)\n", u.Email, u.ID.Hex())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "Administrator", "display name")
	f.StringVar(&in.Email, "email", "", "account email")
	f.StringVar(&in.Password, "password", "", "account password")
	f.StringVar(&in.Phone, "phone", "-", "phone number")
	f.StringVar(&in.Address, "address", "-", "postal address")
	f.StringVar(&in.Answer, "answer", "", "security answer used by forgot-password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func newSetRoleCmd(open openFunc) *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change the role of an account (admin or user)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r int
			switch role {
			case "admin":
				r = models.RoleAdmin
			case "user":
				r = models.RoleUser
			default:
				return fmt.Errorf("unknown role %q, want admin or user", role)
			}
			svc, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			u, err := svc.SetRole(cmd.Context(), email, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", "admin", "admin or user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newListUsersCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List registered accounts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE")
			for _, u := range list {
				role := "user"
				if u.IsAdmin() {
					role = "admin"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID.Hex(), u.Email, u.Name, role)
			}
			return tw.Flush()
		},
	}
}
