package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nexus/internal/client/dashboard"
	"nexus/internal/models"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Platform administration (admin role required)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show platform totals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.api()
				if err != nil {
					return err
				}
				stats, err := client.Admin.GetStats(cmd.Context())
				if err != nil {
					return err
				}
				printStats(a, stats)
				return nil
			},
		},
		&cobra.Command{
			Use:   "users",
			Short: "List users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.api()
				if err != nil {
					return err
				}
				users, err := client.Admin.GetUsers(cmd.Context())
				if err != nil {
					return err
				}
				printUsers(a, users)
				return nil
			},
		},
		&cobra.Command{
			Use:   "submissions",
			Short: "List every submission",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.api()
				if err != nil {
					return err
				}
				subs, err := client.Admin.GetAllSubmissions(cmd.Context())
				if err != nil {
					return err
				}
				printSubmissions(a, subs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "overview",
			Short: "Show stats and users in one view",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.api()
				if err != nil {
					return err
				}
				d, err := dashboard.LoadAdmin(cmd.Context(), dashboard.APISource{Client: client})
				if err != nil {
					return err
				}
				field(a.out, "Signed in as", d.Me.Username)
				printStats(a, d.Stats)
				field(a.out, "Users", len(d.Users))
				field(a.out, "Admins", d.Admins())
				fmt.Fprintln(a.out)
				printUsers(a, d.Users)
				return nil
			},
		},
	)
	return cmd
}

func printStats(a *app, stats *models.AdminStats) {
	field(a.out, "Total views", stats.TotalViews.Int64())
	field(a.out, "Submissions", stats.TotalSubmissions.Int64())
}

func printUsers(a *app, users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users")
		return
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tJOINED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, orDash(u.Email), orDash(string(u.Role)), formatTime(u.Joined()))
	}
	tw.Flush()
}
