package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nexus/internal/client/dashboard"
	"nexus/internal/models"
	"nexus/pkg/protocol"
)

func newRegisterCmd(a *app) *cobra.Command {
	var req protocol.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Email == "" {
				if req.Email, err = a.prompt("Email"); err != nil {
					return err
				}
			}
			if req.Username == "" {
				if req.Username, err = a.prompt("Username"); err != nil {
					return err
				}
			}
			if req.Password == "" {
				if req.Password, err = a.prompt("Password"); err != nil {
					return err
				}
			}

			client, err := a.api()
			if err != nil {
				return err
			}
			user, err := client.Auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account %s created. Run 'nexus login' to sign in.\n", orDash(user.Username))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&req.WhopEmail, "whop-email", "", "Whop account email for payouts")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if username, err = a.prompt("Username"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt("Password"); err != nil {
					return err
				}
			}

			client, err := a.api()
			if err != nil {
				return err
			}
			resp, err := client.Auth.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if resp.Token() == "" {
				return errors.New("login succeeded but no token was returned")
			}
			fmt.Fprintf(a.out, "Logged in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			if err := client.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			user, err := client.Auth.GetMe(cmd.Context())
			if err != nil {
				return err
			}
			printUser(a, user)
			return nil
		},
	}
}

func printUser(a *app, u *models.User) {
	field(a.out, "ID", u.ID)
	field(a.out, "Username", u.Username)
	field(a.out, "Email", orDash(u.Email))
	field(a.out, "Name", orDash(u.FullName))
	field(a.out, "Role", orDash(string(u.Role)))
	field(a.out, "Whop email", orDash(u.WhopEmail))
	for _, p := range models.Platforms {
		if handle, ok := u.LinkedHandles()[p]; ok {
			field(a.out, p.Slug(), handle)
		}
	}
	field(a.out, "Joined", formatTime(u.Joined()))
}

func newProfileCmd(a *app) *cobra.Command {
	flags := []struct {
		name  string
		usage string
		dest  func(*protocol.ProfileUpdate, *string)
	}{
		{"username", "new username", func(u *protocol.ProfileUpdate, v *string) { u.Username = v }},
		{"full-name", "display name", func(u *protocol.ProfileUpdate, v *string) { u.FullName = v }},
		{"avatar-url", "avatar image URL", func(u *protocol.ProfileUpdate, v *string) { u.AvatarURL = v }},
		{"whop-email", "Whop account email", func(u *protocol.ProfileUpdate, v *string) { u.WhopEmail = v }},
		{"instagram", "Instagram username", func(u *protocol.ProfileUpdate, v *string) { u.InstagramUsername = v }},
		{"tiktok", "TikTok username", func(u *protocol.ProfileUpdate, v *string) { u.TiktokUsername = v }},
		{"youtube", "YouTube channel", func(u *protocol.ProfileUpdate, v *string) { u.YoutubeChannel = v }},
		{"twitter", "Twitter username", func(u *protocol.ProfileUpdate, v *string) { u.TwitterUsername = v }},
	}
	values := make([]string, len(flags))

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update profile fields; only the flags given are changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var update protocol.ProfileUpdate
			changed := false
			for i, f := range flags {
				if cmd.Flags().Changed(f.name) {
					f.dest(&update, &values[i])
					changed = true
				}
			}
			if !changed {
				return errors.New("nothing to update: pass at least one field flag")
			}

			client, err := a.api()
			if err != nil {
				return err
			}
			user, err := client.Auth.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			printUser(a, user)
			return nil
		},
	}
	for i, f := range flags {
		cmd.Flags().StringVar(&values[i], f.name, "", f.usage)
	}
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your submissions, earnings and active campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			d, err := dashboard.LoadEditor(cmd.Context(), dashboard.APISource{Client: client})
			if err != nil {
				return err
			}

			field(a.out, "User", d.Me.Username)
			field(a.out, "Submissions", len(d.Submissions))
			field(a.out, "Total views", d.TotalViews())
			field(a.out, "Earnings", "$"+d.TotalEarnings().StringFixed(2))
			counts := d.CountByStatus()
			for _, status := range []models.SubmissionStatus{models.SubmissionPending, models.SubmissionApproved, models.SubmissionRejected, models.SubmissionActive, models.SubmissionRemoved} {
				field(a.out, "  "+string(status), counts[status])
			}
			fmt.Fprintln(a.out)
			printCampaigns(a, d.Campaigns)
			return nil
		},
	}
}
