package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"nexus/internal/api"
	"nexus/internal/client/dashboard"
	"nexus/internal/models"
)

// missingCodeText is shown when the provider redirect carries no code.
const missingCodeText = "Authorization code not found. Connection failed."

func newAccountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Link social accounts and view their metrics",
	}
	cmd.AddCommand(
		newAccountsListCmd(a),
		newAccountsConnectCmd(a),
		newAccountsCallbackCmd(a),
		newAccountsExchangeCmd(a),
		newAccountsLinkCmd(a),
		newAccountsMetricsCmd(a),
		newAccountsContentCmd(a),
		newAccountsUnlinkCmd(a),
		newAccountsOverviewCmd(a),
	)
	return cmd
}

func newAccountsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			accounts, err := client.Integrations.GetAccounts(cmd.Context())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Fprintln(a.out, "No connected accounts")
				return nil
			}
			tw := newTable(a.out)
			fmt.Fprintln(tw, "ID\tPLATFORM\tHANDLE\tSTATUS\tVERIFICATION")
			for _, acc := range accounts {
				code := "-"
				if !acc.IsVerified() && acc.VerificationCode != "" {
					code = acc.VerificationCode
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", acc.ID, acc.Platform, acc.Handle, acc.Status, code)
			}
			tw.Flush()
			return nil
		},
	}
}

func newAccountsConnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <platform>",
		Short: "Print the OAuth consent URL for a platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := models.ParsePlatform(args[0])
			if err != nil {
				return err
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			consentURL, err := client.Integrations.GetConnectURL(cmd.Context(), platform)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Open this URL to authorize Nexus:")
			fmt.Fprintln(a.out, consentURL)
			fmt.Fprintln(a.out, "Then run 'nexus accounts callback <redirect-url>' with the URL you were sent back to.")
			return nil
		},
	}
}

func newAccountsCallbackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "callback <redirect-url>",
		Short: "Finish an OAuth connection from the provider redirect URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			redirect, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse redirect url: %w", err)
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			acc, err := client.Integrations.CompleteOAuth(cmd.Context(), redirect.Query())
			if errors.Is(err, api.ErrMissingAuthorizationCode) {
				fmt.Fprintln(a.out, missingCodeText)
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Connected %s account %s (#%d)\n", acc.Platform, acc.Handle, acc.ID)
			return nil
		},
	}
}

func newAccountsExchangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <platform> <code>",
		Short: "Trade an OAuth authorization code for a linked account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := models.ParsePlatform(args[0])
			if err != nil {
				return err
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			acc, err := client.Integrations.OAuthExchange(cmd.Context(), platform, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Connected %s account %s (#%d)\n", acc.Platform, acc.Handle, acc.ID)
			return nil
		},
	}
}

func newAccountsLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link <platform> <handle>",
		Short: "Link an account by handle without OAuth",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := models.ParsePlatform(args[0])
			if err != nil {
				return err
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			acc, err := client.Integrations.ManualLink(cmd.Context(), platform, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Linked %s account %s (#%d), status %s\n", acc.Platform, acc.Handle, acc.ID, acc.Status)
			if acc.VerificationCode != "" && !acc.IsVerified() {
				fmt.Fprintf(a.out, "Add %s to your bio to verify ownership.\n", acc.VerificationCode)
			}
			return nil
		},
	}
}

func newAccountsMetricsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <id>",
		Short: "Show the latest metrics of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			m, err := client.Integrations.GetAccountMetrics(cmd.Context(), id)
			if err != nil {
				return err
			}
			if m.Title != "" {
				field(a.out, "Title", m.Title)
			}
			printMetrics(a, *m)
			return nil
		},
	}
}

func printMetrics(a *app, m models.AccountMetrics) {
	field(a.out, "Views", m.Views.Int64())
	field(a.out, "Subscribers", m.Subscribers.Int64())
	field(a.out, "Likes", m.Likes.Int64())
	field(a.out, "Comments", m.Comments.Int64())
	field(a.out, "Videos", m.VideoCount.Int64())
	field(a.out, "Engagement", fmt.Sprintf("%.2f%%", m.EngagementRate()))
}

func newAccountsContentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "content <id>",
		Short: "Show per-video metrics of an OAuth-linked account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			videos, err := client.Integrations.GetContentMetrics(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(videos) == 0 {
				fmt.Fprintln(a.out, "No videos found")
				return nil
			}
			tw := newTable(a.out)
			fmt.Fprintln(tw, "TITLE\tPUBLISHED\tVIEWS\tLIKES\tCOMMENTS\tENGAGEMENT")
			for _, v := range videos {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.2f%%\n", v.Title, formatTime(v.PublishedAt.Time),
					v.Views.Int64(), v.Likes.Int64(), v.Comments.Int64(), v.EngagementRate())
			}
			tw.Flush()
			return nil
		},
	}
}

func newAccountsUnlinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <id>",
		Short: "Remove a connected account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			if err := client.Integrations.UnlinkAccount(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account #%d unlinked\n", id)
			return nil
		},
	}
}

func newAccountsOverviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show every account with fresh metrics and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			overview, err := dashboard.LoadAccounts(cmd.Context(), dashboard.APISource{Client: client})
			if err != nil {
				return err
			}
			if len(overview.Items) == 0 {
				fmt.Fprintln(a.out, "No connected accounts")
				return nil
			}
			tw := newTable(a.out)
			fmt.Fprintln(tw, "ID\tPLATFORM\tHANDLE\tVIEWS\tFOLLOWERS\tENGAGEMENT")
			for _, item := range overview.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%.2f%%\n", item.Account.ID, item.Account.Platform, item.Account.Handle,
					item.Metrics.Views.Int64(), item.Metrics.Subscribers.Int64(), item.Metrics.EngagementRate())
			}
			tw.Flush()
			fmt.Fprintln(a.out)
			printMetrics(a, overview.Totals())
			return nil
		},
	}
}
