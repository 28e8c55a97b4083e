package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nexus/internal/api"
	"nexus/internal/models"
)

func newCampaignsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaigns",
		Aliases: []string{"campaign"},
		Short:   "Browse campaigns and submit clips",
	}
	cmd.AddCommand(
		newCampaignsListCmd(a),
		newCampaignsShowCmd(a),
		newCampaignsSubmitCmd(a),
		newCampaignsSubmissionsCmd(a),
	)
	return cmd
}

func newCampaignsListCmd(a *app) *cobra.Command {
	var (
		filter     api.CampaignFilter
		activeOnly bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("active-only") {
				filter.ActiveOnly = &activeOnly
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			campaigns, err := client.Campaigns.GetAll(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printCampaigns(a, campaigns)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Platform, "platform", "", "only campaigns for this platform")
	cmd.Flags().StringVar(&filter.Category, "category", "", "only campaigns in this category")
	cmd.Flags().BoolVar(&activeOnly, "active-only", false, "only active campaigns")
	return cmd
}

func printCampaigns(a *app, campaigns []models.Campaign) {
	if len(campaigns) == 0 {
		fmt.Fprintln(a.out, "No campaigns found")
		return
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tTITLE\tPLATFORM\tRATE\tBUDGET LEFT\tDEADLINE")
	for _, c := range campaigns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t$%s\t$%s\t%s\n",
			c.ID, c.Title, orDash(c.Platform), c.PayoutRate.StringFixed(2),
			c.RemainingBudget().StringFixed(2), formatTime(c.Deadline.Time))
	}
	tw.Flush()
}

func newCampaignsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show campaign details",
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
			c, err := client.Campaigns.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			field(a.out, "ID", c.ID)
			field(a.out, "Title", c.Title)
			field(a.out, "Creator", orDash(c.CreatorName))
			field(a.out, "Category", orDash(c.Category))
			field(a.out, "Platform", orDash(c.Platform))
			field(a.out, "Payout", fmt.Sprintf("$%s (%s)", c.PayoutRate.StringFixed(2), orDash(c.PayoutType)))
			field(a.out, "Payout range", fmt.Sprintf("$%s - $%s", c.MinPayout.StringFixed(2), c.MaxPayout.StringFixed(2)))
			field(a.out, "Budget", fmt.Sprintf("$%s of $%s used (%.0f%%)", c.UsedBudget.StringFixed(2), c.TotalBudget.StringFixed(2), c.BudgetUsedPercent()))
			status := "inactive"
			if c.IsActive && !c.Expired(time.Now()) {
				status = "active"
			}
			field(a.out, "Status", status)
			field(a.out, "Deadline", formatTime(c.Deadline.Time))
			if c.Description != "" {
				fmt.Fprintf(a.out, "\n%s\n", strings.TrimSpace(c.Description))
			}
			if c.Requirements != "" {
				fmt.Fprintf(a.out, "\nRequirements:\n%s\n", strings.TrimSpace(c.Requirements))
			}
			return nil
		},
	}
}

func newCampaignsSubmitCmd(a *app) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "submit <id> <video-url>",
		Short: "Submit a clip to a campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			sub, err := client.Campaigns.Submit(cmd.Context(), id, args[1], title)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Submission #%d created (status: %s)\n", sub.ID, orDash(string(sub.Status)))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "clip title")
	return cmd
}

func newCampaignsSubmissionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submissions",
		Short: "List your submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			subs, err := client.Campaigns.GetMySubmissions(cmd.Context())
			if err != nil {
				return err
			}
			printSubmissions(a, subs)
			return nil
		},
	}
}

func printSubmissions(a *app, subs []models.Submission) {
	if len(subs) == 0 {
		fmt.Fprintln(a.out, "No submissions yet")
		return
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tCAMPAIGN\tSTATUS\tVIEWS\tEARNINGS\tVIDEO")
	for _, s := range subs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t$%s\t%s\n",
			s.ID, s.CampaignID, orDash(string(s.Status)), s.Views.Int64(), s.Earnings.StringFixed(2), s.VideoURL)
	}
	tw.Flush()
}
