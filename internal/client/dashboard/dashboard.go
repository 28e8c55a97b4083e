// Package dashboard loads the data behind the editor, admin and accounts
// views. Independent requests run concurrently; the first failure cancels
// the rest and is returned.
package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"nexus/internal/api"
	"nexus/internal/models"
)

// Source is the subset of the API the loaders use.
type Source interface {
	GetMe(ctx context.Context) (*models.User, error)
	GetStats(ctx context.Context) (*models.AdminStats, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	GetMySubmissions(ctx context.Context) ([]models.Submission, error)
	GetCampaigns(ctx context.Context, filter api.CampaignFilter) ([]models.Campaign, error)
	GetAccounts(ctx context.Context) ([]models.ConnectedAccount, error)
	GetAccountMetrics(ctx context.Context, id int64) (*models.AccountMetrics, error)
}

// APISource adapts an api.Client to Source.
type APISource struct {
	Client *api.Client
}

func (s APISource) GetMe(ctx context.Context) (*models.User, error) {
	return s.Client.Auth.GetMe(ctx)
}

func (s APISource) GetStats(ctx context.Context) (*models.AdminStats, error) {
	return s.Client.Admin.GetStats(ctx)
}

func (s APISource) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.Client.Admin.GetUsers(ctx)
}

func (s APISource) GetMySubmissions(ctx context.Context) ([]models.Submission, error) {
	return s.Client.Campaigns.GetMySubmissions(ctx)
}

func (s APISource) GetCampaigns(ctx context.Context, filter api.CampaignFilter) ([]models.Campaign, error) {
	return s.Client.Campaigns.GetAll(ctx, filter)
}

func (s APISource) GetAccounts(ctx context.Context) ([]models.ConnectedAccount, error) {
	return s.Client.Integrations.GetAccounts(ctx)
}

func (s APISource) GetAccountMetrics(ctx context.Context, id int64) (*models.AccountMetrics, error) {
	return s.Client.Integrations.GetAccountMetrics(ctx, id)
}

// Admin is the admin overview.
type Admin struct {
	Me    *models.User
	Stats *models.AdminStats
	Users []models.User
}

// Admins counts users holding the admin role.
func (a *Admin) Admins() int {
	n := 0
	for _, u := range a.Users {
		if u.IsAdmin() {
			n++
		}
	}
	return n
}

// LoadAdmin fetches the current user, platform stats and the user list.
func LoadAdmin(ctx context.Context, src Source) (*Admin, error) {
	var out Admin
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		me, err := src.GetMe(ctx)
		out.Me = me
		return err
	})
	g.Go(func() error {
		stats, err := src.GetStats(ctx)
		out.Stats = stats
		return err
	})
	g.Go(func() error {
		users, err := src.GetUsers(ctx)
		out.Users = users
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Editor is the editor overview.
type Editor struct {
	Me          *models.User
	Submissions []models.Submission
	Campaigns   []models.Campaign
}

// TotalViews sums views across the editor's submissions.
func (e *Editor) TotalViews() int64 {
	var total int64
	for _, s := range e.Submissions {
		total += s.Views.Int64()
	}
	return total
}

// TotalEarnings sums earnings across the editor's submissions.
func (e *Editor) TotalEarnings() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Submissions {
		total = total.Add(s.Earnings)
	}
	return total
}

// CountByStatus groups submissions by review status.
func (e *Editor) CountByStatus() map[models.SubmissionStatus]int {
	counts := make(map[models.SubmissionStatus]int)
	for _, s := range e.Submissions {
		counts[s.Status]++
	}
	return counts
}

// LoadEditor fetches the current user, their submissions and active campaigns.
func LoadEditor(ctx context.Context, src Source) (*Editor, error) {
	var out Editor
	activeOnly := true
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		me, err := src.GetMe(ctx)
		out.Me = me
		return err
	})
	g.Go(func() error {
		subs, err := src.GetMySubmissions(ctx)
		out.Submissions = subs
		return err
	})
	g.Go(func() error {
		campaigns, err := src.GetCampaigns(ctx, api.CampaignFilter{ActiveOnly: &activeOnly})
		out.Campaigns = campaigns
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccountView is a connected account with freshly fetched metrics.
type AccountView struct {
	Account models.ConnectedAccount
	Metrics models.AccountMetrics
}

// Accounts is the connected accounts overview.
type Accounts struct {
	Items []AccountView
}

// Totals sums metrics across every account.
func (a *Accounts) Totals() models.AccountMetrics {
	var total models.AccountMetrics
	for _, item := range a.Items {
		total = total.Add(item.Metrics)
	}
	return total
}

// maxMetricsFetches bounds concurrent metrics requests.
const maxMetricsFetches = 8

// LoadAccounts lists connected accounts, then fetches metrics for each of
// them concurrently. Items keep the order of the account list.
func LoadAccounts(ctx context.Context, src Source) (*Accounts, error) {
	accounts, err := src.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]AccountView, len(accounts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxMetricsFetches)

	for i, acc := range accounts {
		items[i].Account = acc
		g.Go(func() error {
			m, err := src.GetAccountMetrics(ctx, acc.ID)
			if err != nil {
				return err
			}
			items[i].Metrics = *m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Accounts{Items: items}, nil
}
