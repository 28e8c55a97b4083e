package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"nexus/internal/models"
	"nexus/pkg/protocol"
)

// ErrMissingAuthorizationCode is returned by CompleteOAuth when the
// provider redirect carries no code.
var ErrMissingAuthorizationCode = errors.New("oauth: authorization code not found")

const accountsPath = "/integrations/connected-accounts/"

// IntegrationsService links and inspects external social accounts.
type IntegrationsService struct {
	client *Client
}

// GetConnectURL returns the provider consent URL for platform.
func (s *IntegrationsService) GetConnectURL(ctx context.Context, platform models.Platform) (string, error) {
	var resp protocol.ConnectURLResponse
	endpoint := accountsPath + "connect_" + platform.Slug() + "/"
	if err := s.client.Do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// OAuthExchange trades an authorization code for a linked account.
func (s *IntegrationsService) OAuthExchange(ctx context.Context, platform models.Platform, code string) (*models.ConnectedAccount, error) {
	req := protocol.OAuthExchangeRequest{Platform: string(platform), Code: code}
	var account models.ConnectedAccount
	if err := s.client.Do(ctx, http.MethodPost, accountsPath+"oauth_exchange/", req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ManualLink links an account by handle. The backend verifies ownership
// later and reports progress through the account status.
func (s *IntegrationsService) ManualLink(ctx context.Context, platform models.Platform, handle string) (*models.ConnectedAccount, error) {
	req := protocol.ManualLinkRequest{Platform: string(platform), Handle: handle}
	var account models.ConnectedAccount
	if err := s.client.Do(ctx, http.MethodPost, accountsPath+"manual_link/", req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *IntegrationsService) GetAccounts(ctx context.Context) ([]models.ConnectedAccount, error) {
	return getList[models.ConnectedAccount](ctx, s.client, accountsPath)
}

func (s *IntegrationsService) GetAccountMetrics(ctx context.Context, id int64) (*models.AccountMetrics, error) {
	var metrics models.AccountMetrics
	if err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("%s%d/metrics/", accountsPath, id), nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (s *IntegrationsService) GetContentMetrics(ctx context.Context, id int64) ([]models.VideoInsight, error) {
	return getList[models.VideoInsight](ctx, s.client, fmt.Sprintf("%s%d/content_metrics/", accountsPath, id))
}

// UnlinkAccount removes a connected account. An empty 204 is success.
func (s *IntegrationsService) UnlinkAccount(ctx context.Context, id int64) error {
	return s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", accountsPath, id), nil, nil)
}

// PlatformFromState recovers the platform from the OAuth state parameter
// echoed back by the provider. Unrecognized states mean YouTube.
func PlatformFromState(state string) models.Platform {
	state = strings.ToLower(state)
	switch {
	case strings.Contains(state, "tiktok"):
		return models.PlatformTikTok
	case strings.Contains(state, "instagram"):
		return models.PlatformInstagram
	default:
		return models.PlatformYouTube
	}
}

// CompleteOAuth finishes an OAuth hand-off from the provider's redirect
// query (code and state parameters).
func (s *IntegrationsService) CompleteOAuth(ctx context.Context, query url.Values) (*models.ConnectedAccount, error) {
	code := query.Get("code")
	if code == "" {
		return nil, ErrMissingAuthorizationCode
	}
	return s.OAuthExchange(ctx, PlatformFromState(query.Get("state")), code)
}
