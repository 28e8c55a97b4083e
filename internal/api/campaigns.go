package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nexus/internal/models"
	"nexus/pkg/protocol"
)

// CampaignFilter narrows GetAll. Zero fields are not sent; a nil
// ActiveOnly leaves the backend default in place.
type CampaignFilter struct {
	Platform   string
	Category   string
	ActiveOnly *bool
}

// Encode returns the query string in platform, category, active_only order.
func (f CampaignFilter) Encode() string {
	var parts []string
	if f.Platform != "" {
		parts = append(parts, "platform="+url.QueryEscape(f.Platform))
	}
	if f.Category != "" {
		parts = append(parts, "category="+url.QueryEscape(f.Category))
	}
	if f.ActiveOnly != nil {
		parts = append(parts, "active_only="+strconv.FormatBool(*f.ActiveOnly))
	}
	return strings.Join(parts, "&")
}

// CampaignsService lists campaigns and manages the caller's submissions.
type CampaignsService struct {
	client *Client
}

func (s *CampaignsService) GetAll(ctx context.Context, filter CampaignFilter) ([]models.Campaign, error) {
	return getList[models.Campaign](ctx, s.client, "/campaigns", WithRawQuery(filter.Encode()))
}

func (s *CampaignsService) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/campaigns/%d", id), nil, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Submit posts a clip to campaign id. The campaign id is also sent in the body.
func (s *CampaignsService) Submit(ctx context.Context, id int64, videoURL, title string) (*models.Submission, error) {
	req := protocol.SubmitRequest{VideoURL: videoURL, Title: title, CampaignID: id}
	var sub models.Submission
	if err := s.client.Do(ctx, http.MethodPost, fmt.Sprintf("/campaigns/%d/submit", id), req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *CampaignsService) GetMySubmissions(ctx context.Context) ([]models.Submission, error) {
	return getList[models.Submission](ctx, s.client, "/campaigns/my/submissions")
}
