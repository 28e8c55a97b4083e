package api

import (
	"context"
	"net/http"

	"nexus/internal/models"
)

// AdminService exposes the admin dashboard endpoints. Access control is
// enforced by the backend only.
type AdminService struct {
	client *Client
}

func (s *AdminService) GetStats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	if err := s.client.Do(ctx, http.MethodGet, "/submissions/dashboard/admin/", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *AdminService) GetUsers(ctx context.Context) ([]models.User, error) {
	return getList[models.User](ctx, s.client, "/auth/users/")
}

func (s *AdminService) GetAllSubmissions(ctx context.Context) ([]models.Submission, error) {
	return getList[models.Submission](ctx, s.client, "/submissions/")
}
