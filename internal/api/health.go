package api

import (
	"context"
	"net/http"

	"nexus/internal/models"
)

// HealthService probes backend liveness. The health endpoint lives at the
// origin root, outside the API prefix, and is called without a token.
type HealthService struct {
	client *Client
}

func (s *HealthService) Check(ctx context.Context) (*models.HealthStatus, error) {
	var status models.HealthStatus
	target := s.client.baseURL + "/health"
	if err := s.client.request(ctx, http.MethodGet, target, "/health", nil, &status, nil, false); err != nil {
		return nil, err
	}
	return &status, nil
}
