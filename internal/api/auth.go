package api

import (
	"context"
	"fmt"
	"net/http"

	"nexus/internal/models"
	"nexus/pkg/protocol"
)

// AuthService covers registration, login and the current user profile.
type AuthService struct {
	client *Client
}

// Register creates an account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req protocol.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := s.client.Do(ctx, http.MethodPost, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token and stores it in the session.
// Nothing is stored when the response carries no token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*protocol.LoginResponse, error) {
	var resp protocol.LoginResponse
	req := protocol.LoginRequest{Username: username, Password: password}
	if err := s.client.Do(ctx, http.MethodPost, "/auth/login/", req, &resp); err != nil {
		return nil, err
	}
	if token := resp.Token(); token != "" {
		if err := s.client.session.SetToken(token); err != nil {
			return &resp, fmt.Errorf("login: %w", err)
		}
	}
	return &resp, nil
}

// Logout forgets the stored token. The backend is not contacted.
func (s *AuthService) Logout() error {
	return s.client.session.ClearToken()
}

func (s *AuthService) GetMe(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.Do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches the fields set in update and returns the new profile.
func (s *AuthService) UpdateProfile(ctx context.Context, update protocol.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := s.client.Do(ctx, http.MethodPatch, "/auth/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
