package api

import (
	"context"
	"fmt"
	"net/http"

	"nexus/internal/models"
	"nexus/pkg/protocol"
)

// SupportService manages support tickets.
type SupportService struct {
	client *Client
}

func (s *SupportService) CreateTicket(ctx context.Context, req protocol.CreateTicketRequest) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := s.client.Do(ctx, http.MethodPost, "/support/ticket", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *SupportService) GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/support/ticket/%d", id), nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AddMessage appends a message to ticket id. fromSupport marks replies
// written by support staff.
func (s *SupportService) AddMessage(ctx context.Context, id int64, message string, fromSupport bool) (*models.TicketMessage, error) {
	req := protocol.TicketMessageRequest{Message: message, IsFromSupport: fromSupport}
	var msg models.TicketMessage
	if err := s.client.Do(ctx, http.MethodPost, fmt.Sprintf("/support/ticket/%d/message", id), req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
