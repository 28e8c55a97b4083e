package api

import (
	"context"
	"net/http"
	"net/url"

	"nexus/internal/models"
	"nexus/pkg/protocol"
)

// ChatService talks to the support chatbot.
type ChatService struct {
	client *Client
}

// SendMessage posts an anonymous chat message under sessionID.
func (s *ChatService) SendMessage(ctx context.Context, message, sessionID string) (*models.ChatResponse, error) {
	return s.send(ctx, "/chat/message", message, sessionID)
}

// SendMessageAuthenticated posts a chat message tied to the logged-in user.
func (s *ChatService) SendMessageAuthenticated(ctx context.Context, message, sessionID string) (*models.ChatResponse, error) {
	return s.send(ctx, "/chat/message/authenticated", message, sessionID)
}

func (s *ChatService) send(ctx context.Context, endpoint, message, sessionID string) (*models.ChatResponse, error) {
	req := protocol.ChatRequest{Message: message, SessionID: sessionID}
	var resp models.ChatResponse
	if err := s.client.Do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetHistory returns the stored transcript for sessionID, oldest first.
func (s *ChatService) GetHistory(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return getList[models.ChatMessage](ctx, s.client, "/chat/history/"+url.PathEscape(sessionID))
}
