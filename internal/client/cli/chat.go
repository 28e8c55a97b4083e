package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nexus/internal/api"
	"nexus/internal/client/chat"
	"nexus/internal/client/events"
	"nexus/internal/client/inspector"
	"nexus/internal/client/logger"
	"nexus/internal/client/tui"
	"nexus/internal/models"
)

// inspectorCapacity is how many exchanges the inspector keeps.
const inspectorCapacity = 200

// authenticatedChat sends widget messages through the authenticated endpoint.
type authenticatedChat struct {
	*api.ChatService
}

func (c authenticatedChat) SendMessage(ctx context.Context, message, sessionID string) (*models.ChatResponse, error) {
	return c.ChatService.SendMessageAuthenticated(ctx, message, sessionID)
}

func chatAPI(client *api.Client, authenticated bool) chat.ChatAPI {
	if authenticated {
		return authenticatedChat{client.Chat}
	}
	return client.Chat
}

func newChatCmd(a *app) *cobra.Command {
	var inspect, authenticated bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the assistant chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			bus := events.NewBus()
			defer bus.Close()
			a.bus = bus

			var inspectorURL string
			if inspect {
				store := inspector.NewInMemoryStore(inspectorCapacity)
				a.transport = inspector.NewRecorder(nil, store)
				inspector.NewServer(a.cfg.InspectorAddr, store).StartAsync(ctx)
				inspectorURL = "http://" + a.cfg.InspectorAddr
			}

			client, err := a.api()
			if err != nil {
				return err
			}
			sessionID, err := a.sess.ChatSessionID()
			if err != nil {
				return err
			}

			logger.SetEventBus(bus)
			logger.SetTUIMode(true)
			defer logger.SetTUIMode(false)

			widget := chat.NewWidget(chatAPI(client, authenticated), client.Support, sessionID, chat.WithEventBus(bus))
			tui.Version = Version
			return tui.Run(widget, bus, inspectorURL)
		},
	}
	cmd.Flags().BoolVar(&inspect, "inspect", false, "record API traffic and serve the request inspector")
	cmd.Flags().BoolVar(&authenticated, "auth", false, "send messages as the signed-in user")
	cmd.AddCommand(newChatSendCmd(a), newChatHistoryCmd(a))
	return cmd
}

func newChatSendCmd(a *app) *cobra.Command {
	var authenticated bool
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message to the assistant and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.New("message must not be empty")
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			sessionID, err := a.sess.ChatSessionID()
			if err != nil {
				return err
			}
			resp, err := chatAPI(client, authenticated).SendMessage(cmd.Context(), message, sessionID)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, resp.BotMessage.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&authenticated, "auth", false, "send as the signed-in user")
	return cmd
}

func newChatHistoryCmd(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the chat transcript of this session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			if sessionID == "" {
				if sessionID, err = a.sess.ChatSessionID(); err != nil {
					return err
				}
			}
			history, err := client.Chat.GetHistory(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(a.out, "No messages yet")
				return nil
			}
			for _, m := range history {
				who := "you"
				if m.IsBot {
					who = "nexus"
				}
				fmt.Fprintf(a.out, "[%s] %s: %s\n", formatTime(m.CreatedAt.Time), who, m.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "chat session id (defaults to this device's session)")
	return cmd
}
