package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nexus/internal/client/chat"
	"nexus/pkg/protocol"
)

func newSupportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Open and follow support tickets",
	}
	cmd.AddCommand(newSupportCreateCmd(a), newSupportShowCmd(a), newSupportReplyCmd(a))
	return cmd
}

func newSupportCreateCmd(a *app) *cobra.Command {
	var req protocol.CreateTicketRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a support ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Email == "" || req.Message == "" {
				return errors.New("--email and --message are required")
			}
			if req.Name == "" {
				req.Name = chat.DefaultSupportName
			}
			client, err := a.api()
			if err != nil {
				return err
			}
			if req.SessionID, err = a.sess.ChatSessionID(); err != nil {
				return err
			}
			ticket, err := client.Support.CreateTicket(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Support ticket #%d created. We'll reply to %s.\n", ticket.ID, req.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "your email")
	cmd.Flags().StringVar(&req.Name, "name", "", "your name")
	cmd.Flags().StringVarP(&req.Message, "message", "m", "", "what you need help with")
	cmd.Flags().StringVar(&req.Subject, "subject", chat.SupportSubject, "ticket subject")
	return cmd
}

func newSupportShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a support ticket",
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
			t, err := client.Support.GetTicket(cmd.Context(), id)
			if err != nil {
				return err
			}
			field(a.out, "Ticket", fmt.Sprintf("#%d", t.ID))
			field(a.out, "Subject", orDash(t.Subject))
			field(a.out, "From", fmt.Sprintf("%s <%s>", orDash(t.UserName), t.UserEmail))
			field(a.out, "Status", orDash(t.Status))
			field(a.out, "Priority", orDash(t.Priority))
			field(a.out, "Assigned to", orDash(t.AssignedTo))
			field(a.out, "Created", formatTime(t.CreatedAt.Time))
			if t.Resolved() {
				field(a.out, "Resolved", formatTime(t.ResolvedAt.Time))
			}
			if t.InitialMessage != "" {
				fmt.Fprintf(a.out, "\n%s\n", t.InitialMessage)
			}
			return nil
		},
	}
}

func newSupportReplyCmd(a *app) *cobra.Command {
	var fromSupport bool
	cmd := &cobra.Command{
		Use:   "reply <id> <message>",
		Short: "Add a message to a support ticket",
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
			msg, err := client.Support.AddMessage(cmd.Context(), id, args[1], fromSupport)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Message #%d added to ticket #%d\n", msg.ID, id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromSupport, "from-support", false, "post as the support team")
	return cmd
}
