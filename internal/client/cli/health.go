package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			status, err := client.Health.Check(cmd.Context())
			if err != nil {
				return err
			}
			if !status.Healthy() {
				return fmt.Errorf("backend at %s reports status %q", client.BaseURL(), status.Status)
			}
			fmt.Fprintf(a.out, "Backend at %s is %s\n", client.BaseURL(), status.Status)
			return nil
		},
	}
}
