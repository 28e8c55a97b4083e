package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nexus/internal/api"
	"nexus/internal/client/config"
	"nexus/internal/client/events"
	"nexus/internal/sentry"
	"nexus/internal/session"
)

// Version should be injected via ldflags. Default for dev.
var Version = "dev"

// app is the state shared by every command. The API client is created on
// first use so that commands can install a transport or event bus first.
type app struct {
	cfg    *config.Config
	apiURL string

	out io.Writer
	in  *bufio.Reader

	transport  http.RoundTripper
	bus        *events.Bus
	sess       *session.Session
	client     *api.Client
	closeStore func() error
}

func newRootCmd(cfg *config.Config) (*cobra.Command, *app) {
	a := &app{cfg: cfg, out: os.Stdout, in: bufio.NewReader(os.Stdin)}

	root := &cobra.Command{
		Use:           "nexus",
		Short:         "Command line client for the Nexus clipping marketplace",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.out = cmd.OutOrStdout()
			a.in = bufio.NewReader(cmd.InOrStdin())
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides NEXUS_API_URL)")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newMeCmd(a),
		newProfileCmd(a),
		newDashboardCmd(a),
		newCampaignsCmd(a),
		newChatCmd(a),
		newSupportCmd(a),
		newAdminCmd(a),
		newAccountsCmd(a),
		newHealthCmd(a),
	)
	return root, a
}

// api returns the API client, opening the session store on first use.
func (a *app) api() (*api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.apiURL != "" {
		a.cfg.APIURL = a.apiURL
		if err := a.cfg.Validate(); err != nil {
			return nil, err
		}
	}

	store, closeFn, err := a.cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	a.closeStore = closeFn
	a.sess = session.New(store)

	httpClient := &http.Client{Timeout: a.cfg.HTTPTimeout, Transport: a.transport}
	a.client = api.New(a.cfg.APIURL, a.sess,
		api.WithHTTPClient(httpClient),
		api.WithEventBus(a.bus),
		api.WithUserAgent("nexus-cli/"+Version),
	)
	return a.client, nil
}

func (a *app) close() {
	if a.closeStore != nil {
		a.closeStore()
		a.closeStore = nil
	}
}

// prompt reads one line from the command input.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// Execute runs the command line and exits with status 1 on failure.
func Execute(cfg *config.Config) {
	root, a := newRootCmd(cfg)
	err := root.Execute()
	a.close()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", api.Message(err))
	if api.IsUnauthorized(err) {
		fmt.Fprintln(os.Stderr, "Your session has expired. Run 'nexus login' to sign in again.")
	} else if api.StatusCode(err) == 0 && sentry.Enabled() {
		sentry.CaptureErrorf(err, "nexus %s", strings.Join(os.Args[1:], " "))
	}
	sentry.Flush()
	os.Exit(1)
}
