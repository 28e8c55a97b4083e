package main

import (
	"fmt"
	"os"

	"nexus/internal/client/cli"
	"nexus/internal/client/config"
	"nexus/internal/client/logger"
	"nexus/internal/sentry"
)

// Version is set via ldflags during build. e.g. -X main.Version=1.4.0
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if err := sentry.Init(cfg.SentryDSN, "nexus@"+Version); err != nil {
		logger.Warn("Error reporting disabled: %v", err)
	}
	defer sentry.Flush()

	cli.Version = Version
	cli.Execute(cfg)
}
