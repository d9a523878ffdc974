package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pdfchat/internal/chat"
	"pdfchat/internal/config"
	"pdfchat/internal/gateway"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "pdfchat",
	Short:         "Chat with a PDF through a retrieval backend",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

// newGatewayClient builds the backend client from config:
// backend.base_url with backend.timeout.
var newGatewayClient = func() (*gateway.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	timeout, err := time.ParseDuration(cfg.Backend.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid backend.timeout %q: %w", cfg.Backend.Timeout, err)
	}

	return gateway.NewClient(cfg.Backend.BaseURL, timeout), nil
}

func newController() (*chat.Controller, error) {
	gw, err := newGatewayClient()
	if err != nil {
		return nil, err
	}
	return chat.NewController(gw), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
