package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bugbridge/disclosoor/pkg/proxy"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Start the development proxy",
	Long:  `Start the development proxy that rewrites API requests to the backend and serves static assets.`,
	RunE:  runProxy,
}

func init() {
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Set up context with signal handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	srv := proxy.NewServer(log, &cfg.Proxy)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting proxy server: %w", err)
	}

	// Wait for shutdown signal.
	sig := <-sigCh
	log.WithField("signal", sig).Info("Shutting down proxy server")
	cancel()

	if err := srv.Stop(); err != nil {
		return fmt.Errorf("stopping proxy server: %w", err)
	}

	return nil
}
