/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reelstack/apiserver/config"
	"github.com/reelstack/apiserver/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the reelstack API server",
	Long: `Starts the reelstack API server. Usage:

	reelstack server
`,
	Run: func(cmd *cobra.Command, args []string) {
		log := zerolog.New(os.Stdout).With().Timestamp().Str("role", "server").Logger()
		cfg := config.LoadConfig()

		srv, err := server.New(cmd.Context(), cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("server error")
			}
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown error")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
