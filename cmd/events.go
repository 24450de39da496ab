/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/reelstack/apiserver/config"
	"github.com/reelstack/apiserver/internal/mq"
	"github.com/reelstack/apiserver/internal/server"
	"github.com/reelstack/apiserver/internal/services"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// eventsCmd groups event tooling.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Event broker tooling",
}

var eventsListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Subscribe to the domain event channels and log messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := zerolog.New(os.Stdout).With().Timestamp().Str("role", "events").Logger()
		cfg := config.LoadConfig()

		bus, err := server.BuildMQ(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if bus == nil {
			return errors.New("mq backend is disabled, set MQ_BACKEND")
		}
		defer bus.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		channels := []string{services.ChannelMovieAdded, services.ChannelUserRegistered}
		errCh := make(chan error, len(channels))
		for _, channel := range channels {
			channel := channel
			go func() {
				errCh <- bus.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
					log.Info().
						Str("channel", channel).
						Str("message_id", msg.ID).
						RawJSON("payload", msg.Data).
						Msg("event received")
					return nil
				})
			}()
		}

		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListenCmd)
}
