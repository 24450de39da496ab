/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/reelstack/apiserver/config"
	"github.com/reelstack/apiserver/internal/catalog"
	"github.com/reelstack/apiserver/internal/db"
	"github.com/reelstack/apiserver/internal/server"
	"github.com/reelstack/apiserver/internal/services"
	"github.com/reelstack/apiserver/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// syncCmd runs a one-shot catalog sync against the provider.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the catalog from the provider and refresh the movie cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := zerolog.New(os.Stdout).With().Timestamp().Str("role", "sync").Logger()
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		bus, err := server.BuildMQ(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		var events services.EventPublisher
		if bus != nil {
			events = bus
			defer bus.Close()
		}

		movieRepo := store.NewMovieRepository(dbConn)
		catalogService := services.NewCatalogService(catalog.NewClient(cfg.Catalog), movieRepo, events, log)

		movies, err := catalogService.Sync(cmd.Context())
		if err != nil {
			return err
		}

		log.Info().Int("movies", len(movies)).Msg("sync finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
