package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/reelstack/apiserver/types"
	"github.com/rs/zerolog"
)

// Event channels.
const (
	ChannelMovieAdded     = "catalog.movies"
	ChannelUserRegistered = "users.registered"
)

// CatalogProvider fetches movies from the upstream search API.
type CatalogProvider interface {
	Search(ctx context.Context) ([]types.Movie, error)
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

func publishJSON(ctx context.Context, events EventPublisher, channel string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = events.Publish(ctx, channel, body, map[string]string{"content-type": "application/json"})
	return err
}

// CatalogService refreshes the movie cache from the provider.
type CatalogService struct {
	provider CatalogProvider
	movies   MovieRepository
	events   EventPublisher
	log      zerolog.Logger
}

func NewCatalogService(provider CatalogProvider, movies MovieRepository, events EventPublisher, log zerolog.Logger) *CatalogService {
	return &CatalogService{provider: provider, movies: movies, events: events, log: log}
}

// cacheFallbackLimit caps how many cached titles are served when the
// provider is unreachable.
const cacheFallbackLimit = 200

// Sync fetches one page from the provider and upserts every result: new
// titles are inserted, known ones have their metadata refreshed. It returns
// the freshly transformed list, not the persisted rows. When the provider
// is unreachable and the cache holds titles from an earlier sync, the
// cached catalog is served instead. A movie-added event is published per
// newly inserted title, best effort.
func (s *CatalogService) Sync(ctx context.Context) ([]types.Movie, error) {
	movies, err := s.provider.Search(ctx)
	if err != nil {
		cached, _, cacheErr := s.movies.List(ctx, 0, cacheFallbackLimit)
		if cacheErr != nil || len(cached) == 0 {
			return nil, err
		}
		s.log.Warn().Err(err).Int("cached", len(cached)).Msg("provider unavailable, serving cached catalog")
		return cached, nil
	}

	var added int
	for _, movie := range movies {
		_, inserted, err := s.movies.Upsert(ctx, movie)
		if err != nil {
			return nil, err
		}
		if inserted {
			added++
			s.publishAdded(ctx, movie)
		}
	}

	s.log.Info().
		Int("fetched", len(movies)).
		Int("added", added).
		Msg("catalog sync complete")

	return movies, nil
}

func (s *CatalogService) publishAdded(ctx context.Context, movie types.Movie) {
	if s.events == nil {
		return
	}
	event := types.MovieAddedEvent{
		ExternalID: movie.ExternalID,
		Title:      movie.Title,
		Genre:      movie.Genre,
		AddedAt:    time.Now(),
	}
	if err := publishJSON(ctx, s.events, ChannelMovieAdded, event); err != nil {
		s.log.Warn().Err(err).Str("movie_id", movie.ExternalID).Msg("publish movie event failed")
	}
}
