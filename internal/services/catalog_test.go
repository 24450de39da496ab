package services

import (
	"context"
	"testing"

	"github.com/reelstack/apiserver/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() []types.Movie {
	return []types.Movie{
		{ExternalID: "100", Title: "First", Genre: "Drama", Price: 9.99},
		{ExternalID: "200", Title: "Second", Genre: "Comedy", Price: 4.99},
	}
}

func TestSyncInsertsAndReturnsFetchedList(t *testing.T) {
	movies := newMemMovieRepo()
	provider := &fakeProvider{movies: catalogFixture()}
	service := NewCatalogService(provider, movies, nil, zerolog.Nop())

	fetched, err := service.Sync(context.Background())
	require.NoError(t, err)
	assert.Len(t, fetched, 2)
	assert.Equal(t, 2, movies.len())
}

func TestSyncTwiceCreatesNoDuplicates(t *testing.T) {
	movies := newMemMovieRepo()
	provider := &fakeProvider{movies: catalogFixture()}
	service := NewCatalogService(provider, movies, nil, zerolog.Nop())

	_, err := service.Sync(context.Background())
	require.NoError(t, err)
	_, err = service.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, movies.len())
}

func TestSyncRefreshesExistingMetadata(t *testing.T) {
	movies := newMemMovieRepo()
	provider := &fakeProvider{movies: catalogFixture()}
	service := NewCatalogService(provider, movies, nil, zerolog.Nop())

	_, err := service.Sync(context.Background())
	require.NoError(t, err)

	provider.movies = []types.Movie{
		{ExternalID: "100", Title: "First (Remastered)", Genre: "Drama", Price: 12.99},
	}
	_, err = service.Sync(context.Background())
	require.NoError(t, err)

	stored, err := movies.GetByExternalID(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, "First (Remastered)", stored.Title)
	assert.Equal(t, 12.99, stored.Price)
}

func TestSyncPublishesOnlyNewTitles(t *testing.T) {
	movies := newMemMovieRepo()
	provider := &fakeProvider{movies: catalogFixture()}
	publisher := newMemPublisher()
	service := NewCatalogService(provider, movies, publisher, zerolog.Nop())

	_, err := service.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, publisher.count(ChannelMovieAdded))

	// A second identical sync adds nothing and publishes nothing.
	_, err = service.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, publisher.count(ChannelMovieAdded))
}

func TestSyncPublishFailureDoesNotFailSync(t *testing.T) {
	movies := newMemMovieRepo()
	provider := &fakeProvider{movies: catalogFixture()}
	publisher := newMemPublisher()
	publisher.err = errStoreDown
	service := NewCatalogService(provider, movies, publisher, zerolog.Nop())

	fetched, err := service.Sync(context.Background())
	require.NoError(t, err)
	assert.Len(t, fetched, 2)
}

func TestSyncProviderErrorWithEmptyCache(t *testing.T) {
	movies := newMemMovieRepo()
	provider := &fakeProvider{err: errStoreDown}
	service := NewCatalogService(provider, movies, nil, zerolog.Nop())

	_, err := service.Sync(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, movies.len())
}

func TestSyncServesCacheWhenProviderDown(t *testing.T) {
	movies := newMemMovieRepo()
	provider := &fakeProvider{movies: catalogFixture()}
	service := NewCatalogService(provider, movies, nil, zerolog.Nop())

	_, err := service.Sync(context.Background())
	require.NoError(t, err)

	provider.err = errStoreDown
	fetched, err := service.Sync(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(fetched))
	for _, movie := range fetched {
		ids = append(ids, movie.ExternalID)
	}
	assert.ElementsMatch(t, []string{"100", "200"}, ids)
}
