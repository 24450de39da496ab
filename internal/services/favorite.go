package services

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/reelstack/apiserver/types"
)

// MovieRepository defines persistence operations for cached movies.
type MovieRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (types.Movie, error)
	ListByExternalIDs(ctx context.Context, externalIDs []string) ([]types.Movie, error)
	List(ctx context.Context, offset, limit int) ([]types.Movie, int, error)
	Upsert(ctx context.Context, movie types.Movie) (types.Movie, bool, error)
}

// FavoriteService manages the per-user favorites set. The set is stored on
// the user record as external movie ids; reads resolve it against the movie
// cache.
type FavoriteService struct {
	users  UserRepository
	movies MovieRepository
}

func NewFavoriteService(users UserRepository, movies MovieRepository) *FavoriteService {
	return &FavoriteService{users: users, movies: movies}
}

// NormalizeMovieID renders a movie id into its canonical string form.
// Clients send ids as either JSON strings or numbers; both forms of the
// same id must compare equal.
func NormalizeMovieID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case nil:
		return ""
	default:
		return ""
	}
}

// List returns the user's favorited movies. Ids with no cached movie are
// omitted; order is unspecified.
func (s *FavoriteService) List(ctx context.Context, userID int) ([]types.Movie, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.movies.ListByExternalIDs(ctx, user.Favorites)
}

// Add puts the movie id into the user's favorites. Adding an id that is
// already present is a no-op and does not touch the store. The movie must
// exist in the cache; store.ErrNotFound propagates otherwise.
func (s *FavoriteService) Add(ctx context.Context, userID int, movieID string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.movies.GetByExternalID(ctx, movieID); err != nil {
		return nil, err
	}

	for _, id := range user.Favorites {
		if id == movieID {
			return user.Favorites, nil
		}
	}

	user.Favorites = append(user.Favorites, movieID)
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	return updated.Favorites, nil
}

// Remove drops every occurrence of the movie id from the user's favorites,
// comparing ids in normalized string form. Removing an absent id leaves
// the set unchanged.
func (s *FavoriteService) Remove(ctx context.Context, userID int, movieID string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(user.Favorites))
	for _, id := range user.Favorites {
		if id != movieID {
			kept = append(kept, id)
		}
	}

	user.Favorites = kept
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	return updated.Favorites, nil
}
