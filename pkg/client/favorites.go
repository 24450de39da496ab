package client

import (
	"context"
	"sort"
	"sync"

	"github.com/reelstack/apiserver/types"
)

// FavoritesAPI is the slice of Client the view depends on.
type FavoritesAPI interface {
	AddFavorite(ctx context.Context, movieID string) ([]string, error)
	RemoveFavorite(ctx context.Context, movieID string) ([]string, error)
	Favorites(ctx context.Context) ([]types.Movie, error)
}

// FavoritesView holds a local copy of the user's favorites set and keeps
// it reconciled with the server. Toggle applies the change locally first
// so callers can render immediately, then issues the request; on failure
// the local change is reverted. Every state change fires OnChange with the
// current ids.
type FavoritesView struct {
	mu       sync.Mutex
	api      FavoritesAPI
	set      map[string]bool
	onChange func(ids []string)
}

// NewFavoritesView constructs a view over the given API. onChange may be
// nil.
func NewFavoritesView(api FavoritesAPI, onChange func(ids []string)) *FavoritesView {
	return &FavoritesView{
		api:      api,
		set:      make(map[string]bool),
		onChange: onChange,
	}
}

// Refresh replaces the local set with the server's.
func (v *FavoritesView) Refresh(ctx context.Context) error {
	movies, err := v.api.Favorites(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.set = make(map[string]bool, len(movies))
	for _, movie := range movies {
		v.set[movie.ExternalID] = true
	}
	v.mu.Unlock()

	v.notify()
	return nil
}

// Contains reports whether the movie id is in the local set.
func (v *FavoritesView) Contains(movieID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.set[movieID]
}

// IDs returns the local set in sorted order.
func (v *FavoritesView) IDs() []string {
	v.mu.Lock()
	ids := make([]string, 0, len(v.set))
	for id := range v.set {
		ids = append(ids, id)
	}
	v.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// Toggle flips the movie's membership. The flip is applied locally before
// the request is sent; if the request fails the flip is reverted and the
// error returned.
func (v *FavoritesView) Toggle(ctx context.Context, movieID string) error {
	v.mu.Lock()
	wasFavorite := v.set[movieID]
	v.apply(movieID, !wasFavorite)
	v.mu.Unlock()
	v.notify()

	var err error
	if wasFavorite {
		_, err = v.api.RemoveFavorite(ctx, movieID)
	} else {
		_, err = v.api.AddFavorite(ctx, movieID)
	}
	if err != nil {
		v.mu.Lock()
		v.apply(movieID, wasFavorite)
		v.mu.Unlock()
		v.notify()
		return err
	}
	return nil
}

// apply must be called with mu held.
func (v *FavoritesView) apply(movieID string, favorite bool) {
	if favorite {
		v.set[movieID] = true
	} else {
		delete(v.set, movieID)
	}
}

func (v *FavoritesView) notify() {
	if v.onChange == nil {
		return
	}
	v.onChange(v.IDs())
}
