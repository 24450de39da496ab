package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/reelstack/apiserver/internal/store"
	"github.com/reelstack/apiserver/types"
)

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	mu        sync.Mutex
	nextID    int
	users     map[int]types.User
	updateErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (r *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return types.User{}, r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

// memMovieRepo is an in-memory MovieRepository keyed by external id.
type memMovieRepo struct {
	mu     sync.Mutex
	nextID int
	movies map[string]types.Movie
}

func newMemMovieRepo() *memMovieRepo {
	return &memMovieRepo{nextID: 1, movies: map[string]types.Movie{}}
}

func (r *memMovieRepo) GetByExternalID(ctx context.Context, externalID string) (types.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	movie, ok := r.movies[externalID]
	if !ok {
		return types.Movie{}, store.ErrNotFound
	}
	return movie, nil
}

func (r *memMovieRepo) ListByExternalIDs(ctx context.Context, externalIDs []string) ([]types.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	movies := make([]types.Movie, 0, len(externalIDs))
	for _, id := range externalIDs {
		if movie, ok := r.movies[id]; ok {
			movies = append(movies, movie)
		}
	}
	return movies, nil
}

func (r *memMovieRepo) List(ctx context.Context, offset, limit int) ([]types.Movie, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]types.Movie, 0, len(r.movies))
	for _, movie := range r.movies {
		all = append(all, movie)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit < 1 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memMovieRepo) Upsert(ctx context.Context, movie types.Movie) (types.Movie, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.movies[movie.ExternalID]
	if ok {
		movie.ID = existing.ID
		movie.CreatedAt = existing.CreatedAt
		r.movies[movie.ExternalID] = movie
		return movie, false, nil
	}
	movie.ID = r.nextID
	r.nextID++
	r.movies[movie.ExternalID] = movie
	return movie, true, nil
}

func (r *memMovieRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movies)
}

// fakeProvider returns a canned search result.
type fakeProvider struct {
	movies []types.Movie
	err    error
}

func (p *fakeProvider) Search(ctx context.Context) ([]types.Movie, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.movies, nil
}

// memPublisher records published messages.
type memPublisher struct {
	mu       sync.Mutex
	err      error
	messages map[string][][]byte
}

func newMemPublisher() *memPublisher {
	return &memPublisher{messages: map[string][][]byte{}}
}

func (p *memPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.messages[channel] = append(p.messages[channel], data)
	return "msg-1", nil
}

func (p *memPublisher) count(channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages[channel])
}

var errStoreDown = errors.New("store unavailable")
