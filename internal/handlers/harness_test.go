package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/reelstack/apiserver/internal/services"
	"github.com/reelstack/apiserver/internal/session"
	"github.com/reelstack/apiserver/internal/store"
	"github.com/reelstack/apiserver/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testCookieName = "reelstack_session"

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
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
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

type memMovieRepo struct {
	mu     sync.Mutex
	movies map[string]types.Movie
}

func newMemMovieRepo(ids ...string) *memMovieRepo {
	repo := &memMovieRepo{movies: map[string]types.Movie{}}
	for i, id := range ids {
		repo.movies[id] = types.Movie{ID: i + 1, ExternalID: id, Title: "Movie " + id}
	}
	return repo
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
	_, existed := r.movies[movie.ExternalID]
	r.movies[movie.ExternalID] = movie
	return movie, !existed, nil
}

type harness struct {
	server *httptest.Server
	client *http.Client
	users  *memUserRepo
	movies *memMovieRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sessions := session.NewManager(rdb, 24*time.Hour, time.Hour, 30*24*time.Hour)
	users := newMemUserRepo()
	movies := newMemMovieRepo("100", "200", "300")

	userService := services.NewUserService(users, nil, nil, zerolog.Nop())
	favoriteService := services.NewFavoriteService(users, movies)
	requireSession := RequireSession(sessions, testCookieName)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, sessions, testCookieName, false)
	})
	router.Route("/favorites", func(r chi.Router) {
		FavoriteRouter(r, favoriteService, requireSession)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		server: server,
		client: &http.Client{Jar: jar},
		users:  users,
		movies: movies,
	}
}

func (h *harness) register(t *testing.T, email string) {
	t.Helper()
	h.registerExpectStatus(t, email, http.StatusCreated)
}

func (h *harness) registerExpectStatus(t *testing.T, email string, wantStatus int) {
	t.Helper()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("name", "Ada"))
	require.NoError(t, form.WriteField("email", email))
	require.NoError(t, form.WriteField("password", "hunter22"))
	require.NoError(t, form.WriteField("address", "1 Analytical Way"))
	require.NoError(t, form.WriteField("phone", "555-0100"))
	require.NoError(t, form.Close())

	resp, err := h.client.Post(h.server.URL+"/auth/register", form.FormDataContentType(), body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)
}

func (h *harness) login(t *testing.T, email string, rememberMe bool) *http.Response {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"email":      email,
		"password":   "hunter22",
		"rememberMe": rememberMe,
	})
	require.NoError(t, err)

	resp, err := h.client.Post(h.server.URL+"/auth/login", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func (h *harness) postJSON(t *testing.T, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := h.client.Post(h.server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func (h *harness) get(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := h.client.Get(h.server.URL + path)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var value T
	require.NoError(t, json.Unmarshal(data, &value))
	return value
}
