package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reelstack/apiserver/internal/services"
	"github.com/reelstack/apiserver/internal/store"
)

// FavoriteHandler serves the per-user favorites set.
type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

func NewFavoriteHandler(favoriteService *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// FavoriteRouter registers favorites routes on the given router. All of
// them require a session.
func FavoriteRouter(r chi.Router, favoriteService *services.FavoriteService, requireSession func(http.Handler) http.Handler) {
	handler := NewFavoriteHandler(favoriteService)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", handler.ListFavorites)
		r.Post("/add", handler.AddFavorite)
		r.Post("/remove", handler.RemoveFavorite)
	})
}

// ListFavorites returns the signed-in user's favorited movies.
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	movies, err := h.favoriteService.List(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// AddFavorite puts a movie id into the signed-in user's favorites. The
// movie must exist in the catalog cache.
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req FavoriteMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	movieID := services.NormalizeMovieID(req.MovieID)
	if movieID == "" {
		writeError(w, http.StatusBadRequest, "movie id is required")
		return
	}

	favorites, err := h.favoriteService.Add(r.Context(), userID, movieID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}

	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: favorites})
}

// RemoveFavorite drops a movie id from the favorites set. The request body
// may name a user id; when present it designates the target user, and a
// nonexistent one yields 404. Without it the session user is the target.
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	sessionUserID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req FavoriteMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	movieID := services.NormalizeMovieID(req.MovieID)
	if movieID == "" {
		writeError(w, http.StatusBadRequest, "movie id is required")
		return
	}

	userID := sessionUserID
	if req.UserID != nil {
		userID = *req.UserID
	}

	favorites, err := h.favoriteService.Remove(r.Context(), userID, movieID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}

	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: favorites})
}

// FavoriteMutationRequest carries a favorites mutation. MovieID accepts
// either a JSON string or number.
type FavoriteMutationRequest struct {
	MovieID any  `json:"movieId"`
	UserID  *int `json:"userId,omitempty"`
}

// FavoritesResponse returns the mutated favorites set.
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}
