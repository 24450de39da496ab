package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/reelstack/apiserver/internal/listing"
	"github.com/reelstack/apiserver/internal/services"
)

var (
	errInvalidPage     = errors.New("invalid page")
	errInvalidPageSize = errors.New("invalid page size")
	errPageWithoutSize = errors.New("page requires pageSize")
)

// MovieHandler serves the catalog.
type MovieHandler struct {
	catalogService *services.CatalogService
}

func NewMovieHandler(catalogService *services.CatalogService) *MovieHandler {
	return &MovieHandler{catalogService: catalogService}
}

// MovieRouter registers catalog routes on the given router.
func MovieRouter(r chi.Router, catalogService *services.CatalogService) {
	handler := NewMovieHandler(catalogService)

	r.Get("/", handler.ListMovies)
}

// ListMovies refreshes the movie cache from the provider and returns the
// fetched list. Optional query parameters filter, sort, and paginate the
// result server-side; without them the raw provider page is returned.
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalogService.Sync(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch movies")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	genre := strings.TrimSpace(r.URL.Query().Get("genre"))
	if query != "" || genre != "" {
		movies = listing.Filter(movies, query, genre)
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("sort")); raw != "" {
		movies = listing.Sort(movies, listing.ParseSortCriterion(raw))
	}

	page, pageSize, err := parseListingPage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if pageSize > 0 {
		movies = listing.Paginate(movies, page, pageSize)
	}

	writeJSON(w, http.StatusOK, movies)
}

func parseListingPage(r *http.Request) (page, pageSize int, err error) {
	rawPage := strings.TrimSpace(r.URL.Query().Get("page"))
	rawSize := strings.TrimSpace(r.URL.Query().Get("pageSize"))
	if rawSize == "" {
		if rawPage != "" {
			return 0, 0, errPageWithoutSize
		}
		return 0, 0, nil
	}
	pageSize, convErr := strconv.Atoi(rawSize)
	if convErr != nil || pageSize < 1 {
		return 0, 0, errInvalidPageSize
	}

	page = 1
	if rawPage != "" {
		page, convErr = strconv.Atoi(rawPage)
		if convErr != nil || page < 1 {
			return 0, 0, errInvalidPage
		}
	}
	return page, pageSize, nil
}
