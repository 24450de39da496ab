// Package listing provides pure transforms over in-memory movie lists:
// filtering, single-criterion sorting, and page slicing. The web client
// applies the same pipeline browser-side; the movies endpoint reuses it
// for query parameters.
package listing

import (
	"sort"
	"strings"

	"github.com/reelstack/apiserver/types"
)

// SortCriterion names a supported sort order. Exactly one applies at a time.
type SortCriterion string

const (
	SortNone        SortCriterion = ""
	SortPrice       SortCriterion = "price"
	SortReleaseDate SortCriterion = "releaseDate"
)

// ParseSortCriterion maps a raw query value to a criterion. Unknown values
// fall back to no sorting.
func ParseSortCriterion(raw string) SortCriterion {
	switch SortCriterion(raw) {
	case SortPrice:
		return SortPrice
	case SortReleaseDate:
		return SortReleaseDate
	default:
		return SortNone
	}
}

// Filter returns the movies whose title contains the query, case
// insensitively, and whose genre matches. An empty query or genre matches
// everything. The input slice is not modified.
func Filter(movies []types.Movie, query, genre string) []types.Movie {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]types.Movie, 0, len(movies))
	for _, movie := range movies {
		if query != "" && !strings.Contains(strings.ToLower(movie.Title), query) {
			continue
		}
		if genre != "" && movie.Genre != genre {
			continue
		}
		filtered = append(filtered, movie)
	}
	return filtered
}

// Sort returns a copy of the movies ordered by the criterion, ascending.
// With SortNone the copy keeps the input order. The sort is stable, so
// equal keys keep their relative order.
func Sort(movies []types.Movie, criterion SortCriterion) []types.Movie {
	sorted := make([]types.Movie, len(movies))
	copy(sorted, movies)

	switch criterion {
	case SortPrice:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	case SortReleaseDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ReleaseDate.Before(sorted[j].ReleaseDate)
		})
	}
	return sorted
}

// TotalPages reports how many pages the list spans at the given size.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total < 1 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the requested page of the list. Pages are 1-based and
// out-of-range pages clamp to the nearest valid one, so shrinking a
// filtered list never yields an empty page while items remain.
func Paginate(movies []types.Movie, page, pageSize int) []types.Movie {
	if pageSize < 1 {
		return movies
	}

	lastPage := TotalPages(len(movies), pageSize)
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}

	start := (page - 1) * pageSize
	if start >= len(movies) {
		return []types.Movie{}
	}
	end := start + pageSize
	if end > len(movies) {
		end = len(movies)
	}
	return movies[start:end]
}
