package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/reelstack/apiserver/types"
)

// MovieRepository handles persistence for cached catalog movies.
type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

const movieColumns = `id, external_id, title, description, long_description, release_date, director, cast_members, image, video_url, genre, price, hd_price, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }) (types.Movie, error) {
	var movie types.Movie
	err := row.Scan(
		&movie.ID,
		&movie.ExternalID,
		&movie.Title,
		&movie.Description,
		&movie.LongDescription,
		&movie.ReleaseDate,
		&movie.Director,
		&movie.Cast,
		&movie.Image,
		&movie.VideoURL,
		&movie.Genre,
		&movie.Price,
		&movie.HDPrice,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	return movie, err
}

func (r *MovieRepository) GetByExternalID(ctx context.Context, externalID string) (types.Movie, error) {
	const query = `
		SELECT ` + movieColumns + `
		FROM movies
		WHERE external_id = $1`
	movie, err := scanMovie(r.db.QueryRowContext(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Movie{}, ErrNotFound
		}
		return types.Movie{}, err
	}
	return movie, nil
}

// ListByExternalIDs returns the cached movies whose external ids appear in
// the given set. Ids with no cached entry are silently skipped.
func (r *MovieRepository) ListByExternalIDs(ctx context.Context, externalIDs []string) ([]types.Movie, error) {
	if len(externalIDs) == 0 {
		return []types.Movie{}, nil
	}

	const query = `
		SELECT ` + movieColumns + `
		FROM movies
		WHERE external_id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(externalIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]types.Movie, 0, len(externalIDs))
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return movies, nil
}

func (r *MovieRepository) List(ctx context.Context, offset, limit int) ([]types.Movie, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM movies`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + movieColumns + `
		FROM movies
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	movies := make([]types.Movie, 0, limit)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return movies, total, nil
}

// Upsert inserts the movie or, when a row with the same external id already
// exists, refreshes its metadata fields. The returned bool reports whether
// a new row was inserted.
func (r *MovieRepository) Upsert(ctx context.Context, movie types.Movie) (types.Movie, bool, error) {
	now := time.Now()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	const query = `
		INSERT INTO movies (external_id, title, description, long_description, release_date, director, cast_members, image, video_url, genre, price, hd_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (external_id) DO UPDATE
		SET title = EXCLUDED.title,
			description = EXCLUDED.description,
			long_description = EXCLUDED.long_description,
			release_date = EXCLUDED.release_date,
			director = EXCLUDED.director,
			cast_members = EXCLUDED.cast_members,
			image = EXCLUDED.image,
			video_url = EXCLUDED.video_url,
			genre = EXCLUDED.genre,
			price = EXCLUDED.price,
			hd_price = EXCLUDED.hd_price,
			updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS inserted`
	var inserted bool
	if err := r.db.QueryRowContext(
		ctx,
		query,
		movie.ExternalID,
		movie.Title,
		movie.Description,
		movie.LongDescription,
		movie.ReleaseDate,
		movie.Director,
		movie.Cast,
		movie.Image,
		movie.VideoURL,
		movie.Genre,
		movie.Price,
		movie.HDPrice,
		movie.CreatedAt,
		movie.UpdatedAt,
	).Scan(&movie.ID, &inserted); err != nil {
		return types.Movie{}, false, err
	}

	return movie, inserted, nil
}
