package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/reelstack/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movieColumnNames() []string {
	return []string{"id", "external_id", "title", "description", "long_description", "release_date", "director", "cast_members", "image", "video_url", "genre", "price", "hd_price", "created_at", "updated_at"}
}

func movieRow(rows *sqlmock.Rows, id int, externalID, title string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, externalID, title, "", "", now, "", "", "", "", "Drama", 9.99, 12.99, now, now)
}

func TestMovieGetByExternalID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE external_id = $1`)).
		WithArgs("100").
		WillReturnRows(movieRow(sqlmock.NewRows(movieColumnNames()), 1, "100", "First"))

	repo := NewMovieRepository(db)
	movie, err := repo.GetByExternalID(context.Background(), "100")
	require.NoError(t, err)

	assert.Equal(t, "First", movie.Title)
	assert.Equal(t, "100", movie.ExternalID)
}

func TestMovieGetByExternalIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE external_id = $1`)).
		WithArgs("999").
		WillReturnRows(sqlmock.NewRows(movieColumnNames()))

	repo := NewMovieRepository(db)
	_, err = repo.GetByExternalID(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMovieListByExternalIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(movieColumnNames())
	movieRow(rows, 1, "100", "First")
	movieRow(rows, 2, "200", "Second")

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE external_id = ANY($1)`)).
		WithArgs(pq.Array([]string{"100", "200", "999"})).
		WillReturnRows(rows)

	repo := NewMovieRepository(db)
	movies, err := repo.ListByExternalIDs(context.Background(), []string{"100", "200", "999"})
	require.NoError(t, err)

	assert.Len(t, movies, 2)
}

func TestMovieListByExternalIDsEmptySet(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMovieRepository(db)
	movies, err := repo.ListByExternalIDs(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, movies)
}

func TestMovieList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) FROM movies`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	rows := sqlmock.NewRows(movieColumnNames())
	movieRow(rows, 1, "100", "First")
	movieRow(rows, 2, "200", "Second")

	mock.ExpectQuery(regexp.QuoteMeta(`OFFSET $1 LIMIT $2`)).
		WithArgs(0, 2).
		WillReturnRows(rows)

	repo := NewMovieRepository(db)
	movies, total, err := repo.List(context.Background(), 0, 2)
	require.NoError(t, err)

	assert.Len(t, movies, 2)
	assert.Equal(t, 5, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieUpsertInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO movies`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow(3, true))

	repo := NewMovieRepository(db)
	movie, inserted, err := repo.Upsert(context.Background(), types.Movie{ExternalID: "100", Title: "First"})
	require.NoError(t, err)

	assert.True(t, inserted)
	assert.Equal(t, 3, movie.ID)
}

func TestMovieUpsertRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (external_id) DO UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow(3, false))

	repo := NewMovieRepository(db)
	_, inserted, err := repo.Upsert(context.Background(), types.Movie{ExternalID: "100", Title: "First (Remastered)"})
	require.NoError(t, err)

	assert.False(t, inserted)
}
