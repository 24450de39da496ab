package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/reelstack/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT id, name, email, password_hash, address, phone, profile_picture, favorites, created_at, updated_at
		FROM users
		WHERE id = $1`
	var user types.User
	var favoritesJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Address,
		&user.Phone,
		&user.ProfilePicture,
		&favoritesJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	// A bad favorites value must not surface as an empty set: a later
	// full-record Update would persist the loss.
	if err := json.Unmarshal(favoritesJSON, &user.Favorites); err != nil {
		return types.User{}, fmt.Errorf("decode favorites: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, name, email, password_hash, address, phone, profile_picture, favorites, created_at, updated_at
		FROM users
		WHERE email = $1`
	var user types.User
	var favoritesJSON []byte
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Address,
		&user.Phone,
		&user.ProfilePicture,
		&favoritesJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	if err := json.Unmarshal(favoritesJSON, &user.Favorites); err != nil {
		return types.User{}, fmt.Errorf("decode favorites: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Favorites == nil {
		user.Favorites = []string{}
	}

	favoritesJSON, err := json.Marshal(user.Favorites)
	if err != nil {
		return types.User{}, err
	}

	const query = `
		INSERT INTO users (name, email, password_hash, address, phone, profile_picture, favorites, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Address,
		user.Phone,
		user.ProfilePicture,
		favoritesJSON,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()
	if user.Favorites == nil {
		user.Favorites = []string{}
	}

	favoritesJSON, err := json.Marshal(user.Favorites)
	if err != nil {
		return types.User{}, err
	}

	const query = `
		UPDATE users
		SET name = $1,
			email = $2,
			password_hash = $3,
			address = $4,
			phone = $5,
			profile_picture = $6,
			favorites = $7,
			updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Address,
		user.Phone,
		user.ProfilePicture,
		favoritesJSON,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
