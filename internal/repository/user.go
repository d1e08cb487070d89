package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/placeshare/placeshare/internal/model"
)

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, image_path, place_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	placeIDs := user.PlaceIDs
	if placeIDs == nil {
		placeIDs = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.ImagePath,
		pq.Array(placeIDs),
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return getUser(ctx, r.pool, id)
}

// ListUsers returns all users without credentials, oldest first.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, name, email, image_path, place_ids, created_at
		FROM users
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.ImagePath,
			&user.PlaceIDs,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func getUser(ctx context.Context, q querier, id string) (*model.User, error) {
	query := `
		SELECT id, name, email, password_hash, image_path, place_ids, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ImagePath,
		&user.PlaceIDs,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// appendUserPlace adds placeID to the user's place list once. The UPDATE
// takes the user's row lock, so concurrent appends serialize.
func appendUserPlace(ctx context.Context, q querier, userID, placeID string) error {
	query := `
		UPDATE users
		SET place_ids = CASE WHEN $2 = ANY(place_ids) THEN place_ids ELSE array_append(place_ids, $2) END
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, userID, placeID)
	if err != nil {
		return fmt.Errorf("failed to link place to user: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrUserNotFound
	}
	return nil
}

func removeUserPlace(ctx context.Context, q querier, userID, placeID string) error {
	query := `
		UPDATE users
		SET place_ids = array_remove(place_ids, $2)
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, userID, placeID)
	if err != nil {
		return fmt.Errorf("failed to unlink place from user: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrUserNotFound
	}
	return nil
}
