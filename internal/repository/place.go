package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/placeshare/placeshare/internal/model"
)

const placeColumns = `id, title, description, address, lat, lng, image_path, creator_id, created_at, updated_at`

// GetPlaceByID retrieves a place by its ID.
func (r *Repository) GetPlaceByID(ctx context.Context, id string) (*model.Place, error) {
	return getPlace(ctx, r.pool, id)
}

// ListPlacesByCreator returns the places owned by userID in creation order.
func (r *Repository) ListPlacesByCreator(ctx context.Context, userID string) ([]*model.Place, error) {
	query := `
		SELECT ` + placeColumns + `
		FROM places
		WHERE creator_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	places := []*model.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}

	return places, nil
}

// UpdatePlaceDetails writes the title, description and updated_at of a place.
// No other column is touched.
func (r *Repository) UpdatePlaceDetails(ctx context.Context, place *model.Place) error {
	query := `
		UPDATE places
		SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, place.ID, place.Title, place.Description, place.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update place: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaceNotFound
	}
	return nil
}

func getPlace(ctx context.Context, q querier, id string) (*model.Place, error) {
	query := `
		SELECT ` + placeColumns + `
		FROM places
		WHERE id = $1
	`

	place, err := scanPlace(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("failed to get place by ID: %w", err)
	}
	return place, nil
}

func insertPlace(ctx context.Context, q querier, place *model.Place) error {
	query := `
		INSERT INTO places (` + placeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		place.ID,
		place.Title,
		place.Description,
		place.Address,
		place.Location.Lat,
		place.Location.Lng,
		place.ImagePath,
		place.CreatorID,
		place.CreatedAt,
		place.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to insert place: %w", err)
	}
	return nil
}

// deletePlace removes a place row that is still owned by creatorID.
func deletePlace(ctx context.Context, q querier, id, creatorID string) error {
	tag, err := q.Exec(ctx, `DELETE FROM places WHERE id = $1 AND creator_id = $2`, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrPlaceNotFound
	}
	return nil
}

func scanPlace(row pgx.Row) (*model.Place, error) {
	var place model.Place
	err := row.Scan(
		&place.ID,
		&place.Title,
		&place.Description,
		&place.Address,
		&place.Location.Lat,
		&place.Location.Lng,
		&place.ImagePath,
		&place.CreatorID,
		&place.CreatedAt,
		&place.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &place, nil
}
