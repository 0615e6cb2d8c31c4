package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/carhive/carhive/internal/model"
)

// Common errors for car repository operations.
var (
	// ErrCarNotFound covers both a missing ID and an ID owned by
	// another user; the two are indistinguishable to callers.
	ErrCarNotFound = errors.New("car not found")
)

// CarFilter defines filters for listing cars. OwnerID is mandatory:
// every car query is owner-scoped.
type CarFilter struct {
	OwnerID string
	Search  string
}

// CreateCar inserts a new car into the database.
func (r *Repository) CreateCar(ctx context.Context, car *model.Car) error {
	tags, err := json.Marshal(car.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO cars (id, owner_id, title, description, images, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		car.ID,
		car.OwnerID,
		car.Title,
		car.Description,
		car.Images,
		tags,
		car.CreatedAt,
		car.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	return nil
}

// GetCar retrieves a car by ID, scoped to its owner.
func (r *Repository) GetCar(ctx context.Context, ownerID, id string) (*model.Car, error) {
	query := `
		SELECT id, owner_id, title, description, images, tags, created_at, updated_at
		FROM cars
		WHERE id = $1 AND owner_id = $2
	`

	car, err := scanCar(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	return car, nil
}

// ListCars retrieves all cars belonging to the filter's owner, newest
// first. A non-empty Search narrows the result to rows where any of
// title, description, or the three tag values contains the term,
// case-insensitively.
func (r *Repository) ListCars(ctx context.Context, filter CarFilter) ([]*model.Car, error) {
	query := `
		SELECT id, owner_id, title, description, images, tags, created_at, updated_at
		FROM cars
		WHERE owner_id = $1
	`
	args := []any{filter.OwnerID}

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query += `
		  AND (title ILIKE $2
		    OR description ILIKE $2
		    OR tags->>'car_type' ILIKE $2
		    OR tags->>'company' ILIKE $2
		    OR tags->>'dealer' ILIKE $2)
		`
		args = append(args, pattern)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	var cars []*model.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cars: %w", err)
	}

	return cars, nil
}

// UpdateCar overwrites a car's mutable fields, scoped to its owner.
func (r *Repository) UpdateCar(ctx context.Context, car *model.Car) error {
	tags, err := json.Marshal(car.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE cars
		SET title = $3, description = $4, images = $5, tags = $6, updated_at = $7
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		car.ID,
		car.OwnerID,
		car.Title,
		car.Description,
		car.Images,
		tags,
		car.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCarNotFound
	}

	return nil
}

// DeleteCar removes a car, scoped to its owner, and returns the
// deleted record so callers can release its media objects.
func (r *Repository) DeleteCar(ctx context.Context, ownerID, id string) (*model.Car, error) {
	query := `
		DELETE FROM cars
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, description, images, tags, created_at, updated_at
	`

	car, err := scanCar(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("failed to delete car: %w", err)
	}

	return car, nil
}

// scanCar scans a single row into a Car model.
func scanCar(row pgx.Row) (*model.Car, error) {
	var (
		car      model.Car
		tagsJSON []byte
	)

	err := row.Scan(
		&car.ID,
		&car.OwnerID,
		&car.Title,
		&car.Description,
		&car.Images,
		&tagsJSON,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &car.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}

	if car.Images == nil {
		car.Images = []string{}
	}

	return &car, nil
}

// escapeLike escapes LIKE wildcards so a search term matches literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
