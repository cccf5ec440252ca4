package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fluentphrases/backend/internal/database"
	"github.com/fluentphrases/backend/internal/models"
)

// ErrReadingNotFound is returned when a reading is not found
var ErrReadingNotFound = errors.New("reading not found")

// ReadingRepository handles reading database operations
type ReadingRepository struct {
	db *database.DB
}

// NewReadingRepository creates a new reading repository
func NewReadingRepository(db *database.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// ReadingListResult contains readings and total count
type ReadingListResult struct {
	Readings []models.Reading
	Total    int
}

// List returns readings matching the filter
func (r *ReadingRepository) List(ctx context.Context, filter models.ReadingFilter) (*ReadingListResult, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argNum := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argNum))
		args = append(args, filter.Category)
		argNum++
	}

	if len(filter.Categories) > 0 {
		conditions = append(conditions, fmt.Sprintf("category = ANY($%d)", argNum))
		args = append(args, filter.Categories)
		argNum++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM readings WHERE %s`, whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count readings: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, title, category, english_text, spanish_translation, image_url, created_at, updated_at
		FROM readings
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`, whereClause, argNum, argNum+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var rd models.Reading
		if err := rows.Scan(&rd.ID, &rd.Title, &rd.Category, &rd.EnglishText,
			&rd.SpanishTranslation, &rd.ImageURL, &rd.CreatedAt, &rd.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read readings: %w", err)
	}

	return &ReadingListResult{Readings: readings, Total: total}, nil
}

// GetByID returns a single reading
func (r *ReadingRepository) GetByID(ctx context.Context, id int64) (*models.Reading, error) {
	query := `
		SELECT id, title, category, english_text, spanish_translation, image_url, created_at, updated_at
		FROM readings WHERE id = $1
	`
	var rd models.Reading
	err := r.db.QueryRow(ctx, query, id).Scan(&rd.ID, &rd.Title, &rd.Category,
		&rd.EnglishText, &rd.SpanishTranslation, &rd.ImageURL, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	return &rd, nil
}

// Create inserts a new reading
func (r *ReadingRepository) Create(ctx context.Context, rd *models.Reading) error {
	query := `
		INSERT INTO readings (title, category, english_text, spanish_translation, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, rd.Title, rd.Category, rd.EnglishText, rd.SpanishTranslation, rd.ImageURL).
		Scan(&rd.ID, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}
	return nil
}

// Update modifies an existing reading
func (r *ReadingRepository) Update(ctx context.Context, rd *models.Reading) error {
	query := `
		UPDATE readings
		SET title = $2, category = $3, english_text = $4, spanish_translation = $5, image_url = $6, updated_at = now()
		WHERE id = $1
	`
	rowsAffected, err := r.db.Exec(ctx, query, rd.ID, rd.Title, rd.Category, rd.EnglishText, rd.SpanishTranslation, rd.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to update reading: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReadingNotFound
	}
	return nil
}

// Delete removes a reading
func (r *ReadingRepository) Delete(ctx context.Context, id int64) error {
	rowsAffected, err := r.db.Exec(ctx, `DELETE FROM readings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reading: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReadingNotFound
	}
	return nil
}
