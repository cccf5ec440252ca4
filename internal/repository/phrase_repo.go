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

// ErrPhraseNotFound is returned when a phrase is not found
var ErrPhraseNotFound = errors.New("phrase not found")

// PhraseRepository handles phrase database operations
type PhraseRepository struct {
	db *database.DB
}

// NewPhraseRepository creates a new phrase repository
func NewPhraseRepository(db *database.DB) *PhraseRepository {
	return &PhraseRepository{db: db}
}

// PhraseListResult contains phrases and total count
type PhraseListResult struct {
	Phrases []models.Phrase
	Total   int
}

// List returns phrases matching the filter. Filter.Categories, when set, is
// the allowlist supplied by the entitlement gate and is applied regardless
// of the requested category.
func (r *PhraseRepository) List(ctx context.Context, filter models.PhraseFilter) (*PhraseListResult, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argNum := 1

	if filter.Language != "" {
		conditions = append(conditions, fmt.Sprintf("language = $%d", argNum))
		args = append(args, filter.Language)
		argNum++
	}

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

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM phrases WHERE %s`, whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count phrases: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, target_text, translated_text, category, language, is_free, created_at, updated_at
		FROM phrases
		WHERE %s
		ORDER BY category, id
		LIMIT $%d OFFSET $%d`, whereClause, argNum, argNum+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query phrases: %w", err)
	}
	defer rows.Close()

	var phrases []models.Phrase
	for rows.Next() {
		var p models.Phrase
		if err := rows.Scan(&p.ID, &p.TargetText, &p.TranslatedText, &p.Category,
			&p.Language, &p.IsFree, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan phrase: %w", err)
		}
		phrases = append(phrases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read phrases: %w", err)
	}

	return &PhraseListResult{Phrases: phrases, Total: total}, nil
}

// GetByID returns a single phrase
func (r *PhraseRepository) GetByID(ctx context.Context, id int64) (*models.Phrase, error) {
	query := `
		SELECT id, target_text, translated_text, category, language, is_free, created_at, updated_at
		FROM phrases WHERE id = $1
	`
	var p models.Phrase
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.TargetText, &p.TranslatedText,
		&p.Category, &p.Language, &p.IsFree, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPhraseNotFound
		}
		return nil, fmt.Errorf("failed to get phrase: %w", err)
	}
	return &p, nil
}

// Create inserts a new phrase
func (r *PhraseRepository) Create(ctx context.Context, p *models.Phrase) error {
	query := `
		INSERT INTO phrases (target_text, translated_text, category, language, is_free, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, p.TargetText, p.TranslatedText, p.Category, p.Language, p.IsFree).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create phrase: %w", err)
	}
	return nil
}

// Update modifies an existing phrase
func (r *PhraseRepository) Update(ctx context.Context, p *models.Phrase) error {
	query := `
		UPDATE phrases
		SET target_text = $2, translated_text = $3, category = $4, language = $5, is_free = $6, updated_at = now()
		WHERE id = $1
	`
	rowsAffected, err := r.db.Exec(ctx, query, p.ID, p.TargetText, p.TranslatedText, p.Category, p.Language, p.IsFree)
	if err != nil {
		return fmt.Errorf("failed to update phrase: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPhraseNotFound
	}
	return nil
}

// Delete removes a phrase
func (r *PhraseRepository) Delete(ctx context.Context, id int64) error {
	rowsAffected, err := r.db.Exec(ctx, `DELETE FROM phrases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete phrase: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPhraseNotFound
	}
	return nil
}

// CountByCategory returns the number of phrases per category
func (r *PhraseRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT category, COUNT(*) FROM phrases GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count phrases by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[category] = count
	}
	return counts, rows.Err()
}
