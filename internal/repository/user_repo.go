package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fluentphrases/backend/internal/database"
	"github.com/fluentphrases/backend/internal/models"
)

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when trying to create a user that already exists
	ErrUserExists = errors.New("user already exists")
)

const userColumns = `id, first_name, last_name, email, password_hash, plan,
	daily_phrase_count, last_phrases_reset, email_verified,
	verification_token, reset_token, reset_expires, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. New accounts start on the free plan with a
// zero counter and the reset stamp set to now.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Plan == "" {
		user.Plan = models.PlanFree
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.LastPhrasesReset.IsZero() {
		user.LastPhrasesReset = now
	}

	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, plan,
			daily_phrase_count, last_phrases_reset, email_verified,
			verification_token, reset_token, reset_expires, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Plan,
		user.DailyPhraseCount, user.LastPhrasesReset, user.EmailVerified,
		user.VerificationToken, user.ResetToken, user.ResetExpires, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &user.Plan,
		&user.DailyPhraseCount, &user.LastPhrasesReset, &user.EmailVerified,
		&user.VerificationToken, &user.ResetToken, &user.ResetExpires, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

// GetByResetToken retrieves a user by a non-expired password reset token
func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE reset_token = $1 AND reset_token <> '' AND reset_expires > now()`, userColumns)
	return r.scanUser(r.db.QueryRow(ctx, query, token))
}

// ResetDailyWindow zeroes the daily counter and stamps now, but only when
// the stored reset timestamp falls on an earlier UTC calendar day. The
// condition lives in the UPDATE itself, so concurrent reconciles for the
// same user reset exactly once.
func (r *UserRepository) ResetDailyWindow(ctx context.Context, userID string, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET daily_phrase_count = 0,
		    last_phrases_reset = $2,
		    updated_at = $2
		WHERE id = $1
		  AND (last_phrases_reset AT TIME ZONE 'UTC')::date < ($2 AT TIME ZONE 'UTC')::date
	`
	rowsAffected, err := r.db.Exec(ctx, query, userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to reset daily window: %w", err)
	}
	return rowsAffected > 0, nil
}

// IncrementDailyCount adds one to the daily counter as a single atomic
// update and returns the new value. Never expressed as read-modify-write in
// application code; two concurrent calls both land.
func (r *UserRepository) IncrementDailyCount(ctx context.Context, userID string) (int, error) {
	query := `
		UPDATE users
		SET daily_phrase_count = daily_phrase_count + 1,
		    updated_at = now()
		WHERE id = $1
		RETURNING daily_phrase_count
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to increment daily count: %w", err)
	}
	return count, nil
}

// SetPlan updates a user's plan
func (r *UserRepository) SetPlan(ctx context.Context, userID string, plan string) error {
	if !models.IsValidPlan(plan) {
		return fmt.Errorf("invalid plan: %s", plan)
	}

	query := `UPDATE users SET plan = $2, updated_at = now() WHERE id = $1`
	rowsAffected, err := r.db.Exec(ctx, query, userID, plan)
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetResetToken stores a password reset token and its expiry
func (r *UserRepository) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	query := `UPDATE users SET reset_token = $2, reset_expires = $3, updated_at = now() WHERE id = $1`
	rowsAffected, err := r.db.Exec(ctx, query, userID, token, expires)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword sets a new password hash and clears any reset token
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    reset_token = '',
		    reset_expires = 'epoch',
		    updated_at = now()
		WHERE id = $1
	`
	rowsAffected, err := r.db.Exec(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// VerifyEmail marks the account with the given verification token as
// verified and clears the token. Returns the user ID.
func (r *UserRepository) VerifyEmail(ctx context.Context, token string) (string, error) {
	query := `
		UPDATE users
		SET email_verified = true,
		    verification_token = '',
		    updated_at = now()
		WHERE verification_token = $1 AND verification_token <> ''
		RETURNING id
	`
	var id string
	if err := r.db.QueryRow(ctx, query, token).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to verify email: %w", err)
	}
	return id, nil
}

// isUniqueViolation checks if an error is a unique constraint violation
func isUniqueViolation(err error) bool {
	// PostgreSQL unique violation error code is 23505
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "23505")
}
