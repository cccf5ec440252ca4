package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fluentphrases/backend/internal/auth"
	"github.com/fluentphrases/backend/internal/mailer"
	"github.com/fluentphrases/backend/internal/models"
	"github.com/fluentphrases/backend/internal/repository"
)

// UserStore is the user persistence surface the handlers need
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	SetPlan(ctx context.Context, userID, plan string) error
	SetResetToken(ctx context.Context, userID, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	VerifyEmail(ctx context.Context, token string) (string, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users         UserStore
	jwtService    *auth.JWTService
	mailer        mailer.Mailer
	frontendURL   string
	backendURL    string
	resetTokenTTL time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	users UserStore,
	jwtService *auth.JWTService,
	m mailer.Mailer,
	frontendURL, backendURL string,
	resetTokenTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		users:         users,
		jwtService:    jwtService,
		mailer:        m,
		frontendURL:   frontendURL,
		backendURL:    backendURL,
		resetTokenTTL: resetTokenTTL,
	}
}

// SignupRequest represents a registration request
type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// SigninRequest represents a login request
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"`
	User      *UserResponse `json:"user"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Plan          string    `json:"plan"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Plan:          u.Plan,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// Signup handles user registration
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid_email", "Invalid email address")
		return
	}

	if strings.TrimSpace(req.FirstName) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "First name is required")
		return
	}

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "weak_password", err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to process registration")
		return
	}

	user := &models.User{
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:      passwordHash,
		Plan:              models.PlanFree,
		VerificationToken: uuid.New().String(),
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			writeError(w, http.StatusConflict, "user_exists", "An account with this email already exists")
			return
		}
		log.Printf("[auth] Signup create error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to create account")
		return
	}

	// A failed verification email never blocks signup; the user can request
	// another one later.
	verifyURL := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", h.backendURL, user.VerificationToken)
	if err := h.mailer.SendVerification(r.Context(), mailer.VerificationInput{
		Email:     user.Email,
		FirstName: user.FirstName,
		VerifyURL: verifyURL,
	}); err != nil {
		log.Printf("[auth] Signup verification email error: %v", err)
	}

	token, err := h.jwtService.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtService.GetExpiration().Seconds()),
		User:      toUserResponse(user),
	})
}

// Signin handles user login
// POST /api/v1/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		// Don't reveal whether the email exists
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	token, err := h.jwtService.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtService.GetExpiration().Seconds()),
		User:      toUserResponse(user),
	})
}

// RefreshToken refreshes a JWT token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeError(w, http.StatusUnauthorized, "missing_token", "Authorization header required")
		return
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid authorization header format")
		return
	}

	newToken, err := h.jwtService.Refresh(parts[1])
	if err != nil {
		switch err {
		case auth.ErrExpiredToken:
			writeError(w, http.StatusUnauthorized, "token_expired", "Token has expired and cannot be refreshed")
		case auth.ErrInvalidToken:
			writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid token")
		default:
			writeError(w, http.StatusUnauthorized, "invalid_token", "Failed to refresh token")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      newToken,
		"expires_in": int64(h.jwtService.GetExpiration().Seconds()),
	})
}

// GetCurrentUser returns the current authenticated user
// GET /api/v1/user/me
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	fullUser, err := h.users.GetByID(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to fetch user data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": toUserResponse(fullUser),
	})
}

// ForgotPasswordRequest carries the email for a reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a password reset token and emails it
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// The response is identical whether or not the account exists.
	accepted := func() {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "If an account exists for that email, a reset link has been sent",
		})
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		accepted()
		return
	}

	token := uuid.New().String()
	expires := time.Now().Add(h.resetTokenTTL)
	if err := h.users.SetResetToken(r.Context(), user.ID, token, expires); err != nil {
		log.Printf("[auth] ForgotPassword set token error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to process request")
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", h.frontendURL, token)
	if err := h.mailer.SendPasswordReset(r.Context(), mailer.PasswordResetInput{
		Email:     user.Email,
		FirstName: user.FirstName,
		ResetURL:  resetURL,
	}); err != nil {
		log.Printf("[auth] ForgotPassword email error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to send reset email")
		return
	}

	accepted()
}

// ResetPasswordRequest carries a reset token and the new password
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword consumes a reset token and sets a new password
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Reset token is required")
		return
	}

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "weak_password", err.Error())
		return
	}

	user, err := h.users.GetByResetToken(r.Context(), req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_token", "Reset token is invalid or has expired")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to process request")
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user.ID, passwordHash); err != nil {
		log.Printf("[auth] ResetPassword update error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Failed to update password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Password updated successfully",
	})
}

// VerifyEmail consumes a verification token from the email link
// GET /api/v1/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Verification token is required")
		return
	}

	if _, err := h.users.VerifyEmail(r.Context(), token); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_token", "Verification token is invalid")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email verified successfully",
	})
}

// isValidEmail validates an email address format
func isValidEmail(email string) bool {
	// Simple email regex - not perfect but good enough for basic validation
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}
