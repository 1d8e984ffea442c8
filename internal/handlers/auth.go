package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/db"
	"github.com/taskhive/taskhive/internal/models"
)

// POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.RateLimiter.Allow(clientIP(r)) {
		sendError(w, "Too many requests", http.StatusTooManyRequests)
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Username == "" || len(input.Username) > 100 {
		sendError(w, "username is required and must be <= 100 characters", http.StatusBadRequest)
		return
	}
	if !strings.Contains(input.Email, "@") {
		sendError(w, "email is invalid", http.StatusBadRequest)
		return
	}
	if len(input.Password) < 8 {
		sendError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.UserRepo.GetByEmail(ctx, input.Email); err == nil {
		sendError(w, "email is already registered", http.StatusConflict)
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		sendError(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		sendError(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		RegisterType: models.RegisterTypeNormal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.UserRepo.Create(ctx, user); err != nil {
		sendError(w, "Failed to register", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusCreated, user)
}

// POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.RateLimiter.Allow(clientIP(r)) {
		sendError(w, "Too many requests", http.StatusTooManyRequests)
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.UserRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		sendError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if user.PasswordHash == "" {
		// externally-authenticated account, no local password
		sendError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		sendError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		sendError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"token": signed})
}
