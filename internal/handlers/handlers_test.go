package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/taskhive/taskhive/internal/db"
	"github.com/taskhive/taskhive/internal/models"
)

func setupHTTP(t *testing.T) (*Handler, *http.ServeMux, *sql.DB, string) {
	t.Helper()

	secret := strings.Repeat("a", 32)
	_ = os.Setenv("JWT_SECRET", secret)

	dbx, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dbx.SetMaxOpenConns(1)
	if err := db.MigrateUp(dbx, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := &Handler{
		UserRepo:     db.NewUserRepository(dbx),
		ProjectRepo:  db.NewProjectRepository(dbx),
		TaskRepo:     db.NewTaskRepository(dbx),
		ScheduleRepo: db.NewScheduleRepository(dbx),
		RateLimiter:  NewRateLimiter(100, 100),
		WSHub:        NewWSHub(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", h.HandleRegister)
	mux.HandleFunc("/auth/login", h.HandleLogin)
	mux.HandleFunc("/project", h.AuthMiddleware(h.HandleProjects))
	mux.HandleFunc("/project/", h.AuthMiddleware(h.HandleProjectPath))
	mux.HandleFunc("/bounty", h.AuthMiddleware(h.HandleBounties))
	mux.HandleFunc("/bounty/", h.AuthMiddleware(h.HandleBountyClaim))
	mux.HandleFunc("/schedule", h.AuthMiddleware(h.HandleSchedule))
	mux.HandleFunc("/schedule/", h.AuthMiddleware(h.HandleScheduleByID))
	mux.HandleFunc("/dashboard/", h.AuthMiddleware(h.HandleDashboard))
	mux.HandleFunc("/ws", h.AuthMiddleware(h.HandleWebSocket))

	return h, mux, dbx, secret
}

func bearerForUser(t *testing.T, secret, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return "Bearer " + signed
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, authz string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf []byte
	if body != nil {
		var err error
		buf, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(buf))
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func seedUser(t *testing.T, h *Handler, email string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "user-" + email,
		Email:        email,
		PasswordHash: "hash",
		RegisterType: models.RegisterTypeNormal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.UserRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	_, mux, dbx, _ := setupHTTP(t)
	defer dbx.Close()

	rec := doJSON(t, mux, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rec.Code, rec.Body.String())
	}
	token := decode[map[string]string](t, rec)["token"]
	if token == "" {
		t.Fatal("login returned no token")
	}

	// the issued token must pass the middleware
	rec = doJSON(t, mux, http.MethodGet, "/project", "Bearer "+token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /project with issued token status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAuth_LoginRejectsWrongPassword(t *testing.T) {
	_, mux, dbx, _ := setupHTTP(t)
	defer dbx.Close()

	doJSON(t, mux, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	rec := doJSON(t, mux, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong horse",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login status=%d, want 401", rec.Code)
	}
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	_, mux, dbx, _ := setupHTTP(t)
	defer dbx.Close()

	for _, path := range []string{"/project", "/bounty", "/schedule"} {
		rec := doJSON(t, mux, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token status=%d, want 401", path, rec.Code)
		}
	}
}
