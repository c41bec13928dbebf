package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ycwei/img2md/internal/auth"
	"github.com/ycwei/img2md/internal/middleware"
	"github.com/ycwei/img2md/internal/models"
	"github.com/ycwei/img2md/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

func newAuthHandler(db *sql.DB) *AuthHandler {
	users := repo.NewUserRepo(db)
	return &AuthHandler{
		Users: users,
		Auth:  auth.NewService(users, []byte("test-secret"), time.Hour),
	}
}

func userRow(id int, email, username, hash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "created_at", "updated_at"}).
		AddRow(id, email, username, hash, now, now)
}

func TestAuthHandler_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, username, hashed_password`).
		WithArgs("alice").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT id, email, username, hashed_password`).
		WithArgs("alice@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users \(email, username, hashed_password\)`).
		WithArgs("alice@example.com", "alice", sqlmock.AnyArg()).
		WillReturnRows(userRow(1, "alice@example.com", "alice", "hash"))

	h := newAuthHandler(db)

	body, _ := json.Marshal(map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "s3cret",
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Register status: got %d, want 201 (body: %s)", rr.Code, rr.Body.String())
	}
	var user struct {
		ID       int    `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&user); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
	if strings.Contains(rr.Body.String(), "hashed_password") {
		t.Error("response must not contain the password hash")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, username, hashed_password`).
		WithArgs("alice").
		WillReturnRows(userRow(1, "other@example.com", "alice", "hash"))

	h := newAuthHandler(db)

	body, _ := json.Marshal(map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "s3cret",
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
	var out map[string]string
	_ = json.NewDecoder(rr.Body).Decode(&out)
	if out["error"] != "username already taken" {
		t.Errorf("unexpected error: %q", out["error"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newAuthHandler(db)

	body, _ := json.Marshal(map[string]string{
		"email":    "not-an-email",
		"username": "alice",
		"password": "s3cret",
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Token(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, email, username, hashed_password`).
		WithArgs("alice").
		WillReturnRows(userRow(1, "alice@example.com", "alice", string(hash)))

	h := newAuthHandler(db)

	form := strings.NewReader("username=alice&password=s3cret")
	req := httptest.NewRequest("POST", "/token", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Token(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Token status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.AccessToken == "" || out.TokenType != "bearer" {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Token_WrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, email, username, hashed_password`).
		WithArgs("alice").
		WillReturnRows(userRow(1, "alice@example.com", "alice", string(hash)))

	h := newAuthHandler(db)

	form := strings.NewReader("username=alice&password=wrong")
	req := httptest.NewRequest("POST", "/token", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Token(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Token status: got %d, want 401", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Token_UnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, username, hashed_password`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	h := newAuthHandler(db)

	form := strings.NewReader("username=nobody&password=x")
	req := httptest.NewRequest("POST", "/token", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Token(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Token status: got %d, want 401", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newAuthHandler(db)

	user := &models.User{ID: 1, Email: "alice@example.com", Username: "alice"}
	req := httptest.NewRequest("GET", "/users/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Me status: got %d, want 200", rr.Code)
	}
	var out struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 1 || out.Username != "alice" {
		t.Errorf("unexpected user: %+v", out)
	}
}
