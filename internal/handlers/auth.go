package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ycwei/img2md/internal/auth"
	"github.com/ycwei/img2md/internal/middleware"
	"github.com/ycwei/img2md/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users *repo.UserRepo
	Auth  *auth.Service
}

var validate = validator.New()

// ==========================
// Register (POST /register)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Username string `json:"username" validate:"required,min=3,max=64"`
		Password string `json:"password" validate:"required,min=6,max=128"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		fields := make(map[string]string)
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			for _, fe := range verr {
				fields[fe.Field()] = fe.Tag()
			}
		}
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	// Proactive duplicate checks give precise messages; the unique constraints
	// still back them up against concurrent inserts.
	if _, err := h.Users.GetByUsername(r.Context(), input.Username); err == nil {
		JSONError(w, repo.ErrDuplicateUsername.Error(), http.StatusBadRequest)
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if _, err := h.Users.GetByEmail(r.Context(), input.Email); err == nil {
		JSONError(w, repo.ErrDuplicateEmail.Error(), http.StatusBadRequest)
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	hash, err := h.Auth.HashPassword(input.Password)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Create(r.Context(), input.Email, input.Username, hash)
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repo.ErrDuplicateUsername) || errors.Is(err, repo.ErrDuplicateEmail) {
			JSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("register: create user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Token (POST /token, form-encoded)
// ==========================
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		// Plain urlencoded forms land here too; fall back to ParseForm.
		if err := r.ParseForm(); err != nil {
			JSONError(w, "invalid form", http.StatusBadRequest)
			return
		}
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		JSONError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if !h.Auth.VerifyPassword(password, user.HashedPassword) {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.Auth.IssueToken(user.Username)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// ==========================
// Me (GET /users/me)
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
