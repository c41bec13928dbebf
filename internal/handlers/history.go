package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ycwei/img2md/internal/middleware"
	"github.com/ycwei/img2md/internal/models"
	"github.com/ycwei/img2md/internal/repo"
)

// ==========================
// History Handler
// ==========================
type HistoryHandler struct {
	Histories *repo.HistoryRepo
}

// ==========================
// List (GET /history)
// ==========================
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	histories, err := h.Histories.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("history: list failed", "error", err, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if histories == nil {
		histories = []models.History{}
	}

	writeJSON(w, http.StatusOK, histories)
}

// ==========================
// Delete (DELETE /history/{id})
// ==========================
// Not-found and not-owned are indistinguishable to the caller: both 404.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid history id", http.StatusBadRequest)
		return
	}

	if err := h.Histories.DeleteByIDAndUser(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "history not found", http.StatusNotFound)
			return
		}
		slog.Error("history: delete failed", "error", err, "id", id, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "history deleted"})
}
