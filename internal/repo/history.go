package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/ycwei/img2md/internal/models"
)

// ==========================
// HistoryRepo
// ==========================
type HistoryRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{DB: db}
}

// ==========================
// Create History
// ==========================
func (r *HistoryRepo) Create(ctx context.Context, userID int, imageURL *string, content, status string) (*models.History, error) {
	query := `
		INSERT INTO histories (user_id, image_url, markdown_content, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, image_url, markdown_content, status, created_at
	`

	h := &models.History{}

	err := r.DB.QueryRowContext(ctx, query, userID, imageURL, content, status).
		Scan(&h.ID, &h.UserID, &h.ImageURL, &h.MarkdownContent, &h.Status, &h.CreatedAt)

	if err != nil {
		return nil, err
	}

	return h, nil
}

// ==========================
// List By User (newest first)
// ==========================
func (r *HistoryRepo) ListByUser(ctx context.Context, userID int) ([]models.History, error) {
	query := `
		SELECT id, user_id, image_url, markdown_content, status, created_at
		FROM histories
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []models.History
	for rows.Next() {
		var h models.History
		if err := rows.Scan(&h.ID, &h.UserID, &h.ImageURL, &h.MarkdownContent, &h.Status, &h.CreatedAt); err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}

	return histories, rows.Err()
}

// ==========================
// Delete By ID And User
// ==========================
// The double predicate (id AND user_id) is the ownership check: a row that
// exists but belongs to another user deletes zero rows and reports ErrNotFound.
func (r *HistoryRepo) DeleteByIDAndUser(ctx context.Context, id, userID int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM histories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ==========================
// Delete Older Than (retention sweep)
// ==========================
func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM histories WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
