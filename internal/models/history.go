package models

import "time"

// History statuses. Every conversion attempt is recorded with one of these.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxMarkdownLen is the maximum number of runes stored in markdown_content.
const MaxMarkdownLen = 10000

type History struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	ImageURL        *string   `json:"image_url"`
	MarkdownContent string    `json:"markdown_content"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// TruncateMarkdown trims s to MaxMarkdownLen runes so it fits the column bound.
func TruncateMarkdown(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxMarkdownLen {
		return s
	}
	return string(runes[:MaxMarkdownLen])
}
