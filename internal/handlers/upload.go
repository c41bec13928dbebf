package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ycwei/img2md/internal/gemini"
	"github.com/ycwei/img2md/internal/metrics"
	"github.com/ycwei/img2md/internal/middleware"
	"github.com/ycwei/img2md/internal/models"
	"github.com/ycwei/img2md/internal/repo"
)

// ErrMessageMissingInput is the user-facing message when neither an image
// nor text is submitted. Kept in Chinese, the product's primary locale.
const ErrMessageMissingInput = "請提供圖片或文字"

// Generator is the conversion gateway seen by the handler. *gemini.Client
// satisfies it; tests substitute a fake.
type Generator interface {
	Convert(ctx context.Context, in gemini.Input) (*gemini.Note, error)
}

// ==========================
// Upload Handler
// ==========================
type UploadHandler struct {
	Histories *repo.HistoryRepo
	Gateway   Generator

	// MaxMemory bounds the in-memory portion of multipart parsing; the overall
	// body size is capped by the MaxBytes middleware on the route.
	MaxMemory int64
}

// ==========================
// Upload (POST /upload)
// ==========================
// A conversion attempt leaves one History row behind, success or error, unless
// validation rejects the request before the model is called.
// A model failure is a soft failure: recorded, then reported as HTTP 200 with
// an "error" body so the client can show the message alongside prior attempts.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	maxMemory := h.MaxMemory
	if maxMemory <= 0 {
		maxMemory = 10 << 20
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		JSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	var (
		imageData []byte
		imageMIME string
		imageURL  *string
	)
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		imageData, err = io.ReadAll(file)
		if err != nil {
			JSONError(w, "failed to read uploaded file", http.StatusBadRequest)
			return
		}
		imageMIME = header.Header.Get("Content-Type")
		if imageMIME == "" {
			imageMIME = http.DetectContentType(imageData)
		}
		// No object storage in this service: the stored image_url is a
		// placeholder naming what was uploaded.
		name := header.Filename
		imageURL = &name
	case errors.Is(err, http.ErrMissingFile):
		// Text-only submission.
	default:
		JSONError(w, "invalid file field", http.StatusBadRequest)
		return
	}

	text := r.FormValue("text")
	lang := r.FormValue("output_language")
	if lang == "" {
		lang = "zh"
	}

	if len(imageData) == 0 && text == "" {
		// Rejected before any external or persistence side effect.
		JSONError(w, ErrMessageMissingInput, http.StatusBadRequest)
		return
	}

	start := time.Now()
	note, err := h.Gateway.Convert(r.Context(), gemini.Input{
		ImageData: imageData,
		ImageMIME: imageMIME,
		Text:      text,
		Lang:      lang,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		var genErr *gemini.GenerationError
		if errors.Is(err, gemini.ErrMissingInput) {
			JSONError(w, ErrMessageMissingInput, http.StatusBadRequest)
			return
		}
		if !errors.As(err, &genErr) {
			slog.Error("upload: unexpected gateway error", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}

		metrics.RecordConversion(models.StatusError, elapsed)

		content := models.TruncateMarkdown(genErr.Message)
		if _, dbErr := h.Histories.Create(r.Context(), user.ID, imageURL, content, models.StatusError); dbErr != nil {
			slog.Error("upload: persist error history failed", "error", dbErr)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"error": genErr.Message})
		return
	}

	metrics.RecordConversion(models.StatusSuccess, elapsed)

	// Truncate once so the response and the stored row stay byte-identical.
	content := models.TruncateMarkdown(note.Raw)
	if _, dbErr := h.Histories.Create(r.Context(), user.ID, imageURL, content, models.StatusSuccess); dbErr != nil {
		slog.Error("upload: persist history failed", "error", dbErr)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"markdown_raw":     content,
		"markdown_preview": content,
	})
}
