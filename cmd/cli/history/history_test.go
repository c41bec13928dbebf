package history

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ycwei/img2md/internal/models"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

// writeTestToken points the token file at a temp home dir.
func writeTestToken(t *testing.T, token string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, ".img2md_token"), []byte(token), 0600); err != nil {
		t.Fatalf("write token: %v", err)
	}
}

func TestListHistory_TableOutput(t *testing.T) {
	image := "receipt.png"
	histories := []models.History{
		{ID: 1, UserID: 1, ImageURL: &image, MarkdownContent: "# Receipt", Status: models.StatusSuccess, CreatedAt: time.Now()},
		{ID: 2, UserID: 1, MarkdownContent: "quota exceeded", Status: models.StatusError, CreatedAt: time.Now()},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Fatalf("missing bearer token")
		}
		_ = json.NewEncoder(w).Encode(histories)
	}))
	defer srv.Close()

	t.Setenv("IMG2MD_API_URL", srv.URL)
	writeTestToken(t, "test-token")

	cmd := listHistoryCmd()

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "receipt.png") || !strings.Contains(out, models.StatusError) {
		t.Fatalf("expected history rows in output, got: %s", out)
	}
}

func TestListHistory_JSONOutput(t *testing.T) {
	histories := []models.History{
		{ID: 1, UserID: 1, MarkdownContent: "# Notes", Status: models.StatusSuccess, CreatedAt: time.Now()},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(histories)
	}))
	defer srv.Close()

	t.Setenv("IMG2MD_API_URL", srv.URL)
	writeTestToken(t, "test-token")

	cmd := listHistoryCmd()
	_ = cmd.Flags().Set("json", "true")

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, `"markdown_content": "# Notes"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}

func TestListHistory_NotLoggedIn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := listHistoryCmd()

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "login first") {
		t.Fatalf("expected login prompt, got: %s", out)
	}
}

func TestDeleteHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/history/7" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "history deleted"})
	}))
	defer srv.Close()

	t.Setenv("IMG2MD_API_URL", srv.URL)
	writeTestToken(t, "test-token")

	cmd := deleteHistoryCmd()

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{"7"})
	})

	if !strings.Contains(out, "History deleted") {
		t.Fatalf("expected delete confirmation, got: %s", out)
	}
}
