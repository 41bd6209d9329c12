package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sevahub/relay/internal/relay"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &Config{
		Port:           ":0",
		AllowedOrigin:  "*",
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
	}
	return New(cfg, relay.NewHub())
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadStoresFileAndReturnsURL(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartBody(t, "file", "receipt.pdf", "pdf-bytes")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	s.handleUpload(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rr.Code, http.StatusCreated, rr.Body)
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !strings.HasPrefix(resp.URL, "/uploads/") {
		t.Fatalf("url = %q, want /uploads/ prefix", resp.URL)
	}
	if !strings.HasSuffix(resp.URL, ".pdf") {
		t.Errorf("url = %q, want original extension preserved", resp.URL)
	}

	stored := filepath.Join(s.cfg.UploadDir, strings.TrimPrefix(resp.URL, "/uploads/"))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Errorf("stored content = %q, want %q", data, "pdf-bytes")
	}
}

func TestUploadedFileIsServedBack(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartBody(t, "file", "photo.png", "png-bytes")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	s.Routes().ServeHTTP(rr, req)

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	get := httptest.NewRequest(http.MethodGet, resp.URL, http.NoBody)
	got := httptest.NewRecorder()
	s.Routes().ServeHTTP(got, get)

	if got.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", resp.URL, got.Code)
	}
	if got.Body.String() != "png-bytes" {
		t.Errorf("served content = %q, want %q", got.Body, "png-bytes")
	}
}

func TestUploadRejectsWrongMethod(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/upload", http.NoBody)
	rr := httptest.NewRecorder()

	s.handleUpload(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestUploadRejectsMissingFileField(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartBody(t, "attachment", "x.txt", "hi")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	s.handleUpload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSanitizeExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.PDF", ".pdf"},
		{"archive.tar.gz", ".gz"},
		{"no-extension", ""},
		{"trailing.", ""},
		{"weird.p@th", ""},
	}
	for _, tt := range tests {
		if got := sanitizeExt(tt.in); got != tt.want {
			t.Errorf("sanitizeExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rr := httptest.NewRecorder()

	s.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "healthy") {
		t.Errorf("body = %q, want health message", rr.Body)
	}
}
