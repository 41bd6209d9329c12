package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// uploadResponse is returned to the uploading client. The URL is relative
// to the server root; the caller prepends its own base URL.
type uploadResponse struct {
	URL string `json:"url"`
}

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// handleUpload accepts a single multipart file, stores it under the upload
// directory with a generated name, and returns the URL it can be fetched
// from. This collaborator runs in the same process as the relay but never
// interacts with it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "upload endpoint only accepts POST", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing or unreadable file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		slog.Error("creating upload directory failed", "dir", s.cfg.UploadDir, "err", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}

	name := uuid.NewString() + sanitizeExt(header.Filename)
	path := filepath.Join(s.cfg.UploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		slog.Error("creating upload file failed", "path", path, "err", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(path)
		http.Error(w, "upload interrupted", http.StatusBadRequest)
		return
	}

	slog.Info("file uploaded", "name", name, "bytes", written)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(uploadResponse{URL: "/uploads/" + name})
}

// sanitizeExt keeps the original extension only when it is a short
// alphanumeric suffix; anything else is dropped rather than trusted.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if safeExt.MatchString(ext) {
		return ext
	}
	return ""
}
