// Package server wires the relay hub and the file-upload collaborator into
// an HTTP surface: websocket upgrades, multipart uploads, static serving of
// uploaded files, and a health check.
package server

import (
	"os"
	"strconv"
	"strings"
)

// Default configuration values.
const (
	DefaultPort           = ":8080"
	DefaultAllowedOrigin  = "http://localhost:3000"
	DefaultUploadDir      = "uploads"
	DefaultMaxUploadBytes = 25 << 20 // 25 MB
)

// Config holds the HTTP surface settings.
type Config struct {
	// Port is the listen address, e.g. ":8080".
	Port string

	// AllowedOrigin is the single browser origin accepted for websocket
	// upgrades. "*" allows any origin.
	AllowedOrigin string

	// UploadDir is the directory uploaded files are stored in and served
	// back from under /uploads/.
	UploadDir string

	// MaxUploadBytes caps the size of a single upload request.
	MaxUploadBytes int64
}

// Options carry CLI flag overrides. Empty values fall through to the
// environment and then to the defaults.
type Options struct {
	Port          string
	AllowedOrigin string
	UploadDir     string
}

// Load reads configuration with flag > environment > default priority.
func Load(opts Options) *Config {
	port := opts.Port
	if port == "" {
		port = envOrDefault("RELAY_PORT", DefaultPort)
	}

	origin := opts.AllowedOrigin
	if origin == "" {
		origin = envOrDefault("RELAY_ALLOWED_ORIGIN", DefaultAllowedOrigin)
	}

	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = envOrDefault("RELAY_UPLOAD_DIR", DefaultUploadDir)
	}

	return &Config{
		Port:           normalizePort(port),
		AllowedOrigin:  origin,
		UploadDir:      uploadDir,
		MaxUploadBytes: envInt64("RELAY_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
	}
}

// normalizePort accepts both "8080" and ":8080".
func normalizePort(port string) string {
	if port == "" {
		return DefaultPort
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func envOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
