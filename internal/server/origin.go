package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// normalizeOrigin reduces an origin to lowercase scheme://host so the
// request header and the configured value compare consistently.
func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// checkOrigin enforces the configured allowed origin on websocket upgrades.
// Requests without an Origin header come from non-browser clients (the
// terminal client, health probes) and are accepted; the header is a browser
// cross-origin control, not an authentication mechanism.
func (s *Server) checkOrigin(r *http.Request) bool {
	header := r.Header.Get("Origin")
	if header == "" {
		return true
	}
	if s.cfg.AllowedOrigin == "*" {
		return true
	}

	requested, ok := normalizeOrigin(header)
	if !ok {
		return false
	}
	allowed, ok := normalizeOrigin(s.cfg.AllowedOrigin)
	if !ok {
		slog.Warn("configured allowed origin is invalid", "origin", s.cfg.AllowedOrigin)
		return false
	}

	if requested != allowed {
		slog.Warn("blocked websocket upgrade from disallowed origin", "origin", header)
		return false
	}
	return true
}
