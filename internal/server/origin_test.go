package server

import (
	"net/http"
	"testing"

	"github.com/sevahub/relay/internal/relay"
)

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"http://localhost:3000", "http://localhost:3000", true},
		{"HTTPS://Example.COM", "https://example.com", true},
		{"http://example.com/path", "http://example.com", true},
		{"example.com", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := normalizeOrigin(tt.in)
		if ok != tt.valid {
			t.Errorf("normalizeOrigin(%q) valid = %v, want %v", tt.in, ok, tt.valid)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("normalizeOrigin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		header  string
		want    bool
	}{
		{"matching origin", "http://localhost:3000", "http://localhost:3000", true},
		{"case-insensitive match", "http://localhost:3000", "HTTP://LOCALHOST:3000", true},
		{"different host", "http://localhost:3000", "http://evil.example", false},
		{"different scheme", "https://app.example", "http://app.example", false},
		{"wildcard allows anything", "*", "http://anywhere.example", true},
		{"no header allows native clients", "http://localhost:3000", "", true},
		{"malformed header", "http://localhost:3000", "not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&Config{AllowedOrigin: tt.allowed}, relay.NewHub())
			r, _ := http.NewRequest(http.MethodGet, "/ws", http.NoBody)
			if tt.header != "" {
				r.Header.Set("Origin", tt.header)
			}
			if got := s.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin = %v, want %v", got, tt.want)
			}
		})
	}
}
