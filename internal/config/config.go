// Package config loads terminal-client settings with CLI flag > environment
// variable > default priority.
package config

import (
	"fmt"
	"os"
)

// Default configuration values.
const (
	DefaultServer = "localhost:8080"
	DefaultSTUN   = "stun:stun.l.google.com:19302"
)

// Config holds client configuration.
type Config struct {
	// Server is the relay host[:port].
	Server string

	// Secure selects wss/https instead of ws/http.
	Secure bool

	// ICE servers for WebRTC calls.
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// Options carry CLI flag overrides; empty values fall through to the
// environment and then to the defaults.
type Options struct {
	Server     string
	Secure     bool
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// Load resolves the configuration.
func Load(opts Options) *Config {
	server := opts.Server
	if server == "" {
		server = os.Getenv("SEVAHUB_SERVER")
	}
	if server == "" {
		server = DefaultServer
	}

	stun := opts.STUNServer
	if stun == "" {
		stun = os.Getenv("SEVAHUB_STUN")
	}
	if stun == "" {
		stun = DefaultSTUN
	}

	turn := opts.TURNServer
	if turn == "" {
		turn = os.Getenv("SEVAHUB_TURN")
	}

	turnUser := opts.TURNUser
	if turnUser == "" {
		turnUser = os.Getenv("SEVAHUB_TURN_USERNAME")
	}

	turnPass := opts.TURNPass
	if turnPass == "" {
		turnPass = os.Getenv("SEVAHUB_TURN_PASSWORD")
	}

	secure := opts.Secure || os.Getenv("SEVAHUB_TLS") == "1"

	return &Config{
		Server:     server,
		Secure:     secure,
		STUNServer: stun,
		TURNServer: turn,
		TURNUser:   turnUser,
		TURNPass:   turnPass,
	}
}

// WebSocketURL returns the relay websocket endpoint.
func (c *Config) WebSocketURL() string {
	scheme := "ws"
	if c.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s/ws", scheme, c.Server)
}

// BaseURL returns the HTTP base of the server, without a trailing slash.
func (c *Config) BaseURL() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Server)
}

// UploadURL returns the collaborator upload endpoint.
func (c *Config) UploadURL() string {
	return c.BaseURL() + "/upload"
}

// STUNServers returns the STUN server URLs.
func (c *Config) STUNServers() []string {
	return []string{c.STUNServer}
}

// TURNServers returns TURN server URLs, nil when unconfigured.
func (c *Config) TURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
	}
}

// TURNCredentials returns the TURN username and password.
func (c *Config) TURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
