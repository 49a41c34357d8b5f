// Package config handles configuration for the server component,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the fibkeeper server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP API.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint; empty disables it.
//   - SecretKey: HMAC secret for signing session tokens (HS256). Do not use test defaults in prod.
//   - SessionValidityDuration: how long a login stays valid.
//   - SessionCleanupInterval: how often expired sessions are swept.
//   - CookieSecure: mark the session cookie Secure (HTTPS only).
//   - AuthUsername / AuthPassword: the single account allowed to log in.
//   - AuthPasswordHash: bcrypt hash of the password; when set, AuthPassword is ignored.
type Config struct {
	EndpointAddrHTTP        string
	EndpointAddrGRPC        string
	SecretKey               string
	SessionValidityDuration time.Duration
	SessionCleanupInterval  time.Duration
	CookieSecure            bool
	AuthUsername            string
	AuthPassword            string
	AuthPasswordHash        string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret and credentials are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":1042"
	c.EndpointAddrGRPC = ""
	c.SecretKey = "secretKey"
	c.SessionValidityDuration = 60 * time.Minute
	c.SessionCleanupInterval = 60 * time.Second
	c.CookieSecure = true
	c.AuthUsername = "tester"
	c.AuthPassword = "Squ!r3"
	c.AuthPasswordHash = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
