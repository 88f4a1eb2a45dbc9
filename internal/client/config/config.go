package config

import "time"

// Config holds runtime settings for the TaskFlow CLI.
//
// Fields:
//   - AuthBaseURL: base URL of the remote identity service.
//   - APIBaseURL: base URL of the remote content API (the knowledge-base
//     resources live under its /knowledge prefix).
//   - RequestTimeout: fixed per-request timeout shared by both channels.
//   - TokenDir: directory for the persisted session token; empty selects the
//     user config directory.
type Config struct {
	AuthBaseURL    string
	APIBaseURL     string
	RequestTimeout time.Duration
	TokenDir       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AuthBaseURL = "https://server1.prolianceltd.com/api"
	c.APIBaseURL = "http://localhost:9090/api/project-manager/api"
	c.RequestTimeout = 10 * time.Second
	c.TokenDir = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
