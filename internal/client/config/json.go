package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/prolianceltd/taskflow-cli/internal/flagx"
	"github.com/prolianceltd/taskflow-cli/internal/timex"
)

// JsonConfig mirrors Config for the JSON configuration file.
type JsonConfig struct {
	AuthBaseURL    string         `json:"auth_base_url"`
	APIBaseURL     string         `json:"api_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	TokenDir       string         `json:"token_dir"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flag. A missing flag or a missing file leaves cfg untouched;
// an unreadable or malformed file panics.
func parseJson(cfg *Config) {
	fileName := flagx.JsonConfigFlags()
	if fileName == "" {
		return
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.AuthBaseURL != "" {
		cfg.AuthBaseURL = jc.AuthBaseURL
	}
	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.TokenDir != "" {
		cfg.TokenDir = jc.TokenDir
	}
}
