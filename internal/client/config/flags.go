package config

import (
	"flag"
	"os"
	"time"

	"github.com/prolianceltd/taskflow-cli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-auth string   base URL of the remote identity service
//	-api string    base URL of the remote content API
//	-t int         request timeout in seconds (default from Config)
//	-d string      token storage directory override
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-auth", "-api", "-t", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.AuthBaseURL, "auth", cfg.AuthBaseURL, "base URL of the identity service")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "base URL of the content API")
	fs.StringVar(&cfg.TokenDir, "d", cfg.TokenDir, "token storage directory")
	timeoutSeconds := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeoutSeconds) * time.Second
}
