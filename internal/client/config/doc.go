// Package config loads runtime configuration for the TaskFlow CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-auth string   base URL of the remote identity service
//	-api string    base URL of the remote content API
//	-t int         request timeout (seconds)
//	-d string      token storage directory (defaults to the user config dir)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "10s" or integer nanoseconds:
//
//	{
//	  "auth_base_url": "https://server1.prolianceltd.com/api",
//	  "api_base_url": "http://localhost:9090/api/project-manager/api",
//	  "request_timeout": "10s",
//	  "token_dir": ""
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
