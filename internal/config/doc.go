// Package config loads the SideQuest client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/sidequest/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. SIDEQUEST_API_URL and SIDEQUEST_DEVICE_ID override the result
//
// # Default Values
//
//   - API URL: http://127.0.0.1:5002/api
//   - Request timeout: 30s
//   - Bootstrap timeout: 10s
//   - Autosave debounce: 2s
//   - Poll interval: 5m
//   - Cache: ~/.local/share/sidequest/cache.db
//   - Log: ~/.local/state/sidequest/sidequest.log
//   - Device id: derived from the host and user name
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:5002/api"
//	device_id = "my-laptop"
//	request_timeout = "30s"
//	bootstrap_timeout = "10s"
//	autosave_debounce = "2s"
//	poll_interval = "5m"
//	cache_path = "~/.local/share/sidequest/cache.db"
//	log_path = "~/.local/state/sidequest/sidequest.log"
//
// Durations use time.ParseDuration syntax and must be positive. Tilde
// expansion is performed on paths; cache_path may be ":memory:".
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and malformed durations
//
// Missing config files are NOT an error.
package config
