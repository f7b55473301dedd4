package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client settings.
type Config struct {
	APIURL           string
	DeviceID         string
	RequestTimeout   time.Duration
	BootstrapTimeout time.Duration
	AutosaveDebounce time.Duration
	PollInterval     time.Duration
	CachePath        string
	LogPath          string
}

const (
	defaultConfigPath       = "~/.config/sidequest/config.toml"
	defaultAPIURL           = "http://127.0.0.1:5002/api"
	defaultCachePath        = "~/.local/share/sidequest/cache.db"
	defaultLogPath          = "~/.local/state/sidequest/sidequest.log"
	defaultRequestTimeout   = 30 * time.Second
	defaultBootstrapTimeout = 10 * time.Second
	defaultAutosaveDebounce = 2 * time.Second
	defaultPollInterval     = 5 * time.Minute
)

// Environment overrides, applied after the file.
const (
	EnvAPIURL   = "SIDEQUEST_API_URL"
	EnvDeviceID = "SIDEQUEST_DEVICE_ID"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:           defaultAPIURL,
		DeviceID:         fallbackDeviceID(),
		RequestTimeout:   defaultRequestTimeout,
		BootstrapTimeout: defaultBootstrapTimeout,
		AutosaveDebounce: defaultAutosaveDebounce,
		PollInterval:     defaultPollInterval,
		CachePath:        mustExpand(defaultCachePath),
		LogPath:          mustExpand(defaultLogPath),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL           string `toml:"api_url"`
		DeviceID         string `toml:"device_id"`
		RequestTimeout   string `toml:"request_timeout"`
		BootstrapTimeout string `toml:"bootstrap_timeout"`
		AutosaveDebounce string `toml:"autosave_debounce"`
		PollInterval     string `toml:"poll_interval"`
		CachePath        string `toml:"cache_path"`
		LogPath          string `toml:"log_path"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.DeviceID); v != "" {
		cfg.DeviceID = v
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
		{"bootstrap_timeout", raw.BootstrapTimeout, &cfg.BootstrapTimeout},
		{"autosave_debounce", raw.AutosaveDebounce, &cfg.AutosaveDebounce},
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.raw, d.dst); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if v := strings.TrimSpace(raw.CachePath); v != "" {
		cfg.CachePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func parseDuration(key, raw string, dst *time.Duration) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s: must be positive, got %s", key, trimmed)
	}
	*dst = d
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDeviceID)); v != "" {
		cfg.DeviceID = v
	}
}

// fallbackDeviceID derives a stable id for this user on this host, so an
// unconfigured client signs in as the same anonymous user every run.
func fallbackDeviceID() string {
	host, _ := os.Hostname()
	name := "unknown"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("sidequest:"+host+":"+name)).String()
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if trimmed == ":memory:" {
		return trimmed, nil
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
