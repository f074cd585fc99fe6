package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds catchupd configuration.
type Config struct {
	APIURL      string
	HTTPAddr    string
	LogLevel    string
	HTTPTimeout time.Duration
}

// fileConfig is the optional TOML file shape. Durations are strings in
// the file and parsed here.
type fileConfig struct {
	APIURL      string `toml:"api_url"`
	HTTPAddr    string `toml:"http_addr"`
	LogLevel    string `toml:"log_level"`
	HTTPTimeout string `toml:"http_timeout"`
}

// Load builds the configuration. Precedence: environment variables, then
// the TOML file at path (if non-empty), then defaults. HIPCHAT_API_URL is
// required.
func Load(path string) (Config, error) {
	var fc fileConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		APIURL:   firstNonEmpty(os.Getenv("HIPCHAT_API_URL"), fc.APIURL),
		HTTPAddr: firstNonEmpty(os.Getenv("HTTP_ADDR"), fc.HTTPAddr, ":8080"),
		LogLevel: firstNonEmpty(os.Getenv("LOG_LEVEL"), fc.LogLevel, "info"),
	}
	if cfg.APIURL == "" {
		return Config{}, fmt.Errorf("HIPCHAT_API_URL is required")
	}

	raw := firstNonEmpty(os.Getenv("HTTP_TIMEOUT"), fc.HTTPTimeout, "30s")
	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
