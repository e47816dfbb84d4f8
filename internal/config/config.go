// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server and the
// display-currency rate client.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	RateURL         string
	RateQuoteName   string
	RateRefresh     time.Duration
	RateTimeout     time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		RateURL:         getenv("RATE_URL", "https://www.dolarsi.com/api/api.php?type=valoresprincipales"),
		RateQuoteName:   getenv("RATE_QUOTE_NAME", "Dolar Blue"),
		RateRefresh:     durenvms("RATE_REFRESH_MS", 60000),
		RateTimeout:     durenvms("RATE_TIMEOUT_MS", 3000),
	}
}
