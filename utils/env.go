// stickybans/utils/env.go
package utils

import (
	"os"
	"strconv"
	"time"
)

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt reads an integer environment variable. Unset or empty yields the fallback.
func GetEnvInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, err
	}
	return v, nil
}

// GetEnvDuration reads a Go duration string such as "30s" or "1h".
func GetEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(GetEnv(key, fallback))
	if err != nil {
		def, _ := time.ParseDuration(fallback)
		return def, err
	}
	return d, nil
}
