// Package env reads process environment variables that are needed before the
// typed config is loaded, such as the log format.
package env

import (
	"os"
	"strings"
)

// Get returns the named variable, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
