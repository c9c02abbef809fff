package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envAs parses the trimmed value of key and falls back to def when the
// variable is unset or malformed.
func envAs[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

// getEnv returns the raw value of key, blank included, when it is set.
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	return envAs(key, def, strconv.Atoi)
}

func getEnvAsBool(key string, def bool) bool {
	return envAs(key, def, strconv.ParseBool)
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	return envAs(key, def, time.ParseDuration)
}

func getEnvAsFloat(key string, def float64) float64 {
	return envAs(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// getEnvAsStringSlice splits a comma separated list, dropping empty items.
func getEnvAsStringSlice(key string, def []string) []string {
	return envAs(key, def, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil, strconv.ErrSyntax
		}
		return out, nil
	})
}
