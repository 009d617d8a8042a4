package utils

import (
	"os"
	"strings"
	"time"
)

// GetEnv returns the environment value for key, or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// TodayUTC returns the current UTC calendar date at midnight. All date
// defaulting in the chat pipeline is done against the UTC day boundary.
func TodayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseISODate parses a YYYY-MM-DD string as a UTC date.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// TitleCase upper-cases the first letter of every word ("leg press" -> "Leg Press").
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
