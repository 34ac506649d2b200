package db

import (
	"os"
	"regexp"
	"strings"
)

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// NormalizeDSN accepts a URL style postgres DSN, a lib/pq key=value list, or
// a sqlite path/URI. It trims quotes and whitespace; key=value postgres form
// is cleaned and gets sslmode=disable when missing.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		// sqlite path or URI, pass through to the driver
		return s
	}
	fields := strings.Fields(s)
	cleaned := strings.Join(fields, " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// GetNormalizedDSN fetches DATABASE_DSN and normalizes it, defaulting to a
// local sqlite file for development.
func GetNormalizedDSN() string {
	dsn := NormalizeDSN(os.Getenv("DATABASE_DSN"))
	if dsn == "" {
		dsn = "file:tornearia.db"
	}
	return dsn
}
