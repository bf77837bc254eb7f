package repository

import (
	"fmt"
	"strings"
	"time"
)

// ParseTime parses a timestamp string in RFC3339, SQLite DATETIME
// ("2006-01-02 15:04:05") or plain date format.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", str)
}

// FormatTime renders a timestamp for storage. All timestamps are stored as
// RFC3339 UTC strings so they round-trip through ParseTime.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// placeholders returns a comma-joined list of n SQL placeholders.
func placeholders(n int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = "?"
	}
	return strings.Join(p, ",")
}
