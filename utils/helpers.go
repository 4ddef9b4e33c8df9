package utils

import (
	"fmt"
	"strconv"
	"time"
)

// ParseTimeParam parses an optional RFC3339 query value.
func ParseTimeParam(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid '%s' timestamp format, use RFC3339 (e.g., 2006-01-02T15:04:05Z)", name)
	}
	return &t, nil
}

// ParseLimit parses an optional positive integer capped at max.
func ParseLimit(value string, def, max int) (int, error) {
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if n > max {
		return max, nil
	}
	return n, nil
}

// ParseLocation resolves an optional IANA zone name; empty means nil so
// the caller's default applies.
func ParseLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q", name)
	}
	return loc, nil
}

// UserKey renders a numeric user id the way tracking events store it.
func UserKey(id int) string {
	return strconv.Itoa(id)
}
