package utils

import (
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the text form of timestamps written into cells.
const TimeLayout = "2006-01-02 15:04:05"

// ParseFlag reads a boolean query flag. "1", "true", "yes" and "on" are true in any case,
// everything else (including an absent flag) is false.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ParseLimit reads a positive count capped at ceiling. Invalid or non-positive input yields 0,
// which callers treat as "use the default". A zero ceiling means no cap.
func ParseLimit(s string, ceiling int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0
	}
	if ceiling > 0 && n > ceiling {
		return ceiling
	}
	return n
}

// FormatTime renders a SQL timestamp for a cell. ok is false when v is not a time; a nil
// *time.Time formats as "".
func FormatTime(v any) (s string, ok bool) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(TimeLayout), true
	case *time.Time:
		if t == nil {
			return "", true
		}
		return t.Format(TimeLayout), true
	}
	return "", false
}
