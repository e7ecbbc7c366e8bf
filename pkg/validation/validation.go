package validation

import (
	"regexp"
	"strings"
)

var dailyTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidDailyTime reports whether s is a zero-padded 24-hour "HH:MM" value.
func IsValidDailyTime(s string) bool {
	return dailyTimeRegex.MatchString(s)
}

// IsValidUTCOffset reports whether the offset in seconds falls within the
// range of real-world timezones.
func IsValidUTCOffset(seconds int) bool {
	return seconds >= -14*3600 && seconds <= 14*3600
}

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// TrimAndValidate trims string and validates it's not empty
func TrimAndValidate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}
