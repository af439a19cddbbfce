package parse

import (
	"regexp"
	"strings"
)

// DefaultPassword replaces a password the sheet collapsed to a bare zero.
const DefaultPassword = "0000"

var (
	floatArtifactRe = regexp.MustCompile(`^-?\d+\.0$`)
	clockRe         = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})(?::\d{2})?\s*$`)
)

// StripFloatArtifact removes the trailing ".0" a spreadsheet adds when it stores
// a numeric-looking string as a float ("1234.0" -> "1234").
func StripFloatArtifact(s string) string {
	s = strings.TrimSpace(s)
	if floatArtifactRe.MatchString(s) {
		return strings.TrimSuffix(s, ".0")
	}
	return s
}

// ID normalizes a reservation ID cell.
func ID(s string) string {
	return StripFloatArtifact(s)
}

// Password normalizes a password cell. "0" becomes DefaultPassword.
func Password(s string) string {
	p := StripFloatArtifact(s)
	if p == "0" {
		return DefaultPassword
	}
	return p
}

// PadTime zero-pads the hour of a time cell and drops a seconds suffix
// ("9:00" -> "09:00", "13:30:00" -> "13:30"). Unrecognized input is returned trimmed.
func PadTime(s string) string {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return strings.TrimSpace(s)
	}
	hour := m[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	return hour + ":" + m[2]
}

// Date trims a date cell and drops a time suffix a sheet may append ("2024-06-03 00:00:00").
func Date(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i > 0 {
		return s[:i]
	}
	return s
}
