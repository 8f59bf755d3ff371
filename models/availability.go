package models

import (
	"fmt"
	"strings"
)

// Availability formats. A book's availability is a comma-joined subset of these.
const (
	FormatEBook    = "EBook"
	FormatPhysical = "Physical"
	FormatAudio    = "Audio"
)

var Formats = []string{FormatEBook, FormatPhysical, FormatAudio}

func isFormat(s string) bool {
	for _, f := range Formats {
		if f == s {
			return true
		}
	}
	return false
}

// NormalizeAvailability checks that raw is a non-empty comma-separated list of known formats
// and returns it re-joined without surrounding whitespace or repeated members.
func NormalizeAvailability(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("availability is empty")
	}
	seen := make(map[string]bool, len(Formats))
	var out []string
	for _, part := range strings.Split(raw, ",") {
		f := strings.TrimSpace(part)
		if !isFormat(f) {
			return "", fmt.Errorf("unknown availability %q (use %s)", f, strings.Join(Formats, ", "))
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return strings.Join(out, ","), nil
}
