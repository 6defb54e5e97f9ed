package editor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidDuration = errors.New("invalid duration")

var (
	hoursToken   = regexp.MustCompile(`(\d+)\s*h`)
	minutesToken = regexp.MustCompile(`(\d+)\s*m(?:n|in)?`)
)

// DurationParts is the hours/minutes pair shown in the basic-info form.
type DurationParts struct {
	Hours   string
	Minutes string
}

// FormatDuration encodes a duration as "<h>h<m>mn", leaving out a zero part.
// Zero hours and zero minutes give "".
func FormatDuration(hours, minutes int) string {
	var b strings.Builder
	if hours > 0 {
		b.WriteString(strconv.Itoa(hours))
		b.WriteString("h")
	}
	if minutes > 0 {
		b.WriteString(strconv.Itoa(minutes))
		b.WriteString("mn")
	}
	return b.String()
}

// ParseDuration reads a stored duration. Missing tokens read as "0".
func ParseDuration(s string) DurationParts {
	p := DurationParts{Hours: "0", Minutes: "0"}
	s = strings.ToLower(strings.TrimSpace(s))
	if m := hoursToken.FindStringSubmatch(s); m != nil {
		p.Hours = normalizeCount(m[1])
	}
	if m := minutesToken.FindStringSubmatch(s); m != nil {
		p.Minutes = normalizeCount(m[1])
	}
	return p
}

// ValidateDurationInput checks the raw form values and returns them as numbers.
// Blank counts as zero; negative or non-numeric input is rejected.
func ValidateDurationInput(hours, minutes string) (int, int, error) {
	h, err := parseCount("hours", hours)
	if err != nil {
		return 0, 0, err
	}
	m, err := parseCount("minutes", minutes)
	if err != nil {
		return 0, 0, err
	}
	return h, m, nil
}

func parseCount(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", ErrInvalidDuration, field)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s cannot be negative", ErrInvalidDuration, field)
	}
	return n, nil
}

// totalMinutes treats invalid input as zero.
func totalMinutes(hours, minutes string) int {
	h, _ := parseCount("hours", hours)
	m, _ := parseCount("minutes", minutes)
	return h*60 + m
}

func normalizeCount(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "0"
	}
	return strconv.Itoa(n)
}
