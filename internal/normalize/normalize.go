// Package normalize canonicalizes document numbers, monetary strings, and
// dates into comparable primitive values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var digitRun = regexp.MustCompile(`\d+`)

// Num extracts the first run of digits from s and strips leading zeros.
// A run that is all zeros normalizes to 0. Returns false when s contains
// no digits at all.
func Num(s string) (int64, bool) {
	m := digitRun.FindString(s)
	if m == "" {
		return 0, false
	}
	m = strings.TrimLeft(m, "0")
	if m == "" {
		m = "0"
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Currency parses a Brazilian-formatted monetary string. When both "." and
// "," appear, "." is the thousands separator and "," the decimal separator;
// a lone "," is the decimal separator. Quotes, spaces, and the R$ prefix
// are ignored.
func Currency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(`"`, "", " ", "", "\u00a0", "", "R$", "").Replace(s)
	if s == "" {
		return 0, false
	}
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RefDate parses a reference-side date in DD-MM-YY or DD-MM-YYYY form.
func RefDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02-01-06", "02-01-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Emissao parses an issuance timestamp in DD/MM/YYYY form with an optional
// HH:MM or HH:MM:SS suffix. hasTime reports whether a time of day was
// present; a date-only value does not default to midnight.
func Emissao(s string) (t time.Time, hasTime bool, ok bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	for _, layout := range []string{"02/01/2006 15:04:05", "02/01/2006 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, true
		}
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}
