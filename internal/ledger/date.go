package ledger

import (
	"fmt"
	"strings"
	"time"
)

// ISODate is the layout user dates are stored in.
const ISODate = "2006-01-02"

// Accepted user-date layouts, tried in order. Month-first wins when a value
// reads both ways (03/04/2026 is March 4th).
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
	"2-1-2006",
}

// ParseDate parses s against the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ValidDate reports whether s is in an accepted layout.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// NormalizeDate rewrites s as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(ISODate), nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(ISODate)
}
