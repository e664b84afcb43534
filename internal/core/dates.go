// AngelaMos | 2026
// dates.go

package core

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads an optional calendar date. Blank input is nil.
func ParseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, Invalid(field, "must be a date in the format YYYY-MM-DD")
	}

	return &t, nil
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
