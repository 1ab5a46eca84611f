package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadDate is returned when a header date matches none of the accepted layouts.
var ErrBadDate = errors.New("parser: unparseable date")

// dateLayouts accept yyyy-MM-dd with optional HH, HH:mm or HH:mm:ss.
// Missing fields default to zero.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15",
	"2006-01-02",
}

// ParseTime parses a header date in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(CleanQuotes(strings.TrimSpace(s)))
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}
