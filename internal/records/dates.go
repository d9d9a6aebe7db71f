package records

import (
	"fmt"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

var isoLayouts = []string{
	"2006-01-02",
	"2006-01",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02.01.2006",
}

// ParseDate parses a case or volume date and truncates it to a UTC calendar day.
// ISO layouts are tried first; anything else goes through the natural-language parser,
// so inputs such as "15 March 2024" are accepted as well.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}

	parser := dps.Parser{}
	cfg := &dps.Configuration{
		// Month-only dates resolve to the first of the month
		PreferredDayOfMonth: dps.First,
		DefaultTimezone:     time.UTC,
	}
	parsed, err := parser.Parse(cfg, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, err)
	}
	if parsed.IsZero() {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return truncateDay(parsed.Time), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
