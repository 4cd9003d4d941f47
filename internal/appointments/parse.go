package appointments

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used for input and output.
const (
	DateLayout    = "2006-01-02"
	SlotLayout    = "2006-01-02 15:04"
	DisplayLayout = "03:04 PM"
)

// timeLayouts are tried in order by ParseTime. Only the first carries an offset.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	SlotLayout,
}

// LoadZone resolves an IANA zone name, falling back to fallback when name is empty.
func LoadZone(name, fallback string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, invalidf("unknown timezone %q", name)
	}
	return loc, nil
}

// ResolveDate turns "today", "tomorrow" or a YYYY-MM-DD date into midnight of
// that day in loc. Input is trimmed and matched case-insensitively.
func ResolveDate(input string, now time.Time, loc *time.Location) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, invalidf("date parameter required")
	}

	local := now.In(loc)
	switch strings.ToLower(input) {
	case "today":
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc), nil
	case "tomorrow":
		return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc), nil
	}

	day, err := time.ParseInLocation(DateLayout, input, loc)
	if err != nil {
		return time.Time{}, invalidf(`Invalid date format. Use YYYY-MM-DD, "today", or "tomorrow"`)
	}
	return day, nil
}

// ParseTime parses a start or end time. Values without an offset are read
// in loc.
func ParseTime(field, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, RequiredError(field)
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalidf("invalid %s %q: use RFC3339 or YYYY-MM-DDTHH:MM", field, value)
}

// parseRange parses start and end and checks that end is after start.
func parseRange(startField, start, endField, end string, loc *time.Location) (time.Time, time.Time, error) {
	s, err := ParseTime(startField, start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := ParseTime(endField, end, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, invalidf("%s must be after %s", endField, startField)
	}
	return s, e, nil
}

// FormatDisplay renders a slot as "10:00 AM to 11:00 AM".
func FormatDisplay(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format(DisplayLayout), end.Format(DisplayLayout))
}
