package dateutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var dayNames = [...]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Alternation order matters: Go regexps pick the leftmost-first matching
// branch, so longer month tokens are listed before shorter ones.
var formatToken = regexp.MustCompile(`MMMM|MMM|MM|M|yyyy|yy|dd|d|EEEE|EEE|HH|mm|a`)

// Format renders t using a small token pattern (e.g. "yyyy-MM-dd",
// "MMMM yyyy", "HH:mm a"). Unrecognized characters pass through unchanged.
// Names are fixed English.
func Format(t time.Time, pattern string) string {
	month := monthNames[t.Month()-1]
	weekday := dayNames[t.Weekday()]
	year := strconv.Itoa(t.Year())

	return formatToken.ReplaceAllStringFunc(pattern, func(tok string) string {
		switch tok {
		case "MMMM":
			return month
		case "MMM":
			return month[:3]
		case "MM":
			return fmt.Sprintf("%02d", int(t.Month()))
		case "M":
			return strconv.Itoa(int(t.Month()))
		case "yyyy":
			return year
		case "yy":
			if len(year) < 2 {
				return year
			}
			return year[len(year)-2:]
		case "dd":
			return fmt.Sprintf("%02d", t.Day())
		case "d":
			return strconv.Itoa(t.Day())
		case "EEEE":
			return weekday
		case "EEE":
			return weekday[:3]
		case "HH":
			return fmt.Sprintf("%02d", t.Hour())
		case "mm":
			return fmt.Sprintf("%02d", t.Minute())
		case "a":
			if t.Hour() >= 12 {
				return "PM"
			}
			return "AM"
		}
		return tok
	})
}

// DateTimeLocalLayout is the layout of an HTML datetime-local input value.
const DateTimeLocalLayout = "2006-01-02T15:04"

// FormatDateTimeLocal renders t for a datetime-local form field.
func FormatDateTimeLocal(t time.Time) string {
	return t.Format(DateTimeLocalLayout)
}

// ParseDateTimeLocal parses a datetime-local value as wall-clock time in loc.
func ParseDateTimeLocal(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateTimeLocalLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse datetime-local %q: %w", s, err)
	}
	return t, nil
}
