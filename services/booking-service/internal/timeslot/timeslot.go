// Package timeslot converts wall-clock "HH:MM" strings and "YYYY-MM-DD"
// dates into comparable values. All calendar math is pinned to UTC.
package timeslot

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrFormat     = errors.New("time must be in HH:MM format")
	ErrDateFormat = errors.New("date must be in YYYY-MM-DD format")
)

var weekdays = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ToMinutes parses a zero-padded 24-hour "HH:MM" into minutes after midnight.
func ToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	h, okH := twoDigits(s[0:2])
	m, okM := twoDigits(s[3:5])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	return h*60 + m, nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
	}
	return d, nil
}

// WeekdayName returns "Sunday".."Saturday" for a "YYYY-MM-DD" date.
func WeekdayName(date string) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return weekdays[d.Weekday()], nil
}

// IsWeekday reports whether name is a weekday, ignoring case and padding.
func IsWeekday(name string) bool {
	name = strings.TrimSpace(name)
	for _, w := range weekdays {
		if strings.EqualFold(w, name) {
			return true
		}
	}
	return false
}

// Today is the current UTC calendar date as "YYYY-MM-DD".
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// IsPast compares fixed-width dates lexicographically, which matches calendar order.
func IsPast(date string, now time.Time) bool {
	return date < Today(now)
}

// Range is a half-open [From, To) interval in minutes after midnight.
type Range struct {
	From int
	To   int
}

// ParseRange parses from/to and rejects empty or inverted ranges.
func ParseRange(from, to string) (Range, error) {
	f, err := ToMinutes(from)
	if err != nil {
		return Range{}, err
	}
	t, err := ToMinutes(to)
	if err != nil {
		return Range{}, err
	}
	if f >= t {
		return Range{}, fmt.Errorf("start time %s must be before end time %s", from, to)
	}
	return Range{From: f, To: t}, nil
}

// Overlaps is the half-open test: back-to-back ranges do not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.From < o.To && o.From < r.To
}

// Within reports whether r lies inside outer, edges included.
func (r Range) Within(outer Range) bool {
	return r.From >= outer.From && r.To <= outer.To
}

func (r Range) String() string {
	return FormatMinutes(r.From) + " - " + FormatMinutes(r.To)
}
