package availability

import (
	"fmt"
	"strings"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/timeslot"
)

// Days splits a window's day field into trimmed, lower-cased weekday names.
func Days(day string) []string {
	parts := strings.Split(day, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Match returns the first window listing weekday. Later windows for the
// same day are never consulted.
func Match(windows []model.Window, weekday string) (model.Window, bool) {
	want := strings.ToLower(weekday)
	for _, w := range windows {
		for _, d := range Days(w.Day) {
			if d == want {
				return w, true
			}
		}
	}
	return model.Window{}, false
}

// ValidateSlot reports whether req fits inside window, edges included.
func ValidateSlot(window model.Window, req timeslot.Range) error {
	bounds, err := timeslot.ParseRange(window.From, window.To)
	if err != nil || !req.Within(bounds) {
		return apperr.Validation(fmt.Sprintf("Please book within tutor's available time: %s - %s", window.From, window.To))
	}
	return nil
}

// Check runs the weekday match and the bounds check for a booking request.
func Check(windows []model.Window, date string, req timeslot.Range) (model.Window, error) {
	weekday, err := timeslot.WeekdayName(date)
	if err != nil {
		return model.Window{}, apperr.Validation("date must be in YYYY-MM-DD format")
	}
	window, ok := Match(windows, weekday)
	if !ok {
		return model.Window{}, apperr.Validation("Tutor not available on " + weekday)
	}
	if err := ValidateSlot(window, req); err != nil {
		return model.Window{}, err
	}
	return window, nil
}

// FreeSlots returns the start of every slot of length duration, stepping by
// step minutes through window, that starts at or after notBefore and does
// not overlap any busy range.
func FreeSlots(window timeslot.Range, duration, step, notBefore int, busy []timeslot.Range) []timeslot.Range {
	if duration <= 0 || step <= 0 || window.From >= window.To || duration > window.To-window.From {
		return nil
	}
	var slots []timeslot.Range
	last := window.To - duration
	for start := window.From; start <= last; start += step {
		if start >= notBefore {
			slot := timeslot.Range{From: start, To: start + duration}
			if !overlapsAny(slot, busy) {
				slots = append(slots, slot)
			}
		}
		if step > last-start {
			break
		}
	}
	return slots
}

func overlapsAny(slot timeslot.Range, busy []timeslot.Range) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}
