package booking

import (
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/timeslot"
)

const conflictMessage = "❌ Time slot overlaps with another booking. Please choose a different time."

// FindConflict returns the first live booking whose slot overlaps req.
// Cancelled bookings never block a slot.
func FindConflict(existing []model.Booking, req timeslot.Range) (model.Booking, bool) {
	for _, b := range existing {
		if b.Status == model.BookingCancelled {
			continue
		}
		if req.Overlaps(timeslot.Range{From: b.FromMinute, To: b.ToMinute}) {
			return b, true
		}
	}
	return model.Booking{}, false
}
