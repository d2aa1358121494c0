// Package events holds the Kafka topics and payloads exchanged between services.
// Topic name equals event type.
package events

const (
	BookingCreated       = "booking.created.v1"
	BookingStatusChanged = "booking.status_changed.v1"
	UserRegistered       = "auth.user.registered.v1"
	UserDeleted          = "auth.user.deleted.v1"
)

type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Booking is the payload of BookingCreated and BookingStatusChanged.
type Booking struct {
	BookingID      string `json:"booking_id"`
	TutorProfileID string `json:"tutor_profile_id"`
	Tutor          Party  `json:"tutor"`
	Student        Party  `json:"student"`
	Date           string `json:"date"`
	From           string `json:"from"`
	To             string `json:"to"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	ChangedBy      string `json:"changed_by,omitempty"`
}

type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}
