// Package notify turns booking events into per-user alerts.
//
// Each recipient keeps the last booking status it was told about. An alert
// is raised only when the incoming status differs from that value and the
// recipient's audience cares about the status. The new status is recorded
// either way, so a replayed event never alerts twice.
package notify

import (
	"fmt"

	"github.com/md-rashed-zaman/tutorbook/libs/events"
)

type Audience string

const (
	Student Audience = "student"
	Tutor   Audience = "tutor"
)

const (
	statusPending   = "pending"
	statusConfirmed = "confirmed"
	statusCancelled = "cancelled"
)

// Recipient is one party of a booking together with its audience.
type Recipient struct {
	Audience Audience
	Party    events.Party
}

func Recipients(b events.Booking) []Recipient {
	return []Recipient{
		{Audience: Student, Party: b.Student},
		{Audience: Tutor, Party: b.Tutor},
	}
}

// Message renders the alert text aud receives for b, and false when aud is
// not alerted on b.Status.
func Message(aud Audience, b events.Booking) (string, bool) {
	switch aud {
	case Student:
		switch b.Status {
		case statusConfirmed:
			return fmt.Sprintf("Booking on %s (%s - %s) confirmed!", b.Date, b.From, b.To), true
		case statusCancelled:
			return fmt.Sprintf("Booking on %s (%s - %s) was cancelled.", b.Date, b.From, b.To), true
		}
	case Tutor:
		switch b.Status {
		case statusPending:
			return fmt.Sprintf("New booking from %s on %s (%s - %s)", b.Student.Name, b.Date, b.From, b.To), true
		case statusCancelled:
			return fmt.Sprintf("Booking by %s on %s was cancelled.", b.Student.Name, b.Date), true
		}
	}
	return "", false
}

// Subject is the email subject line for an alert about status.
func Subject(status string) string {
	switch status {
	case statusPending:
		return "New booking request"
	case statusConfirmed:
		return "Booking confirmed"
	case statusCancelled:
		return "Booking cancelled"
	default:
		return "Booking update"
	}
}
