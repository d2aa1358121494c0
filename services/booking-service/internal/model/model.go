package model

import "time"

type TutorStatus string

const (
	TutorPending  TutorStatus = "pending"
	TutorApproved TutorStatus = "approved"
	TutorRejected TutorStatus = "rejected"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Window is one weekly availability entry. Day may list several weekdays
// separated by commas, e.g. "Monday, Wednesday".
type Window struct {
	Day  string `json:"day" validate:"required,weekdays"`
	From string `json:"from" validate:"required,hhmm"`
	To   string `json:"to" validate:"required,hhmm"`
}

type Tutor struct {
	ID           string      `db:"id" json:"id"`
	UserID       string      `db:"user_id" json:"user"`
	Name         string      `db:"name" json:"name"`
	Subjects     []string    `db:"subjects" json:"subjects"`
	HourlyRate   float64     `db:"hourly_rate" json:"hourlyRate"`
	Bio          string      `db:"bio" json:"bio"`
	Rating       float64     `db:"rating" json:"rating"`
	Status       TutorStatus `db:"status" json:"status"`
	Availability []Window    `db:"availability" json:"availability"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// UserRef is the public slice of an account embedded in listings.
type UserRef struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email,omitempty"`
}

type TutorRef struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	UserID string `db:"user_id" json:"user"`
	Email  string `db:"email" json:"-"`
}

type Booking struct {
	ID         string        `db:"id" json:"id"`
	Tutor      TutorRef      `db:"tutor" json:"tutor"`
	Student    UserRef       `db:"student" json:"student"`
	Date       string        `db:"date" json:"date"`
	From       string        `db:"from_time" json:"from"`
	To         string        `db:"to_time" json:"to"`
	FromMinute int           `db:"from_minute" json:"-"`
	ToMinute   int           `db:"to_minute" json:"-"`
	Status     BookingStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updatedAt"`
}

type Review struct {
	ID        string    `db:"id" json:"id"`
	TutorID   string    `db:"tutor_id" json:"tutor"`
	Student   UserRef   `db:"student" json:"student"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
