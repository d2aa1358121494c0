// Package policy is the single authorization table consulted by every
// mutating operation. A rule grants an operation to a role, optionally
// only when the caller stands in a given relation to the resource.
package policy

import (
	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
)

type Operation string

const (
	CreateProfile       Operation = "profile.create"
	UpdateProfile       Operation = "profile.update"
	DeleteProfile       Operation = "profile.delete"
	ModerateProfile     Operation = "profile.moderate"
	CreateBooking       Operation = "booking.create"
	ListAllBookings     Operation = "booking.list_all"
	ListMyBookings      Operation = "booking.list_mine"
	UpdateBookingStatus Operation = "booking.update_status"
	CancelBooking       Operation = "booking.cancel"
	ExportBookings      Operation = "booking.export"
	CreateReview        Operation = "review.create"
	ListUsers           Operation = "user.list"
	DeleteUser          Operation = "user.delete"
)

// Relation describes how the caller relates to the resource.
type Relation uint8

const (
	// Any needs no relation.
	Any Relation = 1 << iota
	// Owner: the caller owns the tutor profile, or is the booking's student.
	Owner
	// AssignedTutor: the caller's tutor profile is the booking's tutor.
	AssignedTutor
)

type rule struct {
	role     auth.Role
	requires Relation
}

type entry struct {
	rules  []rule
	denied string
}

var table = map[Operation]entry{
	CreateProfile: {
		rules:  []rule{{auth.RoleTutor, Any}},
		denied: "Access denied. Only tutors can create profiles.",
	},
	UpdateProfile: {
		rules:  []rule{{auth.RoleAdmin, Any}, {auth.RoleTutor, Owner}},
		denied: "Access denied",
	},
	DeleteProfile: {
		rules:  []rule{{auth.RoleAdmin, Any}, {auth.RoleTutor, Owner}},
		denied: "Access denied",
	},
	ModerateProfile: {
		rules:  []rule{{auth.RoleAdmin, Any}},
		denied: "Only admins can moderate tutors",
	},
	CreateBooking: {
		rules:  []rule{{auth.RoleStudent, Any}},
		denied: "Only students can book a tutor.",
	},
	ListAllBookings: {
		rules:  []rule{{auth.RoleAdmin, Any}},
		denied: "Only admins can view all bookings.",
	},
	ListMyBookings: {
		rules:  []rule{{auth.RoleStudent, Any}, {auth.RoleTutor, Any}},
		denied: "Unauthorized",
	},
	UpdateBookingStatus: {
		rules:  []rule{{auth.RoleAdmin, Any}, {auth.RoleTutor, AssignedTutor}},
		denied: "Not authorized to update this booking",
	},
	CancelBooking: {
		rules:  []rule{{auth.RoleAdmin, Any}, {auth.RoleStudent, Owner}, {auth.RoleTutor, AssignedTutor}},
		denied: "Not authorized to delete",
	},
	ExportBookings: {
		rules:  []rule{{auth.RoleAdmin, Any}},
		denied: "Only admins can export bookings.",
	},
	CreateReview: {
		rules:  []rule{{auth.RoleStudent, Any}},
		denied: "Only students can submit reviews.",
	},
	ListUsers: {
		rules:  []rule{{auth.RoleAdmin, Any}},
		denied: "Access denied",
	},
	DeleteUser: {
		rules:  []rule{{auth.RoleAdmin, Any}},
		denied: "Access denied",
	},
}

// Authorize returns nil when role, holding relations rel, may perform op.
// Otherwise it returns an authorization error with the operation's message.
func Authorize(op Operation, role auth.Role, rel Relation) error {
	e, ok := table[op]
	if !ok {
		return apperr.Forbidden("Access denied")
	}
	for _, r := range e.rules {
		if r.role != role {
			continue
		}
		if r.requires == Any || rel&r.requires != 0 {
			return nil
		}
	}
	return apperr.Forbidden(e.denied)
}

// Needs reports the relations that could grant op to role. Callers use it
// to skip resolving ownership when the role alone settles the decision.
func Needs(op Operation, role auth.Role) Relation {
	var rel Relation
	for _, r := range table[op].rules {
		if r.role == role {
			rel |= r.requires
		}
	}
	return rel
}

// RoleCan rejects role for op when no rule names it, whatever the relation.
// Handlers call it before decoding a body so callers without the role get
// 403 rather than a validation error.
func RoleCan(op Operation, role auth.Role) error {
	if Needs(op, role) != 0 {
		return nil
	}
	return Authorize(op, role, 0)
}
