package policy

import (
	"testing"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/libs/auth"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name string
		op   Operation
		role auth.Role
		rel  Relation
		ok   bool
	}{
		{"student books", CreateBooking, auth.RoleStudent, 0, true},
		{"tutor cannot book", CreateBooking, auth.RoleTutor, 0, false},
		{"assigned tutor confirms", UpdateBookingStatus, auth.RoleTutor, AssignedTutor, true},
		{"other tutor cannot confirm", UpdateBookingStatus, auth.RoleTutor, 0, false},
		{"owning student cannot confirm", UpdateBookingStatus, auth.RoleStudent, Owner, false},
		{"admin sets status", UpdateBookingStatus, auth.RoleAdmin, 0, true},
		{"owning student cancels", CancelBooking, auth.RoleStudent, Owner, true},
		{"foreign student cannot cancel", CancelBooking, auth.RoleStudent, 0, false},
		{"assigned tutor cancels", CancelBooking, auth.RoleTutor, AssignedTutor, true},
		{"owner edits profile", UpdateProfile, auth.RoleTutor, Owner, true},
		{"non owner cannot edit profile", UpdateProfile, auth.RoleTutor, 0, false},
		{"admin deletes profile", DeleteProfile, auth.RoleAdmin, 0, true},
		{"tutor cannot moderate", ModerateProfile, auth.RoleTutor, Owner, false},
		{"student reviews", CreateReview, auth.RoleStudent, 0, true},
		{"admin cannot list mine", ListMyBookings, auth.RoleAdmin, 0, false},
		{"unknown operation", Operation("nope"), auth.RoleAdmin, Any, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.op, tc.role, tc.rel)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.Is(err, apperr.KindAuthorization))
		})
	}
}

func TestDenialMessage(t *testing.T) {
	err := Authorize(CreateBooking, auth.RoleTutor, 0)
	assert.Equal(t, "Only students can book a tutor.", apperr.Message(err))
}

func TestNeeds(t *testing.T) {
	assert.Equal(t, Any, Needs(CancelBooking, auth.RoleAdmin))
	assert.Equal(t, Owner, Needs(CancelBooking, auth.RoleStudent))
	assert.Equal(t, AssignedTutor, Needs(UpdateBookingStatus, auth.RoleTutor))
	assert.Equal(t, Relation(0), Needs(CreateBooking, auth.RoleTutor))
}

func TestRoleCan(t *testing.T) {
	assert.NoError(t, RoleCan(CreateBooking, auth.RoleStudent))
	assert.NoError(t, RoleCan(UpdateBookingStatus, auth.RoleTutor), "relation is checked later")

	err := RoleCan(CreateBooking, auth.RoleTutor)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	assert.Equal(t, "Only students can book a tutor.", apperr.Message(err))

	assert.Error(t, RoleCan(UpdateProfile, auth.RoleStudent))
}
