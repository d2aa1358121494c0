package availability

import (
	"math"
	"testing"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/timeslot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFirstWindowWins(t *testing.T) {
	windows := []model.Window{
		{Day: "Tuesday", From: "08:00", To: "09:00"},
		{Day: " monday ,Wednesday", From: "09:00", To: "12:00"},
		{Day: "Monday", From: "13:00", To: "17:00"},
	}
	w, ok := Match(windows, "Monday")
	require.True(t, ok)
	assert.Equal(t, "09:00", w.From)

	_, ok = Match(windows, "Sunday")
	assert.False(t, ok)
}

func TestCheckNamesMissingWeekday(t *testing.T) {
	windows := []model.Window{{Day: "Monday", From: "09:00", To: "12:00"}}
	// 2026-01-06 is a Tuesday.
	_, err := Check(windows, "2026-01-06", timeslot.Range{From: 540, To: 600})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Tutor not available on Tuesday", apperr.Message(err))
}

func TestCheckBounds(t *testing.T) {
	windows := []model.Window{{Day: "Monday", From: "09:00", To: "12:00"}}
	monday := "2026-01-05"

	_, err := Check(windows, monday, timeslot.Range{From: 540, To: 720})
	assert.NoError(t, err, "touching both edges is allowed")

	_, err = Check(windows, monday, timeslot.Range{From: 530, To: 600})
	require.Error(t, err)
	assert.Equal(t, "Please book within tutor's available time: 09:00 - 12:00", apperr.Message(err))

	_, err = Check(windows, monday, timeslot.Range{From: 660, To: 725})
	assert.Error(t, err)
}

func TestFreeSlots(t *testing.T) {
	window := timeslot.Range{From: 540, To: 600}
	busy := []timeslot.Range{{From: 555, To: 585}}

	slots := FreeSlots(window, 15, 15, 0, busy)
	require.Len(t, slots, 2)
	assert.Equal(t, timeslot.Range{From: 540, To: 555}, slots[0])
	assert.Equal(t, timeslot.Range{From: 585, To: 600}, slots[1])
}

func TestFreeSlotsSkipsBeforeNotBefore(t *testing.T) {
	window := timeslot.Range{From: 540, To: 600}
	slots := FreeSlots(window, 15, 15, 571, nil)
	require.Len(t, slots, 1)
	assert.Equal(t, 585, slots[0].From)
}

func TestFreeSlotsOversizedValues(t *testing.T) {
	window := timeslot.Range{From: 540, To: 720}

	assert.Nil(t, FreeSlots(window, math.MaxInt, 60, 0, nil))
	assert.Nil(t, FreeSlots(window, 181, 60, 0, nil))
	assert.Equal(t, []timeslot.Range{{From: 540, To: 600}}, FreeSlots(window, 60, math.MaxInt, 0, nil))
	assert.Equal(t, []timeslot.Range{{From: 540, To: 720}}, FreeSlots(window, 180, 1, 0, nil))

	for _, s := range FreeSlots(window, 60, 7, 0, nil) {
		assert.True(t, s.Within(window), "slot %v outside window", s)
	}
}
