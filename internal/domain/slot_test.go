package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("PHT", 8*60*60)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, testLoc)
}

func TestParseSlotLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    SlotLabel
		wantErr bool
	}{
		{in: "09:00 AM", want: "09:00 AM"},
		{in: " 01:00 pm ", want: "01:00 PM"},
		{in: "9:00 AM", want: "09:00 AM"},
		{in: "13:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSlotLabel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlotLabel_MinutesOfDay(t *testing.T) {
	m, err := SlotLabel("01:00 PM").MinutesOfDay()
	require.NoError(t, err)
	assert.Equal(t, 13*60, m)

	m, err = SlotLabel("08:00 AM").MinutesOfDay()
	require.NoError(t, err)
	assert.Equal(t, 8*60, m)
}

func TestCalendar_AvailableLabels(t *testing.T) {
	cal := NewDefaultCalendar()
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, testLoc)

	t.Run("past date returns empty", func(t *testing.T) {
		for _, d := range []time.Time{day(2025, 5, 19), day(2024, 12, 31), day(2025, 1, 1)} {
			assert.Empty(t, cal.AvailableLabels(d, now, nil))
		}
	})

	t.Run("no bookings returns full template in order", func(t *testing.T) {
		got := cal.AvailableLabels(day(2025, 6, 1), now, nil)
		assert.Equal(t, DefaultSlotLabels, got)
		assert.Len(t, got, 8)
	})

	t.Run("occupied slot is excluded", func(t *testing.T) {
		bookings := []*Booking{
			{SlotTime: "09:00 AM", Status: StatusPending},
		}
		got := cal.AvailableLabels(day(2025, 6, 1), now, bookings)
		assert.Len(t, got, 7)
		assert.NotContains(t, got, SlotLabel("09:00 AM"))
	})

	t.Run("terminal bookings release the slot", func(t *testing.T) {
		bookings := []*Booking{
			{SlotTime: "09:00 AM", Status: StatusCancelled},
			{SlotTime: "10:00 AM", Status: StatusDeclined},
			{SlotTime: "11:00 AM", Status: StatusCompleted},
		}
		got := cal.AvailableLabels(day(2025, 6, 1), now, bookings)
		assert.Equal(t, DefaultSlotLabels, got)
	})

	t.Run("every non-terminal status occupies", func(t *testing.T) {
		bookings := []*Booking{
			{SlotTime: "08:00 AM", Status: StatusPending},
			{SlotTime: "09:00 AM", Status: StatusConfirmed},
			{SlotTime: "10:00 AM", Status: StatusInProgress},
		}
		got := cal.AvailableLabels(day(2025, 6, 1), now, bookings)
		assert.Equal(t, []SlotLabel{"11:00 AM", "01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM"}, got)
	})

	t.Run("today honours min notice", func(t *testing.T) {
		// 10:00 + 60 минут: доступны слоты с 11:00
		got := cal.AvailableLabels(day(2025, 5, 20), now, nil)
		assert.Equal(t, []SlotLabel{"11:00 AM", "01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM"}, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		bookings := []*Booking{{SlotTime: "02:00 PM", Status: StatusConfirmed}}
		first := cal.AvailableLabels(day(2025, 6, 1), now, bookings)
		second := cal.AvailableLabels(day(2025, 6, 1), now, bookings)
		assert.Equal(t, first, second)
	})
}

func TestCalendar_Capacity(t *testing.T) {
	cal := NewDefaultCalendar()
	cal.Capacity = 2
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, testLoc)

	bookings := []*Booking{{SlotTime: "09:00 AM", Status: StatusPending}}
	assert.Contains(t, cal.AvailableLabels(day(2025, 6, 1), now, bookings), SlotLabel("09:00 AM"))

	bookings = append(bookings, &Booking{SlotTime: "09:00 AM", Status: StatusConfirmed})
	assert.NotContains(t, cal.AvailableLabels(day(2025, 6, 1), now, bookings), SlotLabel("09:00 AM"))

	slots := cal.Availability(day(2025, 6, 1), now, bookings)
	require.Len(t, slots, 8)
	assert.Equal(t, SlotLabel("09:00 AM"), slots[1].Label)
	assert.Equal(t, 2, slots[1].Taken)
	assert.Equal(t, 0, slots[1].Available())
	assert.True(t, slots[1].IsFull())
	assert.Equal(t, 2, slots[0].Available())
}

func TestCalendar_AdvanceHorizon(t *testing.T) {
	cal := NewDefaultCalendar()
	cal.AdvanceBookingDays = 30
	now := time.Date(2025, 5, 20, 10, 0, 0, 0, testLoc)

	assert.True(t, cal.IsDateBookable(day(2025, 6, 19), now))
	assert.False(t, cal.IsDateBookable(day(2025, 6, 20), now))
	assert.Empty(t, cal.AvailableLabels(day(2025, 7, 1), now, nil))
}

func TestCalendar_Validate(t *testing.T) {
	assert.NoError(t, NewDefaultCalendar().Validate())

	cal := NewDefaultCalendar()
	cal.Capacity = 0
	assert.Error(t, cal.Validate())

	cal = NewDefaultCalendar()
	cal.Labels = []SlotLabel{"09:00 AM", "09:00 AM"}
	assert.Error(t, cal.Validate())

	cal = NewDefaultCalendar()
	cal.Labels = []SlotLabel{"25:00"}
	assert.Error(t, cal.Validate())

	cal = NewDefaultCalendar()
	cal.Labels = nil
	assert.Error(t, cal.Validate())
}
