package schedule

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a staff member's declared availability window on a given date.
type TimeSlot struct {
	ID        uuid.UUID
	StaffID   uuid.UUID
	Date      time.Time // calendar day, midnight UTC
	Start     MinuteOfDay
	End       MinuteOfDay
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s TimeSlot) Interval() Interval {
	return Interval{Date: s.Date, Start: s.Start, End: s.End}
}

// SlotView is a TimeSlot plus its occupancy, as listings report it.
type SlotView struct {
	TimeSlot
	Booked bool
}

// Booking is a patient's claim on exactly one slot. StaffID and Date are
// copied from the slot at booking time so the row stays meaningful on its own.
type Booking struct {
	ID        uuid.UUID
	SlotID    uuid.UUID
	PatientID uuid.UUID
	StaffID   uuid.UUID
	Date      time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID         uuid.UUID
	Name       string
	Email      *string
	AuthUserID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Personnel struct {
	ID         uuid.UUID
	Name       string
	AuthUserID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SlotFilter narrows slot listings. Nil fields match everything.
type SlotFilter struct {
	StaffID  *uuid.UUID
	Date     *time.Time
	FreeOnly bool
}

// BookingFilter narrows booking listings. Nil fields match everything.
type BookingFilter struct {
	PatientID *uuid.UUID
	StaffID   *uuid.UUID
}
