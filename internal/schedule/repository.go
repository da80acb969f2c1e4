package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository contains all DB interactions needed by the services.
type Repository interface {
	// Slots
	GetSlotByID(ctx context.Context, id uuid.UUID) (*SlotView, error)
	ListSlots(ctx context.Context, f SlotFilter) ([]SlotView, error)
	// ListSlotsForDay returns every slot for one staff member on one day,
	// booked or not. This is the overlap-scan working set.
	ListSlotsForDay(ctx context.Context, staffID uuid.UUID, date time.Time) ([]TimeSlot, error)
	CreateSlot(ctx context.Context, s *TimeSlot) error
	UpdateSlot(ctx context.Context, s *TimeSlot) error
	DeleteSlot(ctx context.Context, id uuid.UUID) error

	// Bookings
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingForSlot(ctx context.Context, slotID uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]Booking, error)
	// CreateBooking must fail with ErrSlotTaken when a live booking already
	// references b.SlotID, even under concurrent callers.
	CreateBooking(ctx context.Context, b *Booking) error
	// MoveBooking atomically re-points a booking at a new slot; on any
	// failure the original booking is untouched.
	MoveBooking(ctx context.Context, bookingID, newSlotID uuid.UUID, notes *string) (*Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error

	// Profiles
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPersonnelByID(ctx context.Context, id uuid.UUID) (*Personnel, error)
}
