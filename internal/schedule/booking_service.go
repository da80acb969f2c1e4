package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	redisclient "github.com/Abrahamm4/HomeCare/internal/redis"
)

const maxNotesLen = 500

// BookingService converts free slots into bookings and back. The unique
// constraint on bookings.slot_id is the correctness guarantee; the per-slot
// lock on top of it keeps hot slots from hammering the database with inserts
// that are doomed to conflict.
type BookingService struct {
	repo   Repository
	locker redisclient.Locker
	log    *zap.Logger
}

func NewBookingService(repo Repository, locker redisclient.Locker, log *zap.Logger) *BookingService {
	return &BookingService{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

// Book claims a free slot for a patient. Exactly one of two simultaneous
// calls on the same slot succeeds; the other gets ErrSlotTaken.
func (s *BookingService) Book(ctx context.Context, slotID, patientID uuid.UUID, notes string) (*Booking, error) {
	if len(notes) > maxNotesLen {
		ve := NewValidationError()
		ve.Addf("notes", "must be at most %d characters", maxNotesLen)
		return nil, ve.Err()
	}

	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.Booked {
		return nil, ErrSlotTaken
	}

	var created *Booking

	err = s.locker.WithSlotLock(ctx, slotID, func(lockCtx context.Context) error {
		// Re-check inside the critical section; another instance may have
		// booked between the read above and lock acquisition.
		existing, err := s.repo.GetBookingForSlot(lockCtx, slotID)
		if err != nil && !errors.Is(err, ErrBookingNotFound) {
			return fmt.Errorf("check slot occupancy: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		b := &Booking{
			ID:        uuid.New(),
			SlotID:    slotID,
			PatientID: patientID,
			StaffID:   slot.StaffID,
			Date:      slot.Date,
			Notes:     notes,
		}
		if err := s.repo.CreateBooking(lockCtx, b); err != nil {
			return err
		}

		created = b
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.log.Info("slot booked",
		zap.String("booking_id", created.ID.String()),
		zap.String("slot_id", slotID.String()),
		zap.String("patient_id", patientID.String()),
	)
	return created, nil
}

// Release deletes the booking; the slot becomes free again. A repeated call
// on an already-released id reports ErrBookingNotFound.
func (s *BookingService) Release(ctx context.Context, bookingID uuid.UUID) error {
	if err := s.repo.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}
	s.log.Info("booking released", zap.String("booking_id", bookingID.String()))
	return nil
}

// Move re-points a booking at a new slot. It either fully succeeds (old slot
// free, new slot booked) or fully fails with the original booking intact.
// notes, when non-nil, replaces the booking notes in the same step.
func (s *BookingService) Move(ctx context.Context, bookingID, newSlotID uuid.UUID, notes *string) (*Booking, error) {
	if notes != nil && len(*notes) > maxNotesLen {
		ve := NewValidationError()
		ve.Addf("notes", "must be at most %d characters", maxNotesLen)
		return nil, ve.Err()
	}

	var moved *Booking

	err := s.locker.WithSlotLock(ctx, newSlotID, func(lockCtx context.Context) error {
		b, err := s.repo.MoveBooking(lockCtx, bookingID, newSlotID, notes)
		if err != nil {
			return err
		}
		moved = b
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.log.Info("booking moved",
		zap.String("booking_id", bookingID.String()),
		zap.String("slot_id", newSlotID.String()),
	)
	return moved, nil
}

func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, id)
}

func (s *BookingService) List(ctx context.Context, f BookingFilter) ([]Booking, error) {
	return s.repo.ListBookings(ctx, f)
}
