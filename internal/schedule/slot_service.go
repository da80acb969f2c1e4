package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotInput carries the caller's intent for a new or updated slot.
type SlotInput struct {
	StaffID uuid.UUID
	Date    time.Time
	Start   MinuteOfDay
	End     MinuteOfDay
}

// SlotService owns the published time slots and the no-overlap invariant.
type SlotService struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewSlotService(repo Repository, log *zap.Logger) *SlotService {
	return &SlotService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Create validates and persists a new slot for a staff member.
func (s *SlotService) Create(ctx context.Context, in SlotInput) (*TimeSlot, error) {
	if err := s.validate(ctx, in, uuid.Nil); err != nil {
		return nil, err
	}

	slot := &TimeSlot{
		ID:      uuid.New(),
		StaffID: in.StaffID,
		Date:    DateOnly(in.Date),
		Start:   in.Start,
		End:     in.End,
	}

	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.log.Info("slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("staff_id", slot.StaffID.String()),
		zap.Time("date", slot.Date),
	)
	return slot, nil
}

// Update applies the same checks as Create, excluding the slot itself from
// the overlap scan. A slot holding a live booking cannot be moved; release
// or move the booking first.
func (s *SlotService) Update(ctx context.Context, id uuid.UUID, in SlotInput) (*TimeSlot, error) {
	view, err := s.repo.GetSlotByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Booked {
		return nil, ErrSlotBooked
	}

	if err := s.validate(ctx, in, id); err != nil {
		return nil, err
	}

	slot := &TimeSlot{
		ID:      id,
		StaffID: in.StaffID,
		Date:    DateOnly(in.Date),
		Start:   in.Start,
		End:     in.End,
	}

	if err := s.repo.UpdateSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}
	return slot, nil
}

// Delete removes an unbooked slot. ErrSlotBooked is returned while a live
// booking references it.
func (s *SlotService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSlot(ctx, id)
}

func (s *SlotService) Get(ctx context.Context, id uuid.UUID) (*SlotView, error) {
	return s.repo.GetSlotByID(ctx, id)
}

// List returns slots matching the filter, ordered by (date, start).
func (s *SlotService) List(ctx context.Context, f SlotFilter) ([]SlotView, error) {
	return s.repo.ListSlots(ctx, f)
}

// validate aggregates every field failure into one ValidationError. excludeID
// is the slot being edited, skipped in the overlap scan; uuid.Nil on create.
func (s *SlotService) validate(ctx context.Context, in SlotInput, excludeID uuid.UUID) error {
	ve := NewValidationError()

	if DateOnly(in.Date).Before(DateOnly(s.now())) {
		ve.Add("date", "date cannot be a past date")
	}

	iv := Interval{Date: DateOnly(in.Date), Start: in.Start, End: in.End}
	if err := iv.Validate(); err != nil {
		ve.Add("endTime", err.Error())
	}

	if _, err := s.repo.GetPersonnelByID(ctx, in.StaffID); err != nil {
		if errors.Is(err, ErrStaffNotFound) {
			ve.Add("staffId", "unknown staff member")
		} else {
			return fmt.Errorf("load staff: %w", err)
		}
	}

	// Overlap scan only makes sense for a well-formed range.
	if len(ve.Fields) == 0 {
		sameDay, err := s.repo.ListSlotsForDay(ctx, in.StaffID, in.Date)
		if err != nil {
			return fmt.Errorf("list slots for day: %w", err)
		}
		for _, existing := range sameDay {
			if existing.ID == excludeID {
				continue
			}
			if iv.Overlaps(existing.Interval()) {
				ve.Addf("timeSlot", "overlaps existing slot %s-%s", existing.Start, existing.End)
				break
			}
		}
	}

	return ve.Err()
}
