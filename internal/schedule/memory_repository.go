package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded Repository for tests and local
// experiments. It enforces the same unique-booking-per-slot rule the
// Postgres constraint does, so concurrency tests exercise real semantics.
type MemoryRepository struct {
	mu        sync.Mutex
	slots     map[uuid.UUID]TimeSlot
	bookings  map[uuid.UUID]Booking
	patients  map[uuid.UUID]Patient
	personnel map[uuid.UUID]Personnel
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		slots:     make(map[uuid.UUID]TimeSlot),
		bookings:  make(map[uuid.UUID]Booking),
		patients:  make(map[uuid.UUID]Patient),
		personnel: make(map[uuid.UUID]Personnel),
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) AddPatient(p Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p
}

func (r *MemoryRepository) AddPersonnel(p Personnel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.personnel[p.ID] = p
}

func (r *MemoryRepository) bookingForSlot(slotID uuid.UUID) *Booking {
	for _, b := range r.bookings {
		if b.SlotID == slotID {
			copied := b
			return &copied
		}
	}
	return nil
}

// Slots

func (r *MemoryRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*SlotView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &SlotView{TimeSlot: s, Booked: r.bookingForSlot(id) != nil}, nil
}

func (r *MemoryRepository) ListSlots(ctx context.Context, f SlotFilter) ([]SlotView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []SlotView
	for _, s := range r.slots {
		if f.StaffID != nil && s.StaffID != *f.StaffID {
			continue
		}
		if f.Date != nil && !SameDay(s.Date, *f.Date) {
			continue
		}
		booked := r.bookingForSlot(s.ID) != nil
		if f.FreeOnly && booked {
			continue
		}
		result = append(result, SlotView{TimeSlot: s, Booked: booked})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Start < result[j].Start
	})
	return result, nil
}

func (r *MemoryRepository) ListSlotsForDay(ctx context.Context, staffID uuid.UUID, date time.Time) ([]TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []TimeSlot
	for _, s := range r.slots {
		if s.StaffID == staffID && SameDay(s.Date, date) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start < result[j].Start })
	return result, nil
}

func (r *MemoryRepository) CreateSlot(ctx context.Context, s *TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.personnel[s.StaffID]; !ok {
		return ErrStaffNotFound
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.slots[s.ID] = *s
	return nil
}

func (r *MemoryRepository) UpdateSlot(ctx context.Context, s *TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[s.ID]; !ok {
		return ErrSlotNotFound
	}
	if _, ok := r.personnel[s.StaffID]; !ok {
		return ErrStaffNotFound
	}
	s.UpdatedAt = time.Now()
	r.slots[s.ID] = *s
	return nil
}

func (r *MemoryRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; !ok {
		return ErrSlotNotFound
	}
	if r.bookingForSlot(id) != nil {
		return ErrSlotBooked
	}
	delete(r.slots, id)
	return nil
}

// Bookings

func (r *MemoryRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) GetBookingForSlot(ctx context.Context, slotID uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b := r.bookingForSlot(slotID); b != nil {
		return b, nil
	}
	return nil, ErrBookingNotFound
}

func (r *MemoryRepository) ListBookings(ctx context.Context, f BookingFilter) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Booking
	for _, b := range r.bookings {
		if f.PatientID != nil && b.PatientID != *f.PatientID {
			continue
		}
		if f.StaffID != nil && b.StaffID != *f.StaffID {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *MemoryRepository) CreateBooking(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[b.SlotID]; !ok {
		return ErrSlotNotFound
	}
	if _, ok := r.patients[b.PatientID]; !ok {
		return ErrPatientNotFound
	}
	// Same rule as the unique index: one live booking per slot.
	if r.bookingForSlot(b.SlotID) != nil {
		return ErrSlotTaken
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.bookings[b.ID] = *b
	return nil
}

func (r *MemoryRepository) MoveBooking(ctx context.Context, bookingID, newSlotID uuid.UUID, notes *string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	s, ok := r.slots[newSlotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if existing := r.bookingForSlot(newSlotID); existing != nil && existing.ID != bookingID {
		return nil, ErrSlotTaken
	}

	b.SlotID = s.ID
	b.StaffID = s.StaffID
	b.Date = s.Date
	if notes != nil {
		b.Notes = *notes
	}
	b.UpdatedAt = time.Now()
	r.bookings[bookingID] = b
	return &b, nil
}

func (r *MemoryRepository) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(r.bookings, id)
	return nil
}

// Profiles

func (r *MemoryRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) GetPersonnelByID(ctx context.Context, id uuid.UUID) (*Personnel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.personnel[id]
	if !ok {
		return nil, ErrStaffNotFound
	}
	return &p, nil
}
