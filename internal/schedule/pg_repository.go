package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

var _ Repository = (*PgRepository)(nil)

// Helpers

func scanSlotView(row pgx.Row) (*SlotView, error) {
	var s SlotView
	var bookingID *uuid.UUID

	err := row.Scan(
		&s.ID,
		&s.StaffID,
		&s.Date,
		&s.Start,
		&s.End,
		&s.CreatedAt,
		&s.UpdatedAt,
		&bookingID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	s.Booked = bookingID != nil
	return &s, nil
}

func scanSlot(row pgx.Row) (*TimeSlot, error) {
	var s TimeSlot

	err := row.Scan(
		&s.ID,
		&s.StaffID,
		&s.Date,
		&s.Start,
		&s.End,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking

	err := row.Scan(
		&b.ID,
		&b.SlotID,
		&b.PatientID,
		&b.StaffID,
		&b.Date,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const (
	codeUniqueViolation = "23505"
	codeFKViolation     = "23503"
)

// Slots

func (r *PgRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*SlotView, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT s.id, s.staff_id, s.date, s.start_minute, s.end_minute, s.created_at, s.updated_at, b.id
		FROM slots s
		LEFT JOIN bookings b ON b.slot_id = s.id
		WHERE s.id = $1
	`, id)
	return scanSlotView(row)
}

func (r *PgRepository) ListSlots(ctx context.Context, f SlotFilter) ([]SlotView, error) {
	query := `
		SELECT s.id, s.staff_id, s.date, s.start_minute, s.end_minute, s.created_at, s.updated_at, b.id
		FROM slots s
		LEFT JOIN bookings b ON b.slot_id = s.id
		WHERE 1=1`
	args := []any{}

	if f.StaffID != nil {
		args = append(args, *f.StaffID)
		query += fmt.Sprintf(" AND s.staff_id = $%d", len(args))
	}
	if f.Date != nil {
		args = append(args, DateOnly(*f.Date))
		query += fmt.Sprintf(" AND s.date = $%d", len(args))
	}
	if f.FreeOnly {
		query += " AND b.id IS NULL"
	}
	query += " ORDER BY s.date ASC, s.start_minute ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SlotView
	for rows.Next() {
		s, err := scanSlotView(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListSlotsForDay(ctx context.Context, staffID uuid.UUID, date time.Time) ([]TimeSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, staff_id, date, start_minute, end_minute, created_at, updated_at
		FROM slots
		WHERE staff_id = $1 AND date = $2
		ORDER BY start_minute ASC
	`, staffID, DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TimeSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateSlot(ctx context.Context, s *TimeSlot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO slots (id, staff_id, date, start_minute, end_minute, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`, s.ID, s.StaffID, DateOnly(s.Date), s.Start, s.End)

	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		if pgErrCode(err) == codeFKViolation {
			return ErrStaffNotFound
		}
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateSlot(ctx context.Context, s *TimeSlot) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE slots
		SET staff_id = $2,
		    date = $3,
		    start_minute = $4,
		    end_minute = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, s.ID, s.StaffID, DateOnly(s.Date), s.Start, s.End)

	if err := row.Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSlotNotFound
		}
		if pgErrCode(err) == codeFKViolation {
			return ErrStaffNotFound
		}
		return fmt.Errorf("update slot: %w", err)
	}
	return nil
}

func (r *PgRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		// FK from bookings.slot_id blocks deleting an occupied slot
		if pgErrCode(err) == codeFKViolation {
			return ErrSlotBooked
		}
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// Bookings

func (r *PgRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, slot_id, patient_id, staff_id, date, notes, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

func (r *PgRepository) GetBookingForSlot(ctx context.Context, slotID uuid.UUID) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, slot_id, patient_id, staff_id, date, notes, created_at, updated_at
		FROM bookings
		WHERE slot_id = $1
	`, slotID)
	return scanBooking(row)
}

func (r *PgRepository) ListBookings(ctx context.Context, f BookingFilter) ([]Booking, error) {
	query := `
		SELECT id, slot_id, patient_id, staff_id, date, notes, created_at, updated_at
		FROM bookings
		WHERE 1=1`
	args := []any{}

	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if f.StaffID != nil {
		args = append(args, *f.StaffID)
		query += fmt.Sprintf(" AND staff_id = $%d", len(args))
	}
	query += " ORDER BY date ASC, created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CreateBooking inserts the booking row. The UNIQUE constraint on
// bookings.slot_id is the authority on the one-slot-one-booking invariant:
// two concurrent inserts for the same slot commit exactly one row.
func (r *PgRepository) CreateBooking(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO bookings (id, slot_id, patient_id, staff_id, date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at
	`, b.ID, b.SlotID, b.PatientID, b.StaffID, DateOnly(b.Date), b.Notes)

	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		switch {
		case pgErrCode(err) == codeUniqueViolation:
			return ErrSlotTaken
		case pgErrCode(err) == codeFKViolation:
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "bookings_patient_id_fkey" {
				return ErrPatientNotFound
			}
			return ErrSlotNotFound
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// MoveBooking re-points the booking at newSlotID in a single UPDATE, copying
// staff and date from the target slot. The unique index makes the whole swap
// indivisible: if the target is occupied the statement fails and the original
// row is left untouched.
func (r *PgRepository) MoveBooking(ctx context.Context, bookingID, newSlotID uuid.UUID, notes *string) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE bookings b
		SET slot_id = s.id,
		    staff_id = s.staff_id,
		    date = s.date,
		    notes = COALESCE($3, b.notes),
		    updated_at = now()
		FROM slots s
		WHERE b.id = $1 AND s.id = $2
		RETURNING b.id, b.slot_id, b.patient_id, b.staff_id, b.date, b.notes, b.created_at, b.updated_at
	`, bookingID, newSlotID, notes)

	b, err := scanBooking(row)
	if err != nil {
		if pgErrCode(err) == codeUniqueViolation {
			return nil, ErrSlotTaken
		}
		if errors.Is(err, ErrBookingNotFound) {
			// The join matched nothing: distinguish a missing booking from a
			// missing target slot.
			if _, berr := r.GetBookingByID(ctx, bookingID); berr != nil {
				return nil, berr
			}
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("move booking: %w", err)
	}
	return b, nil
}

func (r *PgRepository) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// Profiles

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, auth_user_id, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)

	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.AuthUserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) GetPersonnelByID(ctx context.Context, id uuid.UUID) (*Personnel, error) {
	var p Personnel
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, auth_user_id, created_at, updated_at
		FROM personnel
		WHERE id = $1
	`, id)

	err := row.Scan(&p.ID, &p.Name, &p.AuthUserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &p, nil
}
