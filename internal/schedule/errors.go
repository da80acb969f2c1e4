package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrStaffNotFound   = errors.New("staff member not found")

	// ErrSlotTaken means a live booking already occupies the slot.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrSlotBooked blocks update/delete of a slot while a booking holds it.
	ErrSlotBooked = errors.New("slot has a live booking")
	// ErrSlotBeingBooked means another caller holds the slot lock right now.
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

// ValidationError aggregates per-field messages so a request with several
// bad fields gets a single response.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// Err returns the error, or nil when no field failed.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Fields[f], ", "))
	}
	return b.String()
}
