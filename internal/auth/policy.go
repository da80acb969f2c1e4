package auth

import "github.com/google/uuid"

// Operation names a policed action on the booking subsystem.
type Operation string

const (
	OpCreateSlot Operation = "slot:create"
	OpUpdateSlot Operation = "slot:update"
	OpDeleteSlot Operation = "slot:delete"
	OpBook       Operation = "booking:create"
	OpRelease    Operation = "booking:release"
	OpMove       Operation = "booking:move"
	OpRead       Operation = "read"
)

// Authorize decides whether the identity may perform op on a resource owned
// by owner. For slot operations owner is the slot's staff id; for booking
// operations it is the booking's (or requested) patient id; read operations
// ignore it. A nil result is Allow, ErrForbidden is Deny.
func Authorize(id Identity, op Operation, owner uuid.UUID) error {
	if id.HasRole(RoleAdmin) {
		return nil
	}

	switch op {
	case OpCreateSlot, OpUpdateSlot, OpDeleteSlot:
		// Personnel manage only their own slots.
		if id.HasRole(RolePersonnel) && id.StaffID != nil && *id.StaffID == owner {
			return nil
		}
	case OpBook, OpRelease, OpMove:
		// Patients act only on their own bookings.
		if id.HasRole(RolePatient) && id.PatientID != nil && *id.PatientID == owner {
			return nil
		}
	case OpRead:
		// Any authenticated identity may read.
		if len(id.Roles) > 0 {
			return nil
		}
	}

	return ErrForbidden
}
